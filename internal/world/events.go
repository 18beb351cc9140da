package world

import (
	"time"

	"github.com/l1jgo/tilecore/internal/core/event"
)

// Contact events emitted by ContactRelay.
type (
	ContactBegan struct {
		Contact Contact
		DT      time.Duration
	}
	ContactContinued struct {
		Contact Contact
		DT      time.Duration
	}
	ContactEnded struct {
		Contact Contact
		DT      time.Duration
	}
)

// ContactRelay is a ContactListener that forwards contacts onto an event bus.
// Subscribers see them after the next SwapBuffers/DispatchAll.
type ContactRelay struct {
	Bus *event.Bus
	// SkipContinue drops ContinueContact, which fires every step for every
	// resting pair.
	SkipContinue bool
}

func NewContactRelay(bus *event.Bus) *ContactRelay {
	return &ContactRelay{Bus: bus, SkipContinue: true}
}

func (r *ContactRelay) BeginContact(c Contact, dt time.Duration) {
	event.Emit(r.Bus, ContactBegan{Contact: c, DT: dt})
}

func (r *ContactRelay) ContinueContact(c Contact, dt time.Duration) {
	if r.SkipContinue {
		return
	}
	event.Emit(r.Bus, ContactContinued{Contact: c, DT: dt})
}

func (r *ContactRelay) EndContact(c Contact, dt time.Duration) {
	event.Emit(r.Bus, ContactEnded{Contact: c, DT: dt})
}
