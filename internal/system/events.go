package system

import (
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/core/event"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
)

// EventSystem delivers last frame's bus events at the start of every frame.
// It holds no entities. Phase: Input.
type EventSystem struct {
	bus *event.Bus
	on  bool
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus, on: true}
}

func (s *EventSystem) Name() string                 { return "events" }
func (s *EventSystem) Phase() coresys.Phase         { return coresys.PhaseInput }
func (s *EventSystem) Qualifies(_ *ecs.Entity) bool { return false }
func (s *EventSystem) Add(_ *ecs.Entity) bool       { return false }
func (s *EventSystem) Remove(_ *ecs.Entity)         {}
func (s *EventSystem) Purge()                       {}
func (s *EventSystem) On() bool                     { return s.on }
func (s *EventSystem) SetOn(on bool)                { s.on = on }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	if s.on {
		s.bus.DispatchAll()
	}
}
