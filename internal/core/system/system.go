package system

import (
	"fmt"
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
)

// Phase defines execution ordering within a single frame. Systems sharing a
// phase run in registration order.
type Phase int

const (
	PhaseInput      Phase = iota // 0: collect controller state
	PhasePreUpdate               // 1: timers, lifetimes
	PhaseUpdate                  // 2: game logic (default)
	PhasePhysics                 // 3: world stepping, contacts
	PhasePostUpdate              // 4: culling, draw lists
	PhasePersist                 // 5: snapshots
	PhaseCleanup                 // 6: end-of-frame housekeeping
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhasePhysics:
		return "Physics"
	case PhasePostUpdate:
		return "PostUpdate"
	case PhasePersist:
		return "Persist"
	case PhaseCleanup:
		return "Cleanup"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// System is the interface the Engine drives. GameSystem and
// IntervalGameSystem implement it; gameplay systems embed one of them.
type System interface {
	Name() string
	Phase() Phase
	// Qualifies reports whether e holds every component the system requires.
	Qualifies(e *ecs.Entity) bool
	// Add queues e for the next update if it qualifies.
	Add(e *ecs.Entity) bool
	Remove(e *ecs.Entity)
	Purge()
	Update(dt time.Duration)
	On() bool
	SetOn(on bool)
}
