package system

import (
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
)

// LifetimeSystem counts down Lifetime components and kills entities whose
// time is up. Phase: PreUpdate.
type LifetimeSystem struct {
	*coresys.GameSystem
	expired int
}

func NewLifetimeSystem() *LifetimeSystem {
	s := &LifetimeSystem{}
	s.GameSystem = coresys.NewGameSystem("lifetime", ecs.MaskOf(component.LifetimeType), s.process)
	s.SetPhase(coresys.PhasePreUpdate)
	return s
}

// Expired returns how many entities ran out of time so far.
func (s *LifetimeSystem) Expired() int { return s.expired }

func (s *LifetimeSystem) process(on bool, entities ecs.View, dt time.Duration) {
	if !on {
		return
	}
	for _, e := range entities.All() {
		l := ecs.MustComponent[*component.Lifetime](e, component.LifetimeType)
		l.Remaining -= dt
		if l.Expired() {
			e.Kill()
			s.expired++
		}
	}
}
