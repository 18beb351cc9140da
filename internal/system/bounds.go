package system

import (
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
	"github.com/l1jgo/tilecore/internal/world"
	"go.uber.org/zap"
)

// BoundsSystem kills entities whose body no longer overlaps the playable
// area. The engine reaps them on its next update.
// Phase: PostUpdate, after physics has moved everything.
type BoundsSystem struct {
	*coresys.GameSystem
	area   world.Rect
	log    *zap.Logger
	killed int
}

func NewBoundsSystem(area world.Rect, log *zap.Logger) *BoundsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &BoundsSystem{area: area, log: log}
	s.GameSystem = coresys.NewGameSystem("bounds", ecs.MaskOf(world.BodyComponentType), s.process)
	s.SetPhase(coresys.PhasePostUpdate)
	return s
}

func (s *BoundsSystem) Area() world.Rect { return s.area }

// Killed returns how many entities this system has killed.
func (s *BoundsSystem) Killed() int { return s.killed }

func (s *BoundsSystem) process(on bool, entities ecs.View, _ time.Duration) {
	if !on {
		return
	}
	entities.Each(func(e *ecs.Entity) {
		b := ecs.MustComponent[*world.BodyComponent](e, world.BodyComponentType).Body
		if b.RotatedBounds().Overlaps(s.area) {
			return
		}
		e.Kill()
		s.killed++
		s.log.Debug("entity left the world",
			zap.String("label", component.NameOf(e)),
			zap.Stringer("bounds", b.RotatedBounds()))
	})
}
