package system

import (
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
	"github.com/l1jgo/tilecore/internal/world"
)

// DrawItem is one entry of the draw list handed to a renderer.
type DrawItem struct {
	Entity *ecs.Entity
	Bounds world.Rect
	Z      int
	Sprite string
}

// DrawListSystem builds a back-to-front draw list of entities with a body
// and a layer. Entities are ordered by Layer.Z when they join; entities
// with the same Z keep their join order. Phase: PostUpdate.
type DrawListSystem struct {
	*coresys.GameSystem
	items []DrawItem
}

func NewDrawListSystem() *DrawListSystem {
	s := &DrawListSystem{}
	s.GameSystem = coresys.NewSortedGameSystem("draw-list",
		ecs.MaskOf(world.BodyComponentType, component.LayerType),
		byLayer, s.process)
	s.SetPhase(coresys.PhasePostUpdate)
	return s
}

func byLayer(a, b *ecs.Entity) bool {
	la := ecs.MustComponent[*component.Layer](a, component.LayerType)
	lb := ecs.MustComponent[*component.Layer](b, component.LayerType)
	return la.Z < lb.Z
}

// Items returns the list built by the last update. It is reused by the
// next update; copy it to keep it.
func (s *DrawListSystem) Items() []DrawItem { return s.items }

func (s *DrawListSystem) process(on bool, entities ecs.View, _ time.Duration) {
	clear(s.items)
	s.items = s.items[:0]
	if !on {
		return
	}
	entities.Each(func(e *ecs.Entity) {
		layer := ecs.MustComponent[*component.Layer](e, component.LayerType)
		body := ecs.MustComponent[*world.BodyComponent](e, world.BodyComponentType).Body
		s.items = append(s.items, DrawItem{
			Entity: e,
			Bounds: body.RotatedBounds(),
			Z:      layer.Z,
			Sprite: layer.Sprite,
		})
	})
}
