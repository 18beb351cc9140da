package component

import "github.com/l1jgo/tilecore/internal/core/ecs"

var LayerType = ecs.RegisterComponentType("layer")

// Layer places an entity in the draw order. Lower Z is drawn first.
type Layer struct {
	Z      int
	Sprite string
}

func (*Layer) Type() ecs.ComponentType { return LayerType }
func (*Layer) Reset()                  {}
