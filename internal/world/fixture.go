package world

import (
	"fmt"
	"sync/atomic"
)

// FixtureType is a game-defined label used by the contact filter.
type FixtureType string

var nextFixtureID atomic.Uint64

// Fixture is a sensor shape that raises contacts without any physical
// response. When AttachedToBody is set the shape is placed at the body's
// rotated center plus Offset and turned with the body; otherwise Shape is
// already in world coordinates.
type Fixture struct {
	id uint64

	Type           FixtureType
	Shape          Shape
	Offset         Vector
	Active         bool
	AttachedToBody bool
	Body           *Body

	// Data carries game values, for example which entity a hitbox damages.
	Data map[string]any
}

// NewFixture returns an active fixture attached to its future body.
func NewFixture(t FixtureType, shape Shape) *Fixture {
	return &Fixture{
		id:             nextFixtureID.Add(1),
		Type:           t,
		Shape:          shape,
		Active:         true,
		AttachedToBody: true,
	}
}

func (f *Fixture) ID() uint64 { return f.id }

// WorldShape returns the fixture shape in world coordinates.
func (f *Fixture) WorldShape() Shape {
	if !f.AttachedToBody || f.Body == nil {
		return f.Shape
	}
	rot := f.Body.Rotation
	center := f.Body.RotatedBounds().Center().Add(f.Offset.Rotated(rot))
	return f.Shape.WithCenter(center).Rotated(rot, center)
}

func (f *Fixture) String() string {
	return fmt.Sprintf("fixture#%d(%s)", f.id, f.Type)
}
