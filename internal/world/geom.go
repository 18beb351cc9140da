package world

import (
	"fmt"
	"math"
)

// Vector is a 2D vector in world units (pixels).
type Vector struct {
	X, Y float64
}

func (v Vector) Add(o Vector) Vector               { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector               { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(s float64) Vector            { return Vector{v.X * s, v.Y * s} }
func (v Vector) Len2() float64                     { return v.X*v.X + v.Y*v.Y }
func (v Vector) IsZero() bool                      { return v.X == 0 && v.Y == 0 }
func (v Vector) String() string                    { return fmt.Sprintf("(%g,%g)", v.X, v.Y) }
func (v Vector) Rotated(r CardinalRotation) Vector { return r.rotate(v, Vector{}) }

// CardinalRotation is a counter-clockwise quarter-turn rotation. The zero
// value is no rotation.
type CardinalRotation uint8

const (
	Rotate0 CardinalRotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r CardinalRotation) Degrees() int { return int(r%4) * 90 }

// ParseRotation converts a multiple of 90 degrees, negative included, to a
// CardinalRotation.
func ParseRotation(degrees int) (CardinalRotation, error) {
	if degrees%90 != 0 {
		return Rotate0, fmt.Errorf("rotation %d is not a multiple of 90", degrees)
	}
	return CardinalRotation(((degrees/90)%4 + 4) % 4), nil
}

func (r CardinalRotation) String() string {
	return fmt.Sprintf("%d°", r.Degrees())
}

// rotate turns p around pivot.
func (r CardinalRotation) rotate(p, pivot Vector) Vector {
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	switch r % 4 {
	case Rotate90:
		return Vector{pivot.X - dy, pivot.Y + dx}
	case Rotate180:
		return Vector{pivot.X - dx, pivot.Y - dy}
	case Rotate270:
		return Vector{pivot.X + dy, pivot.Y - dx}
	default:
		return p
	}
}

// Shape is a collision shape in world coordinates.
type Shape interface {
	Bounds() Rect
	Center() Vector
	// WithCenter returns a copy of the shape moved so its center is c.
	WithCenter(c Vector) Shape
	// Rotated returns a copy of the shape turned by r around pivot.
	Rotated(r CardinalRotation, pivot Vector) Shape
}

// Rect is an axis-aligned rectangle anchored at its minimum corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func NewRect(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

func (r Rect) MaxX() float64    { return r.X + r.Width }
func (r Rect) MaxY() float64    { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }
func (r Rect) Center() Vector   { return Vector{r.CenterX(), r.CenterY()} }
func (r Rect) Bounds() Rect     { return r }
func (r Rect) Min() Vector      { return Vector{r.X, r.Y} }

func (r Rect) WithCenter(c Vector) Shape {
	r.X = c.X - r.Width/2
	r.Y = c.Y - r.Height/2
	return r
}

func (r Rect) Rotated(rot CardinalRotation, pivot Vector) Shape {
	return r.rotated(rot, pivot)
}

func (r Rect) rotated(rot CardinalRotation, pivot Vector) Rect {
	if rot%4 == Rotate0 {
		return r
	}
	a := rot.rotate(Vector{r.X, r.Y}, pivot)
	b := rot.rotate(Vector{r.MaxX(), r.MaxY()}, pivot)
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// SetCenter moves r in place so its center is c.
func (r *Rect) SetCenter(c Vector) {
	r.X = c.X - r.Width/2
	r.Y = c.Y - r.Height/2
}

// Translate moves r in place.
func (r *Rect) Translate(dx, dy float64) {
	r.X += dx
	r.Y += dy
}

// Overlaps is strict: rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vector) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Intersection returns the overlap of r and o, or false if they do not overlap.
func (r Rect) Intersection(o Rect) (Rect, bool) {
	if !r.Overlaps(o) {
		return Rect{}, false
	}
	x := math.Max(r.X, o.X)
	y := math.Max(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Min(r.MaxX(), o.MaxX()) - x,
		Height: math.Min(r.MaxY(), o.MaxY()) - y,
	}, true
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.Width, r.Height)
}

// Circle is a circle around (X, Y).
type Circle struct {
	X, Y   float64
	Radius float64
}

func (c Circle) Center() Vector { return Vector{c.X, c.Y} }

func (c Circle) Bounds() Rect {
	return Rect{X: c.X - c.Radius, Y: c.Y - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

func (c Circle) WithCenter(p Vector) Shape {
	c.X, c.Y = p.X, p.Y
	return c
}

func (c Circle) Rotated(rot CardinalRotation, pivot Vector) Shape {
	p := rot.rotate(c.Center(), pivot)
	c.X, c.Y = p.X, p.Y
	return c
}

// Overlaps reports whether two shapes overlap. Touching shapes do not.
// Unknown shape kinds fall back to their bounding boxes.
func Overlaps(a, b Shape) bool {
	switch sa := a.(type) {
	case Rect:
		switch sb := b.(type) {
		case Rect:
			return sa.Overlaps(sb)
		case Circle:
			return rectCircle(sa, sb)
		}
	case Circle:
		switch sb := b.(type) {
		case Rect:
			return rectCircle(sb, sa)
		case Circle:
			r := sa.Radius + sb.Radius
			return sa.Center().Sub(sb.Center()).Len2() < r*r
		}
	}
	return a.Bounds().Overlaps(b.Bounds())
}

func rectCircle(r Rect, c Circle) bool {
	nearest := Vector{
		X: math.Max(r.X, math.Min(c.X, r.MaxX())),
		Y: math.Max(r.Y, math.Min(c.Y, r.MaxY())),
	}
	return nearest.Sub(c.Center()).Len2() < c.Radius*c.Radius
}
