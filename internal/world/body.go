package world

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
)

// BodyType decides how a body takes part in collisions.
type BodyType uint8

const (
	// Abstract bodies never collide and are never pushed.
	Abstract BodyType = iota
	// Static bodies do not move from collisions and have no gravity.
	Static
	// Dynamic bodies are pushed out of static ones.
	Dynamic
)

func (t BodyType) String() string {
	switch t {
	case Abstract:
		return "abstract"
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("BodyType(%d)", uint8(t))
}

// ParseBodyType maps a body type name back to its value.
func ParseBodyType(s string) (BodyType, error) {
	switch s {
	case "abstract":
		return Abstract, nil
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	}
	return Abstract, fmt.Errorf("unknown body type %q", s)
}

var nextBodyID atomic.Uint64

// Body is an axis-aligned rectangle with physics state and fixtures.
// Accessed only from the game loop goroutine — no locks.
type Body struct {
	id uint64

	Bounds   Rect
	Type     BodyType
	Physics  PhysicsData
	Fixtures []*Fixture

	// Rotation turns the body around the pivot chosen by the origin flags:
	// its center on an axis when set, its minimum corner otherwise.
	Rotation      CardinalRotation
	OriginCenterX bool
	OriginCenterY bool

	// PreProcess runs before integration and PostProcess after contact
	// dispatch, once per fixed step.
	PreProcess  UpdateFuncs
	PostProcess UpdateFuncs

	// Entity is set when the body is attached with AttachBody.
	Entity *ecs.Entity

	cache rotatedCache
}

type rotatedCache struct {
	valid  bool
	bounds Rect
	rot    CardinalRotation
	cx, cy bool
	result Rect
}

// NewBody creates a body with default physics. Static bodies start with
// gravity off.
func NewBody(bounds Rect, t BodyType) *Body {
	b := &Body{
		id:            nextBodyID.Add(1),
		Bounds:        bounds,
		Type:          t,
		Physics:       NewPhysicsData(),
		OriginCenterX: true,
		OriginCenterY: true,
	}
	if t == Static {
		b.Physics.GravityOn = false
	}
	return b
}

func (b *Body) ID() uint64 { return b.id }

// Pivot returns the point the body rotates around.
func (b *Body) Pivot() Vector {
	p := b.Bounds.Min()
	if b.OriginCenterX {
		p.X = b.Bounds.CenterX()
	}
	if b.OriginCenterY {
		p.Y = b.Bounds.CenterY()
	}
	return p
}

// RotatedBounds returns the bounds after rotation. The result is cached until
// the bounds, rotation or origin flags change.
func (b *Body) RotatedBounds() Rect {
	c := &b.cache
	if c.valid && c.bounds == b.Bounds && c.rot == b.Rotation &&
		c.cx == b.OriginCenterX && c.cy == b.OriginCenterY {
		return c.result
	}
	c.valid = true
	c.bounds = b.Bounds
	c.rot = b.Rotation
	c.cx, c.cy = b.OriginCenterX, b.OriginCenterY
	c.result = b.Bounds.rotated(b.Rotation, b.Pivot())
	return c.result
}

// AddFixture attaches f to b and returns it.
func (b *Body) AddFixture(f *Fixture) *Fixture {
	f.Body = b
	b.Fixtures = append(b.Fixtures, f)
	return f
}

// RemoveFixture detaches f. It reports whether f belonged to b.
func (b *Body) RemoveFixture(f *Fixture) bool {
	i := slices.Index(b.Fixtures, f)
	if i < 0 {
		return false
	}
	b.Fixtures = slices.Delete(b.Fixtures, i, i+1)
	f.Body = nil
	return true
}

// FixtureOf returns the first fixture of type t.
func (b *Body) FixtureOf(t FixtureType) (*Fixture, bool) {
	for _, f := range b.Fixtures {
		if f.Type == t {
			return f, true
		}
	}
	return nil, false
}

// Reset clears motion state for reuse.
func (b *Body) Reset() {
	b.Physics.Reset()
}

func (b *Body) String() string {
	return fmt.Sprintf("body#%d(%s %s)", b.id, b.Type, b.Bounds)
}

// UpdateFunc is a per-step body callback.
type UpdateFunc func(b *Body, dt time.Duration)

// UpdateFuncs is an ordered set of named callbacks. The zero value is ready
// to use. Callbacks run in the order they were first added.
type UpdateFuncs struct {
	names []string
	fns   map[string]UpdateFunc
}

// Put adds or replaces a callback. Replacing keeps the original position.
func (u *UpdateFuncs) Put(name string, fn UpdateFunc) {
	if u.fns == nil {
		u.fns = make(map[string]UpdateFunc)
	}
	if _, ok := u.fns[name]; !ok {
		u.names = append(u.names, name)
	}
	u.fns[name] = fn
}

func (u *UpdateFuncs) Remove(name string) bool {
	if _, ok := u.fns[name]; !ok {
		return false
	}
	delete(u.fns, name)
	u.names = slices.DeleteFunc(u.names, func(n string) bool { return n == name })
	return true
}

func (u *UpdateFuncs) Has(name string) bool {
	_, ok := u.fns[name]
	return ok
}

func (u *UpdateFuncs) Len() int { return len(u.names) }

// Run calls every callback. Callbacks removed by an earlier one in the same
// run are skipped; ones added during the run wait for the next.
func (u *UpdateFuncs) Run(b *Body, dt time.Duration) {
	if len(u.names) == 0 {
		return
	}
	for _, name := range slices.Clone(u.names) {
		if fn, ok := u.fns[name]; ok {
			fn(b, dt)
		}
	}
}

// BodyComponentType tags entities that own a physics body.
var BodyComponentType = ecs.RegisterComponentType("body")

// BodyComponent links an entity to its body.
type BodyComponent struct {
	Body *Body
}

func (*BodyComponent) Type() ecs.ComponentType { return BodyComponentType }

func (c *BodyComponent) Reset() {
	if c.Body != nil {
		c.Body.Reset()
	}
}

// AttachBody puts a body component on e and points the body back at it.
func AttachBody(e *ecs.Entity, b *Body) *BodyComponent {
	b.Entity = e
	c := &BodyComponent{Body: b}
	e.Put(c)
	return c
}

// BodyOf returns the body of e, if it has one.
func BodyOf(e *ecs.Entity) (*Body, bool) {
	c, ok := ecs.ComponentOf[*BodyComponent](e, BodyComponentType)
	if !ok || c.Body == nil {
		return nil, false
	}
	return c.Body, true
}
