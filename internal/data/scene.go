package data

import (
	"fmt"
	"os"
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/world"
	"gopkg.in/yaml.v3"
)

// Vec is a 2D value written as {x: 1, y: 2}.
type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) vector() world.Vector { return world.Vector{X: v.X, Y: v.Y} }

type RectDef struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func (r RectDef) rect() world.Rect { return world.NewRect(r.X, r.Y, r.Width, r.Height) }

type CircleDef struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// FixtureDef describes one sensor shape. Exactly one of Rect and Circle is set.
// Attached fixtures only use the size of their shape; the position comes
// from the body plus Offset.
type FixtureDef struct {
	Type     string     `yaml:"type"`
	Rect     *RectDef   `yaml:"rect"`
	Circle   *CircleDef `yaml:"circle"`
	Offset   Vec        `yaml:"offset"`
	Detached bool       `yaml:"detached"`
	Inactive bool       `yaml:"inactive"`
}

type LayerDef struct {
	Z      int    `yaml:"z"`
	Sprite string `yaml:"sprite"`
}

// BodyDef describes one entity with a body. Pointer fields fall back to the
// body defaults (or the scene gravity) when omitted.
type BodyDef struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"`
	Type   string  `yaml:"type"` // abstract, static, dynamic
	Rect   RectDef `yaml:"rect"`
	Script string  `yaml:"script"`

	Velocity        Vec  `yaml:"velocity"`
	Gravity         *Vec `yaml:"gravity"`
	VelocityClamp   *Vec `yaml:"velocity_clamp"`
	FrictionToApply Vec  `yaml:"friction_to_apply"`
	Friction        *Vec `yaml:"friction"`

	GravityOn    *bool `yaml:"gravity_on"`
	CollisionOn  *bool `yaml:"collision_on"`
	TakeFriction *bool `yaml:"take_friction"`

	Rotation     int  `yaml:"rotation"` // degrees, multiple of 90
	OriginCorner bool `yaml:"origin_corner"`

	Layer    *LayerDef     `yaml:"layer"`
	Lifetime time.Duration `yaml:"lifetime"`

	Fixtures []FixtureDef `yaml:"fixtures"`
}

// Scene is the initial set of entities loaded at startup.
type Scene struct {
	Name    string
	Gravity world.Vector
	bodies  []BodyDef
	byName  map[string]*BodyDef
}

// Get returns a named body definition, or nil if not found.
func (s *Scene) Get(name string) *BodyDef {
	return s.byName[name]
}

// Count returns the number of bodies loaded.
func (s *Scene) Count() int {
	return len(s.bodies)
}

// Entities builds a fresh entity for every body definition, in file order.
// Every entity carries a Label and a body; Layer and Lifetime are added when
// the definition has them.
func (s *Scene) Entities() ([]*ecs.Entity, error) {
	out := make([]*ecs.Entity, 0, len(s.bodies))
	for i := range s.bodies {
		e, err := s.entity(&s.bodies[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Scene) entity(def *BodyDef) (*ecs.Entity, error) {
	b, err := s.BuildBody(def)
	if err != nil {
		return nil, err
	}
	e := ecs.NewEntity(&component.Label{Name: def.Name, Kind: def.Kind, Script: def.Script})
	if def.Layer != nil {
		e.Put(&component.Layer{Z: def.Layer.Z, Sprite: def.Layer.Sprite})
	}
	if def.Lifetime > 0 {
		e.Put(component.NewLifetime(def.Lifetime))
	}
	world.AttachBody(e, b)
	return e, nil
}

// BuildBody creates a new body, with its fixtures, from def.
func (s *Scene) BuildBody(def *BodyDef) (*world.Body, error) {
	t, err := world.ParseBodyType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("scene: body %q: %w", def.Name, err)
	}
	rot, err := world.ParseRotation(def.Rotation)
	if err != nil {
		return nil, fmt.Errorf("scene: body %q: %w", def.Name, err)
	}

	b := world.NewBody(def.Rect.rect(), t)
	b.Rotation = rot
	if def.OriginCorner {
		b.OriginCenterX, b.OriginCenterY = false, false
	}

	p := &b.Physics
	p.Velocity = def.Velocity.vector()
	p.Gravity = s.Gravity
	if def.Gravity != nil {
		p.Gravity = def.Gravity.vector()
	}
	if def.VelocityClamp != nil {
		p.VelocityClamp = def.VelocityClamp.vector()
	}
	p.FrictionToApply = def.FrictionToApply.vector()
	if def.Friction != nil {
		p.DefaultFrictionOnSelf = def.Friction.vector()
		p.FrictionOnSelf = p.DefaultFrictionOnSelf
	}
	if def.GravityOn != nil {
		p.GravityOn = *def.GravityOn
	}
	if def.CollisionOn != nil {
		p.CollisionOn = *def.CollisionOn
	}
	if def.TakeFriction != nil {
		p.TakeFrictionFromOthers = *def.TakeFriction
	}

	for _, fd := range def.Fixtures {
		var shape world.Shape
		switch {
		case fd.Rect != nil:
			shape = fd.Rect.rect()
		case fd.Circle != nil:
			shape = world.Circle{X: fd.Circle.X, Y: fd.Circle.Y, Radius: fd.Circle.Radius}
		}
		f := world.NewFixture(world.FixtureType(fd.Type), shape)
		f.Offset = fd.Offset.vector()
		f.AttachedToBody = !fd.Detached
		f.Active = !fd.Inactive
		b.AddFixture(f)
	}
	return b, nil
}

// --- YAML loading ---

type sceneFile struct {
	Name    string    `yaml:"name"`
	Gravity Vec       `yaml:"gravity"`
	Bodies  []BodyDef `yaml:"bodies"`
}

// LoadScene loads a scene from YAML and checks every definition, so that
// Entities only fails on programming errors.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}

	s := &Scene{
		Name:    f.Name,
		Gravity: f.Gravity.vector(),
		bodies:  f.Bodies,
		byName:  make(map[string]*BodyDef, len(f.Bodies)),
	}
	for i := range s.bodies {
		def := &s.bodies[i]
		if err := validateBody(def); err != nil {
			return nil, fmt.Errorf("scene: %s: body %d: %w", path, i, err)
		}
		if def.Name == "" {
			continue
		}
		if _, dup := s.byName[def.Name]; dup {
			return nil, fmt.Errorf("scene: %s: duplicate body name %q", path, def.Name)
		}
		s.byName[def.Name] = def
	}
	return s, nil
}

func validateBody(def *BodyDef) error {
	if def.Type == "" {
		def.Type = "dynamic"
	}
	if _, err := world.ParseBodyType(def.Type); err != nil {
		return err
	}
	if _, err := world.ParseRotation(def.Rotation); err != nil {
		return err
	}
	if def.Rect.Width < 0 || def.Rect.Height < 0 {
		return fmt.Errorf("negative size %gx%g", def.Rect.Width, def.Rect.Height)
	}
	if def.Lifetime < 0 {
		return fmt.Errorf("negative lifetime %s", def.Lifetime)
	}
	for j, fd := range def.Fixtures {
		if fd.Type == "" {
			return fmt.Errorf("fixture %d: missing type", j)
		}
		if (fd.Rect == nil) == (fd.Circle == nil) {
			return fmt.Errorf("fixture %d: need exactly one of rect and circle", j)
		}
		if fd.Circle != nil && fd.Circle.Radius <= 0 {
			return fmt.Errorf("fixture %d: radius must be positive", j)
		}
	}
	return nil
}
