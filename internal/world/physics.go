package world

import "math"

// PhysicsData is the mutable physics state of a body. All vectors are in
// pixels; velocity is pixels per second.
type PhysicsData struct {
	Velocity      Vector
	Gravity       Vector // added to velocity once per step, not scaled by dt
	VelocityClamp Vector // symmetric per-axis limit on |velocity|

	// FrictionToApply is what this body exerts on dynamic bodies resting on it.
	FrictionToApply Vector
	// FrictionOnSelf is accumulated from collisions during a step and divides
	// the velocity at the start of the next one.
	FrictionOnSelf        Vector
	DefaultFrictionOnSelf Vector

	GravityOn              bool
	CollisionOn            bool
	TakeFrictionFromOthers bool
}

func NewPhysicsData() PhysicsData {
	return PhysicsData{
		VelocityClamp:          Vector{math.MaxFloat64, math.MaxFloat64},
		FrictionOnSelf:         Vector{1, 1},
		DefaultFrictionOnSelf:  Vector{1, 1},
		GravityOn:              true,
		CollisionOn:            true,
		TakeFrictionFromOthers: true,
	}
}

// Step integrates one fixed sub-step of dt seconds and moves bounds. Friction
// divides the incoming velocity before gravity is added, so same-step gravity
// is never damped.
func (p *PhysicsData) Step(bounds *Rect, dt float64) {
	if p.TakeFrictionFromOthers {
		if p.FrictionOnSelf.X > 0 {
			p.Velocity.X /= p.FrictionOnSelf.X
		}
		if p.FrictionOnSelf.Y > 0 {
			p.Velocity.Y /= p.FrictionOnSelf.Y
		}
	}
	p.FrictionOnSelf = p.DefaultFrictionOnSelf

	if p.GravityOn {
		p.Velocity = p.Velocity.Add(p.Gravity)
	}

	p.Velocity.X = clampAbs(p.Velocity.X, p.VelocityClamp.X)
	p.Velocity.Y = clampAbs(p.Velocity.Y, p.VelocityClamp.Y)

	bounds.X += p.Velocity.X * dt
	bounds.Y += p.Velocity.Y * dt
}

// Reset zeroes motion and restores the default friction. Configuration
// (gravity, clamp, friction to apply, toggles) is kept.
func (p *PhysicsData) Reset() {
	p.Velocity = Vector{}
	p.FrictionOnSelf = p.DefaultFrictionOnSelf
}

func clampAbs(v, limit float64) float64 {
	limit = math.Abs(limit)
	return math.Max(-limit, math.Min(limit, v))
}
