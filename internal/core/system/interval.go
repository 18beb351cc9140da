package system

import "time"

// IntervalFunc supplies the current processing interval. It is read before
// every sub-step, so the interval may change while catching up.
type IntervalFunc func() time.Duration

// FixedInterval returns an IntervalFunc that always yields d.
func FixedInterval(d time.Duration) IntervalFunc {
	return func() time.Duration { return d }
}

// IntervalGameSystem runs its base system in fixed-size chunks of time.
// An outer Update may run the base zero, one or many times depending on
// how much time has accumulated.
type IntervalGameSystem struct {
	*GameSystem
	interval    IntervalFunc
	accumulator time.Duration
}

func NewIntervalGameSystem(base *GameSystem, interval IntervalFunc) *IntervalGameSystem {
	return &IntervalGameSystem{GameSystem: base, interval: interval}
}

// Accumulator returns the time carried over to the next Update.
func (s *IntervalGameSystem) Accumulator() time.Duration {
	return s.accumulator
}

// Update consumes whole intervals from the accumulator. A non-positive
// interval disables chunking and runs the base once with dt.
func (s *IntervalGameSystem) Update(dt time.Duration) {
	iv := s.interval()
	if iv <= 0 {
		s.GameSystem.Update(dt)
		return
	}
	s.accumulator += dt
	for s.accumulator >= iv {
		s.accumulator -= iv
		s.GameSystem.Update(iv)
		if iv = s.interval(); iv <= 0 {
			return
		}
	}
}
