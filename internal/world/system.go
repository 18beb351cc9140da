package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/core/system"
	"go.uber.org/zap"
)

var (
	ErrInvalidStep     = errors.New("world: fixed step must be positive")
	ErrInvalidScale    = errors.New("world: pixels per meter must be positive")
	ErrInvalidSubSteps = errors.New("world: max sub-steps must not be negative")
	ErrNoIndexSupplier = errors.New("world: spatial index supplier is required")
	// ErrNoSpatialIndex is the panic value when the index supplier returns nil
	// while a step runs.
	ErrNoSpatialIndex = errors.New("world: spatial index supplier returned nil")
)

// Options configures a physics System.
type Options struct {
	// PixelsPerMeter is the spatial index cell size.
	PixelsPerMeter float64
	// FixedStep is the duration of one physics cycle.
	FixedStep time.Duration
	// MaxSubSteps caps cycles per Update; 0 means unlimited. Whole steps
	// beyond the cap are dropped.
	MaxSubSteps int
	// Index supplies the spatial index for every cycle.
	Index func() *SpatialIndex

	Listener   ContactListener  // nil: NopContactListener
	Collisions CollisionHandler // nil: StandardCollisionHandler
	Filter     ContactFilter
	Log        *zap.Logger
}

// StaticIndex returns a supplier that always yields idx.
func StaticIndex(idx *SpatialIndex) func() *SpatialIndex {
	return func() *SpatialIndex { return idx }
}

// System advances every body-bearing entity in fixed steps, raises fixture
// contacts and resolves body collisions. It runs in PhasePhysics.
// Accessed only from the game loop goroutine — no locks.
type System struct {
	*system.GameSystem

	step        time.Duration
	maxSubSteps int
	supplier    func() *SpatialIndex
	listener    ContactListener
	collisions  CollisionHandler
	filter      compiledFilter
	log         *zap.Logger

	accumulator time.Duration
	cycles      uint64
	dropped     uint64

	prior   *contactSet
	current *contactSet
	bodies  []*Body
}

func NewSystem(opts Options) (*System, error) {
	if opts.FixedStep <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, opts.FixedStep)
	}
	if opts.PixelsPerMeter <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidScale, opts.PixelsPerMeter)
	}
	if opts.MaxSubSteps < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSubSteps, opts.MaxSubSteps)
	}
	if opts.Index == nil {
		return nil, ErrNoIndexSupplier
	}
	if opts.Listener == nil {
		opts.Listener = NopContactListener
	}
	if opts.Collisions == nil {
		opts.Collisions = StandardCollisionHandler{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	s := &System{
		step:        opts.FixedStep,
		maxSubSteps: opts.MaxSubSteps,
		supplier:    opts.Index,
		listener:    opts.Listener,
		collisions:  opts.Collisions,
		filter:      opts.Filter.compile(),
		log:         opts.Log,
		prior:       newContactSet(),
		current:     newContactSet(),
	}
	s.GameSystem = system.NewGameSystem("world", ecs.MaskOf(BodyComponentType), s.process)
	s.SetPhase(system.PhasePhysics)
	return s, nil
}

func (s *System) FixedStep() time.Duration   { return s.step }
func (s *System) Accumulator() time.Duration { return s.accumulator }

// Cycles returns the number of fixed steps run so far.
func (s *System) Cycles() uint64 { return s.cycles }

// Dropped returns the number of steps discarded by the MaxSubSteps cap.
func (s *System) Dropped() uint64 { return s.dropped }

// Index returns the current spatial index. It panics with ErrNoSpatialIndex
// if the supplier yields nil.
func (s *System) Index() *SpatialIndex {
	idx := s.supplier()
	if idx == nil {
		panic(ErrNoSpatialIndex)
	}
	return idx
}

// Contacts returns the contacts active after the last step, in the order
// they were first seen that step.
func (s *System) Contacts() []Contact {
	return append([]Contact(nil), s.prior.list...)
}

func (s *System) process(on bool, entities ecs.View, dt time.Duration) {
	if !on {
		return
	}

	clear(s.bodies)
	s.bodies = s.bodies[:0]
	for _, e := range entities.All() {
		c := ecs.MustComponent[*BodyComponent](e, BodyComponentType)
		if c.Body == nil {
			panic(fmt.Sprintf("world: entity %s has an empty body component", e))
		}
		s.bodies = append(s.bodies, c.Body)
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.step {
		if s.maxSubSteps > 0 && steps >= s.maxSubSteps {
			n := s.accumulator / s.step
			s.accumulator -= n * s.step
			s.dropped += uint64(n)
			s.log.Warn("physics falling behind, dropping steps",
				zap.Int64("dropped", int64(n)),
				zap.Int("max_sub_steps", s.maxSubSteps))
			break
		}
		s.accumulator -= s.step
		s.cycle(s.step)
		steps++
	}

	s.reindex()
}

// cycle runs one fixed step over s.bodies.
func (s *System) cycle(dt time.Duration) {
	secs := dt.Seconds()

	for _, b := range s.bodies {
		b.PreProcess.Run(b, dt)
	}

	idx := s.Index()
	idx.Clear()
	for _, b := range s.bodies {
		b.Physics.Step(&b.Bounds, secs)
		s.insert(idx, b)
	}

	s.findContacts(idx)
	s.resolveCollisions(idx)
	s.dispatchContacts(dt)

	for _, b := range s.bodies {
		b.PostProcess.Run(b, dt)
	}
	s.cycles++
}

func (s *System) insert(idx *SpatialIndex, b *Body) {
	idx.AddBody(b)
	for _, f := range b.Fixtures {
		if f.Active {
			idx.AddFixture(f)
		}
	}
}

func (s *System) findContacts(idx *SpatialIndex) {
	for _, b := range s.bodies {
		for _, f := range b.Fixtures {
			if !f.Active || !s.filter.raises(f.Type) {
				continue
			}
			shape := f.WorldShape()
			for _, other := range idx.Fixtures(shape.Bounds()) {
				if other == f || !other.Active {
					continue
				}
				if !s.filter.allows(f.Type, other.Type) {
					continue
				}
				if Overlaps(shape, other.WorldShape()) {
					s.current.add(NewContact(f, other))
				}
			}
		}
	}
}

// resolveCollisions offers every overlapping pair with a dynamic body to the
// collision handler once. Abstract bodies and bodies with collisions off
// are skipped.
func (s *System) resolveCollisions(idx *SpatialIndex) {
	for _, b := range s.bodies {
		if b.Type != Dynamic || !b.Physics.CollisionOn {
			continue
		}
		for _, other := range idx.Bodies(b.RotatedBounds()) {
			if other == b || other.Type == Abstract || !other.Physics.CollisionOn {
				continue
			}
			if other.Type == Dynamic && other.id < b.id {
				continue
			}
			if !b.RotatedBounds().Overlaps(other.RotatedBounds()) {
				continue
			}
			s.collisions.HandleCollision(b, other)
		}
	}
}

func (s *System) dispatchContacts(dt time.Duration) {
	for _, c := range s.current.list {
		if s.prior.contains(c) {
			s.listener.ContinueContact(c, dt)
		} else {
			s.listener.BeginContact(c, dt)
		}
	}
	for _, c := range s.prior.list {
		if !s.current.contains(c) {
			s.listener.EndContact(c, dt)
		}
	}
	s.prior, s.current = s.current, s.prior
	s.current.reset()
}

// reindex rebuilds the index from final positions so queries between
// frames see where bodies ended up.
func (s *System) reindex() {
	idx := s.Index()
	idx.Clear()
	for _, b := range s.bodies {
		s.insert(idx, b)
	}
}
