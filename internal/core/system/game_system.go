package system

import (
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
)

// ProcessFunc handles one update of a system. entities is a read-only
// snapshot; structural changes go through Add/Remove and land next update.
type ProcessFunc func(on bool, entities ecs.View, dt time.Duration)

// GameSystem owns a component mask and the live set of entities that
// qualify for it. Adds are double-buffered: Add queues into pending, and the
// queue is flushed into the live set at the top of the next Update.
// Accessed only from the game loop goroutine — no locks.
type GameSystem struct {
	name     string
	phase    Phase
	mask     ecs.Mask
	entities ecs.EntitySet
	pending  ecs.EntitySet
	process  ProcessFunc
	on       bool

	updating      bool
	purgeDeferred bool
}

// NewGameSystem creates a system whose entities are processed in insertion order.
func NewGameSystem(name string, mask ecs.Mask, process ProcessFunc) *GameSystem {
	return newGameSystem(name, mask, ecs.NewLinkedSet(), process)
}

// NewSortedGameSystem creates a system whose entities are processed in the
// order given by less, for systems where processing order affects the outcome.
func NewSortedGameSystem(name string, mask ecs.Mask, less func(a, b *ecs.Entity) bool, process ProcessFunc) *GameSystem {
	return newGameSystem(name, mask, ecs.NewSortedSet(less), process)
}

func newGameSystem(name string, mask ecs.Mask, set ecs.EntitySet, process ProcessFunc) *GameSystem {
	return &GameSystem{
		name:     name,
		phase:    PhaseUpdate,
		mask:     mask,
		entities: set,
		pending:  ecs.NewLinkedSet(),
		process:  process,
		on:       true,
	}
}

func (s *GameSystem) Name() string    { return s.name }
func (s *GameSystem) Phase() Phase    { return s.phase }
func (s *GameSystem) Mask() ecs.Mask  { return s.mask }
func (s *GameSystem) On() bool        { return s.on }
func (s *GameSystem) SetOn(on bool)   { s.on = on }
func (s *GameSystem) Updating() bool  { return s.updating }
func (s *GameSystem) Len() int        { return s.entities.Len() }
func (s *GameSystem) PendingLen() int { return s.pending.Len() }

// SetPhase moves the system to another frame phase. Call before registering
// it with an Engine.
func (s *GameSystem) SetPhase(p Phase) {
	s.phase = p
}

// Entities returns a snapshot of the live set.
func (s *GameSystem) Entities() ecs.View {
	return s.entities.View()
}

// Contains reports live membership; queued entities are not members yet.
func (s *GameSystem) Contains(e *ecs.Entity) bool {
	return s.entities.Contains(e)
}

func (s *GameSystem) Qualifies(e *ecs.Entity) bool {
	return e.Mask().Contains(s.mask)
}

func (s *GameSystem) Add(e *ecs.Entity) bool {
	if !s.Qualifies(e) {
		return false
	}
	s.pending.Add(e)
	return true
}

// Remove drops e from the pending queue and the live set. During an update
// the snapshot handed to process still holds e until process returns.
// Between updates Remove takes effect at once; it does not wait for the
// next update's dead sweep.
func (s *GameSystem) Remove(e *ecs.Entity) {
	s.pending.Remove(e)
	s.entities.Remove(e)
}

// Purge clears the live set and the pending queue. Called from inside
// process it is deferred until process returns.
func (s *GameSystem) Purge() {
	if s.updating {
		s.purgeDeferred = true
		return
	}
	s.clear()
}

func (s *GameSystem) clear() {
	s.entities.Clear()
	s.pending.Clear()
	s.purgeDeferred = false
}

func (s *GameSystem) Update(dt time.Duration) {
	s.updating = true

	queued := s.pending.View()
	s.pending.Clear()
	for _, e := range queued.All() {
		s.entities.Add(e)
	}
	s.entities.RemoveIf(func(e *ecs.Entity) bool {
		return e.Dead() || !s.Qualifies(e)
	})

	if s.process != nil {
		s.process(s.on, s.entities.View(), dt)
	}

	s.updating = false
	if s.purgeDeferred {
		s.clear()
	}
}
