package system

import (
	"sort"
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/core/event"
	"go.uber.org/zap"
)

// EngineState makes the purge deferral rule explicit.
type EngineState int

const (
	StateIdle                  EngineState = iota
	StateUpdating                          // inside Update
	StateUpdatingPurgePending              // Purge/Reset requested during Update
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateUpdating:
		return "Updating"
	case StateUpdatingPurgePending:
		return "UpdatingPurgePending"
	default:
		return "Unknown"
	}
}

type EngineOptions struct {
	// AutoSetAlive marks spawned entities alive once their spawn hook ran.
	// Without it the hook itself must call SetDead(false).
	AutoSetAlive bool
	Log          *zap.Logger
	// Events, when set, receives EntitySpawned and EntityDied.
	Events *event.Bus
}

type spawnRequest struct {
	entity *ecs.Entity
	props  ecs.Properties
}

// Engine owns the global entity set and the ordered systems. One Update
// per frame: flush spawns, reap the dead, update systems, run a deferred purge.
// Accessed only from the game loop goroutine — no locks.
type Engine struct {
	entities     ecs.EntitySet
	spawnQueue   []spawnRequest
	systems      []System
	sorted       bool
	state        EngineState
	autoSetAlive bool
	pool         *ecs.EntityPool
	log          *zap.Logger
	events       *event.Bus
}

func NewEngine(opts EngineOptions) *Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		entities:     ecs.NewLinkedSet(),
		spawnQueue:   make([]spawnRequest, 0, 64),
		systems:      make([]System, 0, 16),
		autoSetAlive: opts.AutoSetAlive,
		pool:         ecs.NewEntityPool(),
		log:          log,
		events:       opts.Events,
	}
}

func (en *Engine) State() EngineState          { return en.state }
func (en *Engine) AutoSetAlive() bool          { return en.autoSetAlive }
func (en *Engine) SetAutoSetAlive(on bool)     { en.autoSetAlive = on }
func (en *Engine) Len() int                    { return en.entities.Len() }
func (en *Engine) PendingSpawns() int          { return len(en.spawnQueue) }
func (en *Engine) Contains(e *ecs.Entity) bool { return en.entities.Contains(e) }

// Entities returns a snapshot of every spawned, not yet reaped entity.
func (en *Engine) Entities() ecs.View {
	return en.entities.View()
}

// AddSystem registers s. Systems update ordered by phase, then by
// registration order.
func (en *Engine) AddSystem(s System) {
	en.systems = append(en.systems, s)
	en.sorted = false
}

// RemoveSystem unregisters the system with the given name.
func (en *Engine) RemoveSystem(name string) bool {
	for i, s := range en.systems {
		if s.Name() == name {
			en.systems = append(en.systems[:i], en.systems[i+1:]...)
			return true
		}
	}
	return false
}

// System looks a registered system up by name.
func (en *Engine) System(name string) (System, bool) {
	for _, s := range en.systems {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Systems returns the systems in update order.
func (en *Engine) Systems() []System {
	en.ensureSorted()
	out := make([]System, len(en.systems))
	copy(out, en.systems)
	return out
}

func (en *Engine) ensureSorted() {
	if !en.sorted {
		sort.SliceStable(en.systems, func(i, j int) bool {
			return en.systems[i].Phase() < en.systems[j].Phase()
		})
		en.sorted = true
	}
}

// Spawn queues e; it joins the engine on the next Update.
func (en *Engine) Spawn(e *ecs.Entity, props ecs.Properties) {
	en.spawnQueue = append(en.spawnQueue, spawnRequest{entity: e, props: props})
}

func (en *Engine) Update(dt time.Duration) {
	en.state = StateUpdating
	en.ensureSorted()

	en.flushSpawns()
	en.reapDead()
	for _, s := range en.systems {
		s.Update(dt)
	}

	if en.state == StateUpdatingPurgePending {
		en.log.Debug("running deferred purge")
		en.purge()
	}
	en.state = StateIdle
}

func (en *Engine) flushSpawns() {
	if len(en.spawnQueue) == 0 {
		return
	}
	queue := en.spawnQueue
	en.spawnQueue = make([]spawnRequest, 0, cap(queue))

	for _, req := range queue {
		e := req.entity
		if !en.entities.Add(e) {
			en.log.Debug("ignoring spawn of entity already in engine", zap.Stringer("entity", e))
			continue
		}
		e.SetID(en.pool.Create())
		if e.OnSpawn != nil {
			e.OnSpawn(e, req.props)
		}
		for _, s := range en.systems {
			s.Add(e)
		}
		if en.autoSetAlive {
			e.SetDead(false)
		}
		if en.events != nil {
			event.Emit(en.events, event.EntitySpawned{EntityID: e.ID()})
		}
	}
}

func (en *Engine) reapDead() {
	for _, e := range en.entities.View().All() {
		if e.Dead() {
			en.reap(e)
		}
	}
}

// reap removes e from the engine and every system and fires its death hook.
func (en *Engine) reap(e *ecs.Entity) {
	if !en.entities.Remove(e) {
		return
	}
	for _, s := range en.systems {
		s.Remove(e)
	}
	if e.OnDeath != nil {
		e.OnDeath(e)
	}
	if en.events != nil {
		event.Emit(en.events, event.EntityDied{EntityID: e.ID()})
	}
	en.pool.Destroy(e.ID())
	e.SetID(0)
}

// Purge kills every entity (death hooks fire once each) and clears every
// system. Called during Update it is deferred to the end of that Update.
// Queued spawns survive a purge.
func (en *Engine) Purge() {
	switch en.state {
	case StateIdle:
		en.purge()
	case StateUpdating:
		en.log.Debug("purge requested during update, deferring")
		en.state = StateUpdatingPurgePending
	}
}

// Reset is Purge.
func (en *Engine) Reset() {
	en.Purge()
}

func (en *Engine) purge() {
	view := en.entities.View()
	for _, e := range view.All() {
		e.SetDead(true)
		en.reap(e)
	}
	for _, s := range en.systems {
		s.Purge()
	}
	en.log.Debug("engine purged", zap.Int("entities", view.Len()))
}
