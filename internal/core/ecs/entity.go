package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on release to invalidate stale refs.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// EntityPool manages id allocation with generational indices and a free list.
// Index 0 generation 0 is never handed out so the zero EntityID means "unspawned".
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // already destroyed (stale reference)
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}

// Properties carries free-form spawn parameters.
type Properties map[string]any

// Entity is a bag of typed components and free-form properties.
// It starts dead and becomes alive once the engine spawns it.
// Accessed only from the game loop goroutine — no locks.
type Entity struct {
	id         EntityID
	components map[ComponentType]Component
	mask       Mask
	props      map[string]any
	dead       bool

	// OnSpawn runs once when the engine flushes this entity's spawn request.
	OnSpawn func(e *Entity, props Properties)
	// OnDeath runs once when the engine reaps this entity.
	OnDeath func(e *Entity)
}

func NewEntity(components ...Component) *Entity {
	e := &Entity{
		components: make(map[ComponentType]Component, len(components)),
		props:      make(map[string]any),
		dead:       true,
	}
	for _, c := range components {
		e.Put(c)
	}
	return e
}

func (e *Entity) ID() EntityID { return e.id }

// SetID is called by the engine on spawn and reap.
func (e *Entity) SetID(id EntityID) { e.id = id }

func (e *Entity) Dead() bool          { return e.dead }
func (e *Entity) SetDead(dead bool)   { e.dead = dead }
func (e *Entity) Kill()               { e.dead = true }
func (e *Entity) Mask() Mask          { return e.mask }
func (e *Entity) ComponentCount() int { return len(e.components) }

// Put stores c under its type, overwriting any previous component of that type.
func (e *Entity) Put(c Component) {
	t := c.Type()
	e.components[t] = c
	e.mask = e.mask.With(t)
}

func (e *Entity) Get(t ComponentType) (Component, bool) {
	c, ok := e.components[t]
	return c, ok
}

func (e *Entity) Has(t ComponentType) bool {
	return e.mask.Has(t)
}

// Remove detaches the component of type t and returns it, if present.
func (e *Entity) Remove(t ComponentType) (Component, bool) {
	c, ok := e.components[t]
	if !ok {
		return nil, false
	}
	delete(e.components, t)
	e.mask = e.mask.Without(t)
	return c, true
}

// Components calls fn for each attached component in tag order.
func (e *Entity) Components(fn func(Component)) {
	for _, t := range e.mask.Types() {
		fn(e.components[t])
	}
}

// Reset resets every attached component.
func (e *Entity) Reset() {
	e.Components(func(c Component) { c.Reset() })
}

func (e *Entity) PutProperty(key string, v any) {
	e.props[key] = v
}

func (e *Entity) Property(key string) (any, bool) {
	v, ok := e.props[key]
	return v, ok
}

func (e *Entity) HasProperty(key string) bool {
	_, ok := e.props[key]
	return ok
}

func (e *Entity) RemoveProperty(key string) (any, bool) {
	v, ok := e.props[key]
	if ok {
		delete(e.props, key)
	}
	return v, ok
}

// PropertyOf returns the property under key asserted to T.
func PropertyOf[T any](e *Entity, key string) (T, bool) {
	var zero T
	v, ok := e.props[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

func (e *Entity) String() string {
	if e.id.IsZero() {
		return fmt.Sprintf("entity(unspawned %p)", e)
	}
	return fmt.Sprintf("entity(%d.%d)", e.id.Index(), e.id.Generation())
}
