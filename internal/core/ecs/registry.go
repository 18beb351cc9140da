package ecs

import (
	"fmt"
	"math/bits"
	"strings"
	"sync"
)

// MaxComponentTypes is the number of distinct component kinds a Mask can hold.
const MaxComponentTypes = 64

// ComponentType is a stable tag for a component kind, handed out by
// RegisterComponentType. Tags are dense, starting at 0.
type ComponentType uint8

// Registry tracks component kinds by name. Registration happens at package
// init time; lookups after that are read-only.
type Registry struct {
	mu    sync.Mutex
	names []string
	byKey map[string]ComponentType
}

func NewRegistry() *Registry {
	return &Registry{
		names: make([]string, 0, MaxComponentTypes),
		byKey: make(map[string]ComponentType, MaxComponentTypes),
	}
}

var defaultRegistry = NewRegistry()

// RegisterComponentType allocates a tag in the process-wide registry.
// Registering the same name twice returns the same tag.
func RegisterComponentType(name string) ComponentType {
	return defaultRegistry.Register(name)
}

// Register allocates a tag for name. Exceeding MaxComponentTypes is a
// construction-time misconfiguration and panics.
func (r *Registry) Register(name string) ComponentType {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byKey[name]; ok {
		return t
	}
	if len(r.names) >= MaxComponentTypes {
		panic(fmt.Sprintf("ecs: cannot register component %q: limit of %d types reached", name, MaxComponentTypes))
	}
	t := ComponentType(len(r.names))
	r.names = append(r.names, name)
	r.byKey[name] = t
	return t
}

// Name returns the registered name of t, or "" if unknown.
func (r *Registry) Name(t ComponentType) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(t) >= len(r.names) {
		return ""
	}
	return r.names[t]
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

func (t ComponentType) String() string {
	if name := defaultRegistry.Name(t); name != "" {
		return name
	}
	return fmt.Sprintf("component(%d)", uint8(t))
}

// Mask is a set of component types.
type Mask uint64

// MaskOf builds a mask holding every given type.
func MaskOf(types ...ComponentType) Mask {
	var m Mask
	for _, t := range types {
		m = m.With(t)
	}
	return m
}

func (m Mask) With(t ComponentType) Mask    { return m | 1<<t }
func (m Mask) Without(t ComponentType) Mask { return m &^ (1 << t) }
func (m Mask) Has(t ComponentType) bool     { return m&(1<<t) != 0 }
func (m Mask) IsEmpty() bool                { return m == 0 }
func (m Mask) Len() int                     { return bits.OnesCount64(uint64(m)) }

// Contains reports whether every type in other is also in m.
func (m Mask) Contains(other Mask) bool {
	return m&other == other
}

// Types lists the member types in ascending tag order.
func (m Mask) Types() []ComponentType {
	out := make([]ComponentType, 0, m.Len())
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		out = append(out, ComponentType(bits.TrailingZeros64(rest)))
	}
	return out
}

func (m Mask) String() string {
	types := m.Types()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
