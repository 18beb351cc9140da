package ecs

// Component is a capability attached to an entity. An entity holds at most one
// component per ComponentType; Put overwrites by type.
type Component interface {
	Type() ComponentType
	// Reset restores the component to its freshly-constructed state.
	// Called when the owning entity resets.
	Reset()
}

// ComponentOf returns the component of type t stored on e, asserted to T.
// Returns false when the component is absent or has a different Go type.
func ComponentOf[T Component](e *Entity, t ComponentType) (T, bool) {
	var zero T
	c, ok := e.components[t]
	if !ok {
		return zero, false
	}
	v, ok := c.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MustComponent is ComponentOf for callers whose component mask already
// guarantees presence. A miss is a programming error and panics.
func MustComponent[T Component](e *Entity, t ComponentType) T {
	v, ok := ComponentOf[T](e, t)
	if !ok {
		panic("ecs: entity " + e.String() + " is missing required component " + t.String())
	}
	return v
}
