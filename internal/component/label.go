package component

import "github.com/l1jgo/tilecore/internal/core/ecs"

var LabelType = ecs.RegisterComponentType("label")

// Label names an entity for logs, scripts and snapshots.
type Label struct {
	Name   string
	Kind   string // scene archetype, e.g. "player", "crate"
	Script string // Lua body hook, empty for none
}

func (*Label) Type() ecs.ComponentType { return LabelType }
func (*Label) Reset()                  {}

// NameOf returns the label name of e, or "" if it has none.
func NameOf(e *ecs.Entity) string {
	if l, ok := ecs.ComponentOf[*Label](e, LabelType); ok {
		return l.Name
	}
	return ""
}
