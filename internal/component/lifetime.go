package component

import (
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
)

var LifetimeType = ecs.RegisterComponentType("lifetime")

// Lifetime kills its entity once Remaining runs out. Reset restores the
// full TTL so pooled entities can be respawned.
type Lifetime struct {
	TTL       time.Duration
	Remaining time.Duration
}

func NewLifetime(ttl time.Duration) *Lifetime {
	return &Lifetime{TTL: ttl, Remaining: ttl}
}

func (*Lifetime) Type() ecs.ComponentType { return LifetimeType }
func (l *Lifetime) Reset()                { l.Remaining = l.TTL }

// Expired reports whether no time is left.
func (l *Lifetime) Expired() bool { return l.Remaining <= 0 }
