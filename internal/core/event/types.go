package event

import "github.com/l1jgo/tilecore/internal/core/ecs"

// Engine lifecycle events. Contact events live with the world package.

type EntitySpawned struct {
	EntityID ecs.EntityID
}

type EntityDied struct {
	EntityID ecs.EntityID
}
