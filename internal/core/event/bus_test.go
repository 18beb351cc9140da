package event

import (
	"testing"

	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []ecs.EntityID
	Subscribe(b, func(ev EntitySpawned) { got = append(got, ev.EntityID) })

	Emit(b, EntitySpawned{EntityID: 1})
	Emit(b, EntitySpawned{EntityID: 2})

	b.DispatchAll()
	assert.Empty(t, got, "nothing is delivered before the swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []ecs.EntityID{1, 2}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 2, "front buffer is cleared by the next swap")
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var spawned, died int
	Subscribe(b, func(EntitySpawned) { spawned++ })
	Subscribe(b, func(EntityDied) { died++ })

	Emit(b, EntityDied{EntityID: 7})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 0, spawned)
	assert.Equal(t, 1, died)
}
