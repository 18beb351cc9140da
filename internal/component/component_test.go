package component

import (
	"testing"
	"time"

	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/stretchr/testify/assert"
)

func TestLifetimeResetRestoresTTL(t *testing.T) {
	l := NewLifetime(2 * time.Second)
	l.Remaining = -time.Millisecond
	assert.True(t, l.Expired())

	e := ecs.NewEntity(l)
	e.Reset()

	assert.Equal(t, 2*time.Second, l.Remaining)
	assert.False(t, l.Expired())
}

func TestComponentTypesAreDistinct(t *testing.T) {
	assert.NotEqual(t, LifetimeType, LayerType)
	assert.NotEqual(t, LayerType, LabelType)
	assert.Equal(t, "lifetime", LifetimeType.String())
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "hero", NameOf(ecs.NewEntity(&Label{Name: "hero"})))
	assert.Empty(t, NameOf(ecs.NewEntity()))
}
