package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	"github.com/l1jgo/tilecore/internal/core/event"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
	"github.com/l1jgo/tilecore/internal/persist"
	"github.com/l1jgo/tilecore/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func bodyEntity(r world.Rect, extra ...ecs.Component) (*ecs.Entity, *world.Body) {
	e := ecs.NewEntity(extra...)
	b := world.NewBody(r, world.Dynamic)
	world.AttachBody(e, b)
	e.SetDead(false)
	return e, b
}

func TestBoundsSystemKillsEscapees(t *testing.T) {
	s := NewBoundsSystem(world.NewRect(0, 0, 100, 100), zaptest.NewLogger(t))
	inside, _ := bodyEntity(world.NewRect(10, 10, 5, 5))
	edge, _ := bodyEntity(world.NewRect(98, 50, 5, 5))
	outside, _ := bodyEntity(world.NewRect(100, 0, 5, 5), &component.Label{Name: "runaway"})
	for _, e := range []*ecs.Entity{inside, edge, outside} {
		s.Add(e)
	}

	s.Update(0)

	assert.False(t, inside.Dead())
	assert.False(t, edge.Dead(), "partly inside still counts")
	assert.True(t, outside.Dead(), "touching the edge from outside is out")
	assert.Equal(t, 1, s.Killed())
	assert.Equal(t, coresys.PhasePostUpdate, s.Phase())
}

func TestLifetimeSystem(t *testing.T) {
	s := NewLifetimeSystem()
	e := ecs.NewEntity(component.NewLifetime(100 * time.Millisecond))
	e.SetDead(false)
	s.Add(e)

	s.Update(60 * time.Millisecond)
	require.False(t, e.Dead())
	l, _ := ecs.ComponentOf[*component.Lifetime](e, component.LifetimeType)
	assert.Equal(t, 40*time.Millisecond, l.Remaining)

	s.Update(60 * time.Millisecond)
	assert.True(t, e.Dead())
	assert.Equal(t, 1, s.Expired())
}

func TestLifetimeSystemWithEngineReset(t *testing.T) {
	en := coresys.NewEngine(coresys.EngineOptions{AutoSetAlive: true, Log: zaptest.NewLogger(t)})
	lifetimes := NewLifetimeSystem()
	en.AddSystem(lifetimes)
	lt := component.NewLifetime(50 * time.Millisecond)
	e := ecs.NewEntity(lt)
	e.OnDeath = func(e *ecs.Entity) { e.Reset() }

	en.Spawn(e, nil)
	en.Update(0)
	en.Update(50 * time.Millisecond)
	en.Update(0)

	assert.False(t, en.Contains(e))
	assert.Equal(t, 50*time.Millisecond, lt.Remaining, "reset on death so the entity can be respawned")

	en.Spawn(e, nil)
	en.Update(0)
	assert.True(t, en.Contains(e))
}

func TestDrawListSortsByLayer(t *testing.T) {
	s := NewDrawListSystem()
	fg, _ := bodyEntity(world.NewRect(0, 0, 1, 1), &component.Layer{Z: 2, Sprite: "hero"})
	bg, _ := bodyEntity(world.NewRect(0, 0, 1, 1), &component.Layer{Z: 0, Sprite: "sky"})
	mid1, _ := bodyEntity(world.NewRect(0, 0, 1, 1), &component.Layer{Z: 1, Sprite: "tree"})
	mid2, _ := bodyEntity(world.NewRect(0, 0, 1, 1), &component.Layer{Z: 1, Sprite: "bush"})
	noLayer, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	for _, e := range []*ecs.Entity{fg, bg, mid1, mid2, noLayer} {
		s.Add(e)
	}

	s.Update(0)

	var sprites []string
	for _, it := range s.Items() {
		sprites = append(sprites, it.Sprite)
	}
	assert.Equal(t, []string{"sky", "tree", "bush", "hero"}, sprites)
}

type fakeWriter struct {
	frames [][]persist.BodySnapshot
	err    error
	pruned []int
}

func (w *fakeWriter) WriteSnapshots(ctx context.Context, rows []persist.BodySnapshot) error {
	if w.err != nil {
		return w.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.frames = append(w.frames, append([]persist.BodySnapshot(nil), rows...))
	return nil
}

func (w *fakeWriter) Prune(_ context.Context, keep int) (int64, error) {
	w.pruned = append(w.pruned, keep)
	return 0, nil
}

func TestSnapshotSystemWritesPerInterval(t *testing.T) {
	w := &fakeWriter{}
	s, err := NewSnapshotSystem(context.Background(), w, 100*time.Millisecond, 10, zaptest.NewLogger(t))
	require.NoError(t, err)
	e, b := bodyEntity(world.NewRect(1, 2, 3, 4), &component.Label{Name: "crate"})
	b.Physics.Velocity = world.Vector{X: 5}
	s.Add(e)

	s.Update(250 * time.Millisecond)

	require.Len(t, w.frames, 2)
	assert.Equal(t, uint64(2), s.Frame())
	assert.Equal(t, 2, s.Written())
	assert.Equal(t, []int{10, 10}, w.pruned)
	row := w.frames[1][0]
	assert.Equal(t, uint64(2), row.Frame)
	assert.Equal(t, "crate", row.Label)
	assert.Equal(t, "dynamic", row.BodyType)
	assert.Equal(t, 5.0, row.VelocityX)
	assert.Equal(t, 3.0, row.Width)
	assert.Equal(t, coresys.PhasePersist, s.Phase())
}

func TestSnapshotSystemLogsWriteErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	w := &fakeWriter{err: errors.New("db down")}
	s, err := NewSnapshotSystem(context.Background(), w, 10*time.Millisecond, 0, zap.New(core))
	require.NoError(t, err)
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)

	require.NotPanics(t, func() { s.Update(10 * time.Millisecond) })

	assert.Equal(t, 1, s.Failed())
	assert.Zero(t, s.Written())
	assert.Equal(t, 1, logs.FilterMessage("snapshot write failed").Len())
}

func TestSnapshotSystemFlush(t *testing.T) {
	w := &fakeWriter{}
	s, err := NewSnapshotSystem(context.Background(), w, time.Hour, 0, nil)
	require.NoError(t, err)
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)
	s.Update(time.Millisecond)
	require.Empty(t, w.frames)

	s.Flush()

	assert.Len(t, w.frames, 1)
	assert.Empty(t, w.pruned, "keepFrames 0 never prunes")
}

func TestSnapshotSystemFlushAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &fakeWriter{}
	s, err := NewSnapshotSystem(ctx, w, time.Hour, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)

	cancel()
	s.Flush()

	assert.Len(t, w.frames, 1, "shutdown flush writes even though the loop context is done")
	assert.Equal(t, 1, s.Written())
	assert.Zero(t, s.Failed())
}

func TestSnapshotSystemIntervalWriteHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &fakeWriter{}
	s, err := NewSnapshotSystem(ctx, w, 10*time.Millisecond, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)

	cancel()
	s.Update(10 * time.Millisecond)

	assert.Empty(t, w.frames)
	assert.Equal(t, 1, s.Failed())
}

// storedWriter remembers frames from an earlier run.
type storedWriter struct {
	fakeWriter
	latest    uint64
	found     bool
	latestErr error
}

func (w *storedWriter) LatestFrame(context.Context) (uint64, bool, error) {
	return w.latest, w.found, w.latestErr
}

func TestSnapshotSystemResumesAfterStoredFrames(t *testing.T) {
	w := &storedWriter{latest: 100, found: true}
	s, err := NewSnapshotSystem(context.Background(), w, 10*time.Millisecond, 10, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), s.Frame())
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)

	s.Update(10 * time.Millisecond)

	require.Len(t, w.frames, 1)
	assert.Equal(t, uint64(101), w.frames[0][0].Frame)
}

func TestSnapshotSystemEmptyStoreStartsAtOne(t *testing.T) {
	w := &storedWriter{}
	s, err := NewSnapshotSystem(context.Background(), w, 10*time.Millisecond, 0, nil)
	require.NoError(t, err)
	e, _ := bodyEntity(world.NewRect(0, 0, 1, 1))
	s.Add(e)

	s.Update(10 * time.Millisecond)

	require.Len(t, w.frames, 1)
	assert.Equal(t, uint64(1), w.frames[0][0].Frame)
}

func TestSnapshotSystemLatestFrameError(t *testing.T) {
	w := &storedWriter{latestErr: errors.New("db down")}
	_, err := NewSnapshotSystem(context.Background(), w, time.Second, 0, nil)
	assert.ErrorContains(t, err, "db down")
}

type ping struct{ frame int }

func TestEventSystemDeliversPreviousFrame(t *testing.T) {
	bus := event.NewBus()
	en := coresys.NewEngine(coresys.EngineOptions{AutoSetAlive: true, Events: bus})
	en.AddSystem(NewEventSystem(bus))
	frame := 0
	en.AddSystem(coresys.NewGameSystem("emitter", ecs.MaskOf(component.LabelType), func(bool, ecs.View, time.Duration) {
		frame++
		event.Emit(bus, ping{frame})
	}))
	var got []int
	event.Subscribe(bus, func(p ping) { got = append(got, p.frame) })

	en.Update(0)
	assert.Empty(t, got, "emitted after the input phase, delivered next frame")

	en.Update(0)
	assert.Equal(t, []int{1}, got)
	en.Update(0)
	assert.Equal(t, []int{1, 2}, got)
}

func TestEventSystemDeliversSpawnsOfTheSameFrame(t *testing.T) {
	bus := event.NewBus()
	en := coresys.NewEngine(coresys.EngineOptions{AutoSetAlive: true, Events: bus})
	en.AddSystem(NewEventSystem(bus))
	var spawned int
	event.Subscribe(bus, func(event.EntitySpawned) { spawned++ })

	en.Spawn(ecs.NewEntity(), nil)
	en.Update(0)
	assert.Equal(t, 1, spawned, "spawns are flushed before the input phase")

	en.Update(0)
	assert.Equal(t, 1, spawned)
}
