package system

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/l1jgo/tilecore/internal/config"
	"github.com/l1jgo/tilecore/internal/persist"
	"github.com/l1jgo/tilecore/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// openSnapshotRepo connects to TILECORE_TEST_DSN with an empty snapshot
// table, or skips.
func openSnapshotRepo(t *testing.T) *persist.SnapshotRepo {
	t.Helper()
	dsn := os.Getenv("TILECORE_TEST_DSN")
	if dsn == "" {
		t.Skip("TILECORE_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := zaptest.NewLogger(t)
	db, err := persist.NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, log)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persist.RunMigrations(ctx, db.Pool, log))
	_, err = db.Pool.Exec(ctx, `TRUNCATE body_snapshots`)
	require.NoError(t, err)
	return persist.NewSnapshotRepo(db)
}

func TestSnapshotSystemSurvivesRestart(t *testing.T) {
	repo := openSnapshotRepo(t)
	ctx := context.Background()
	const keep = 3

	run := func(frames int) *SnapshotSystem {
		s, err := NewSnapshotSystem(ctx, repo, 10*time.Millisecond, keep, zaptest.NewLogger(t))
		require.NoError(t, err)
		e, _ := bodyEntity(world.NewRect(0, 0, 4, 4))
		s.Add(e)
		s.Update(time.Duration(frames) * 10 * time.Millisecond)
		require.Equal(t, frames, s.Written())
		return s
	}

	first := run(5)
	assert.Equal(t, uint64(5), first.Frame())

	second := run(2)
	assert.Equal(t, uint64(7), second.Frame())

	latest, ok, err := repo.LatestFrame(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), latest)

	for f, want := range map[uint64]int{4: 0, 5: 1, 6: 1, 7: 1} {
		rows, err := repo.LoadFrame(ctx, f)
		require.NoError(t, err)
		assert.Len(t, rows, want, "frame %d", f)
	}
}
