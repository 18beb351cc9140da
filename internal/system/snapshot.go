package system

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/tilecore/internal/component"
	"github.com/l1jgo/tilecore/internal/core/ecs"
	coresys "github.com/l1jgo/tilecore/internal/core/system"
	"github.com/l1jgo/tilecore/internal/persist"
	"github.com/l1jgo/tilecore/internal/world"
	"go.uber.org/zap"
)

// SnapshotWriter stores body snapshots. *persist.SnapshotRepo implements it.
type SnapshotWriter interface {
	WriteSnapshots(ctx context.Context, rows []persist.BodySnapshot) error
}

// snapshotPruner is implemented by writers that can drop old frames.
type snapshotPruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// frameSource is implemented by writers that remember earlier runs. Frame
// numbering continues after the newest stored frame.
type frameSource interface {
	LatestFrame(ctx context.Context) (uint64, bool, error)
}

// SnapshotSystem periodically writes the state of every body to a
// SnapshotWriter. Write failures are logged and the frame is skipped.
// Phase: Persist.
type SnapshotSystem struct {
	*coresys.IntervalGameSystem
	ctx        context.Context
	writer     SnapshotWriter
	keepFrames int
	timeout    time.Duration
	log        *zap.Logger

	frame    uint64
	written  int
	failed   int
	rows     []persist.BodySnapshot
	flushing bool
}

// NewSnapshotSystem writes one frame per interval. When keepFrames is
// positive and the writer can prune, older frames are deleted after each
// write. If the writer knows its newest stored frame, numbering resumes
// after it so a restart never overwrites or prunes the new frames.
func NewSnapshotSystem(ctx context.Context, w SnapshotWriter, interval time.Duration, keepFrames int, log *zap.Logger) (*SnapshotSystem, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SnapshotSystem{
		ctx:        ctx,
		writer:     w,
		keepFrames: keepFrames,
		timeout:    5 * time.Second,
		log:        log,
	}
	if src, ok := w.(frameSource); ok {
		qctx, cancel := context.WithTimeout(ctx, s.timeout)
		last, found, err := src.LatestFrame(qctx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("snapshot: latest frame: %w", err)
		}
		if found {
			s.frame = last
			log.Info("snapshot frames resume", zap.Uint64("after", last))
		}
	}
	base := coresys.NewGameSystem("snapshot", ecs.MaskOf(world.BodyComponentType), s.process)
	base.SetPhase(coresys.PhasePersist)
	s.IntervalGameSystem = coresys.NewIntervalGameSystem(base, coresys.FixedInterval(interval))
	return s, nil
}

func (s *SnapshotSystem) Frame() uint64 { return s.frame }
func (s *SnapshotSystem) Written() int  { return s.written }
func (s *SnapshotSystem) Failed() int   { return s.failed }

// Flush writes a frame immediately, regardless of the interval. Used on
// shutdown, so the write ignores cancellation of the system context.
func (s *SnapshotSystem) Flush() {
	s.flushing = true
	defer func() { s.flushing = false }()
	s.GameSystem.Update(0)
}

func (s *SnapshotSystem) process(on bool, entities ecs.View, _ time.Duration) {
	if !on || entities.IsEmpty() {
		return
	}
	s.frame++
	clear(s.rows)
	s.rows = s.rows[:0]
	entities.Each(func(e *ecs.Entity) {
		b := ecs.MustComponent[*world.BodyComponent](e, world.BodyComponentType).Body
		r := b.RotatedBounds()
		s.rows = append(s.rows, persist.BodySnapshot{
			Frame:     s.frame,
			EntityID:  uint64(e.ID()),
			Label:     component.NameOf(e),
			BodyType:  b.Type.String(),
			X:         r.X,
			Y:         r.Y,
			Width:     r.Width,
			Height:    r.Height,
			VelocityX: b.Physics.Velocity.X,
			VelocityY: b.Physics.Velocity.Y,
			Rotation:  int16(b.Rotation.Degrees()),
		})
	})

	parent := s.ctx
	if s.flushing {
		parent = context.WithoutCancel(parent)
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	if err := s.writer.WriteSnapshots(ctx, s.rows); err != nil {
		s.failed++
		s.log.Error("snapshot write failed",
			zap.Uint64("frame", s.frame),
			zap.Int("bodies", len(s.rows)),
			zap.Error(err))
		return
	}
	s.written++
	s.log.Debug("snapshot written", zap.Uint64("frame", s.frame), zap.Int("bodies", len(s.rows)))

	p, ok := s.writer.(snapshotPruner)
	if !ok || s.keepFrames <= 0 {
		return
	}
	if _, err := p.Prune(ctx, s.keepFrames); err != nil {
		s.log.Warn("snapshot prune failed", zap.Error(err))
	}
}
