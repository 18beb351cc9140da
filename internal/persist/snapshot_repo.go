package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BodySnapshot is one body's state at the end of a frame.
type BodySnapshot struct {
	Frame     uint64
	EntityID  uint64
	Label     string
	BodyType  string
	X         float64
	Y         float64
	Width     float64
	Height    float64
	VelocityX float64
	VelocityY float64
	Rotation  int16 // degrees
}

var snapshotColumns = []string{
	"frame", "entity_id", "label", "body_type",
	"x", "y", "width", "height", "velocity_x", "velocity_y", "rotation",
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// WriteSnapshots stores a batch of rows in one transaction. Rows of a frame
// already stored replace the old ones.
func (r *SnapshotRepo) WriteSnapshots(ctx context.Context, rows []BodySnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	frames := make(map[uint64]struct{})
	for _, s := range rows {
		if _, ok := frames[s.Frame]; ok {
			continue
		}
		frames[s.Frame] = struct{}{}
		if _, err := tx.Exec(ctx,
			`DELETE FROM body_snapshots WHERE frame = $1`, int64(s.Frame),
		); err != nil {
			return fmt.Errorf("snapshot clear frame %d: %w", s.Frame, err)
		}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"body_snapshots"},
		snapshotColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			s := rows[i]
			return []any{
				int64(s.Frame), int64(s.EntityID), s.Label, s.BodyType,
				s.X, s.Y, s.Width, s.Height, s.VelocityX, s.VelocityY, s.Rotation,
			}, nil
		}),
	); err != nil {
		return fmt.Errorf("snapshot copy: %w", err)
	}

	return tx.Commit(ctx)
}

// LatestFrame returns the newest stored frame. ok is false when the table
// is empty.
func (r *SnapshotRepo) LatestFrame(ctx context.Context) (frame uint64, ok bool, err error) {
	var f int64
	err = r.db.Pool.QueryRow(ctx,
		`SELECT frame FROM body_snapshots ORDER BY frame DESC LIMIT 1`,
	).Scan(&f)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest frame: %w", err)
	}
	return uint64(f), true, nil
}

// LoadFrame returns every row of a frame ordered by entity id.
func (r *SnapshotRepo) LoadFrame(ctx context.Context, frame uint64) ([]BodySnapshot, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT frame, entity_id, label, body_type,
		        x, y, width, height, velocity_x, velocity_y, rotation
		 FROM body_snapshots
		 WHERE frame = $1
		 ORDER BY entity_id`, int64(frame),
	)
	if err != nil {
		return nil, fmt.Errorf("load frame %d: %w", frame, err)
	}
	defer rows.Close()

	var result []BodySnapshot
	for rows.Next() {
		var s BodySnapshot
		var f, id int64
		if err := rows.Scan(&f, &id, &s.Label, &s.BodyType,
			&s.X, &s.Y, &s.Width, &s.Height, &s.VelocityX, &s.VelocityY, &s.Rotation,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Frame, s.EntityID = uint64(f), uint64(id)
		result = append(result, s)
	}
	return result, rows.Err()
}

// Prune keeps the newest keep frames and deletes the rest. It returns the
// number of rows removed.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM body_snapshots
		 WHERE frame NOT IN (
		     SELECT DISTINCT frame FROM body_snapshots ORDER BY frame DESC LIMIT $1
		 )`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
