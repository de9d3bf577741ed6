package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-schedule-api/internal/models"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
)

// SnapshotRepository persists the latest normalized result per source in
// Postgres. Snapshots are audit copies of what the pipeline produced; the
// Redis cache, not this table, decides freshness.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository instantiates the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save upserts the snapshot for a source, keeping one row per source id.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot models.Snapshot) error {
	query := `INSERT INTO source_snapshots (source_id, generated_at, stored_at, payload)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (source_id)
        DO UPDATE SET generated_at = EXCLUDED.generated_at, stored_at = EXCLUDED.stored_at, payload = EXCLUDED.payload`

	if _, err := r.db.ExecContext(ctx, query, snapshot.SourceID, snapshot.GeneratedAt, snapshot.StoredAt, snapshot.Payload); err != nil {
		return fmt.Errorf("upsert snapshot for %s: %w", snapshot.SourceID, err)
	}
	return nil
}

// Latest returns the stored snapshot for a source.
func (r *SnapshotRepository) Latest(ctx context.Context, sourceID string) (models.Snapshot, error) {
	var snapshot models.Snapshot
	query := `SELECT source_id, generated_at, stored_at, payload FROM source_snapshots WHERE source_id = $1`

	if err := r.db.GetContext(ctx, &snapshot, query, sourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no snapshot stored for source %q", sourceID))
		}
		return models.Snapshot{}, fmt.Errorf("query snapshot for %s: %w", sourceID, err)
	}
	return snapshot, nil
}

// List returns snapshot metadata for every source, newest first, without the
// payload column.
func (r *SnapshotRepository) List(ctx context.Context) ([]models.SnapshotInfo, error) {
	var infos []models.SnapshotInfo
	query := `SELECT source_id, generated_at, stored_at, octet_length(payload) AS payload_bytes
        FROM source_snapshots ORDER BY stored_at DESC`

	if err := r.db.SelectContext(ctx, &infos, query); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// PurgeOlderThan removes snapshots not refreshed since the cutoff.
func (r *SnapshotRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM source_snapshots WHERE stored_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge snapshots rows affected: %w", err)
	}
	return affected, nil
}
