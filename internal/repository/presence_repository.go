package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PresenceRepository stores heartbeat records in the active_sessions table.
// It satisfies presence.Store.
type PresenceRepository struct {
	pool *pgxpool.Pool
}

// NewPresenceRepository constructs repository.
func NewPresenceRepository(pool *pgxpool.Pool) *PresenceRepository {
	return &PresenceRepository{pool: pool}
}

// Upsert keeps the greater of the stored and incoming timestamps.
func (r *PresenceRepository) Upsert(ctx context.Context, sessionID string, seen time.Time) error {
	const query = `
        INSERT INTO active_sessions (id, last_seen)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE
        SET last_seen = GREATEST(active_sessions.last_seen, EXCLUDED.last_seen)`
	_, err := r.pool.Exec(ctx, query, sessionID, seen)
	return err
}

func (r *PresenceRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM active_sessions WHERE last_seen < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *PresenceRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM active_sessions WHERE last_seen >= $1`, since).Scan(&n)
	return n, err
}
