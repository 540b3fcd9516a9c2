// Package quota implements the quota record store using PostgreSQL.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/learnflow-backend/internal/adapter/postgres"
	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

const table = "quota_records"

var columns = []string{"scope_key", "count", "window_date", "reset_at", "updated_at"}

// Repo persists quota records in PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	q    postgres.Querier
}

// New creates a new quota repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, q: pool}
}

// Get returns the record for scopeKey, or nil if there is none.
func (r *Repo) Get(ctx context.Context, scopeKey string) (*domain.QuotaRecord, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"scope_key": scopeKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rec domain.QuotaRecord
	err = r.q.QueryRow(ctx, query, args...).Scan(
		&rec.ScopeKey, &rec.Count, &rec.WindowDate, &rec.ResetAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.MapError(err, "quota_record", scopeKey)
	}
	return &rec, nil
}

// Set inserts or overwrites the record for rec.ScopeKey.
func (r *Repo) Set(ctx context.Context, rec domain.QuotaRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(rec.ScopeKey, rec.Count, rec.WindowDate, rec.ResetAt, rec.UpdatedAt).
		Suffix(`ON CONFLICT (scope_key) DO UPDATE SET
			count = EXCLUDED.count,
			window_date = EXCLUDED.window_date,
			reset_at = EXCLUDED.reset_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "quota_record", rec.ScopeKey)
	}
	return nil
}

// DeleteStale removes records whose window ended before the given time.
func (r *Repo) DeleteStale(ctx context.Context, before time.Time) (int, error) {
	query, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Lt{"reset_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete stale quota_records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Ping checks database connectivity for readiness probes.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
