// Package quota implements admission control: a fixed-window per-IP limiter
// and a per-device daily question quota, both over an injected Store.
package quota

import (
	"context"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Store persists quota records by scope key.
type Store interface {
	// Get returns the record for scopeKey, or nil with no error when absent.
	Get(ctx context.Context, scopeKey string) (*domain.QuotaRecord, error)
	// Set creates or overwrites the record.
	Set(ctx context.Context, rec domain.QuotaRecord) error
	// DeleteStale removes records whose ResetAt is before the given time.
	DeleteStale(ctx context.Context, before time.Time) (int, error)
}
