package quota

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// storeMock is a moq-style mock of Store.
type storeMock struct {
	GetFunc         func(ctx context.Context, scopeKey string) (*domain.QuotaRecord, error)
	SetFunc         func(ctx context.Context, rec domain.QuotaRecord) error
	DeleteStaleFunc func(ctx context.Context, before time.Time) (int, error)

	mu       sync.Mutex
	setCalls []domain.QuotaRecord
}

func (m *storeMock) Get(ctx context.Context, scopeKey string) (*domain.QuotaRecord, error) {
	if m.GetFunc == nil {
		panic("storeMock.GetFunc: method is nil but Store.Get was just called")
	}
	return m.GetFunc(ctx, scopeKey)
}

func (m *storeMock) Set(ctx context.Context, rec domain.QuotaRecord) error {
	m.mu.Lock()
	m.setCalls = append(m.setCalls, rec)
	m.mu.Unlock()
	if m.SetFunc == nil {
		panic("storeMock.SetFunc: method is nil but Store.Set was just called")
	}
	return m.SetFunc(ctx, rec)
}

func (m *storeMock) DeleteStale(ctx context.Context, before time.Time) (int, error) {
	if m.DeleteStaleFunc == nil {
		panic("storeMock.DeleteStaleFunc: method is nil but Store.DeleteStale was just called")
	}
	return m.DeleteStaleFunc(ctx, before)
}

// SetCalls returns the records passed to Set.
func (m *storeMock) SetCalls() []domain.QuotaRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QuotaRecord(nil), m.setCalls...)
}
