package mediator

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type completerMock struct {
	CompleteFunc func(ctx context.Context, req domain.CompletionRequest) (string, error)

	mu    sync.Mutex
	calls []domain.CompletionRequest
}

func (m *completerMock) Name() string { return "mock" }

func (m *completerMock) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.CompleteFunc == nil {
		panic("completerMock.CompleteFunc: method is nil but completer.Complete was just called")
	}
	return m.CompleteFunc(ctx, req)
}

func (m *completerMock) CompleteCalls() []domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CompletionRequest(nil), m.calls...)
}

type searcherMock struct {
	SearchFunc func(ctx context.Context, query string) ([]domain.SearchResult, error)

	mu    sync.Mutex
	calls []string
}

func (m *searcherMock) Enabled() bool { return true }

func (m *searcherMock) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	if m.SearchFunc == nil {
		panic("searcherMock.SearchFunc: method is nil but searcher.Search was just called")
	}
	return m.SearchFunc(ctx, query)
}

func (m *searcherMock) SearchCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type linkFetcherMock struct {
	FetchFunc func(ctx context.Context, rawURL string) (string, error)
}

func (m *linkFetcherMock) Fetch(ctx context.Context, rawURL string) (string, error) {
	if m.FetchFunc == nil {
		panic("linkFetcherMock.FetchFunc: method is nil but linkFetcher.Fetch was just called")
	}
	return m.FetchFunc(ctx, rawURL)
}

type videoLookupMock struct {
	LookupFunc func(question string) []domain.VideoRef
}

func (m *videoLookupMock) Lookup(question string) []domain.VideoRef {
	if m.LookupFunc == nil {
		panic("videoLookupMock.LookupFunc: method is nil but videoLookup.Lookup was just called")
	}
	return m.LookupFunc(question)
}

// brokenStore fails every operation.
type brokenStore struct{ err error }

func (s brokenStore) Get(context.Context, string) (*domain.QuotaRecord, error) { return nil, s.err }
func (s brokenStore) Set(context.Context, domain.QuotaRecord) error           { return s.err }
func (s brokenStore) DeleteStale(context.Context, time.Time) (int, error)    { return 0, s.err }

// ctxCheckingStore fails writes once the context is done, like a database
// driver would.
type ctxCheckingStore struct{ *quota.MemoryStore }

func (s ctxCheckingStore) Set(ctx context.Context, rec domain.QuotaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, rec)
}
