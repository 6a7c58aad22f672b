package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// ResultStore accumulates attribution results so the performance
// aggregator can consume them over a date range. The engine only appends;
// callers keep ownership of the results they receive.
type ResultStore interface {
	// SaveResult records a copy of the result, stamping ComputedAt when
	// the engine left it zero.
	SaveResult(ctx context.Context, res *models.AttributionResult) error

	// ListResults returns results whose ComputedAt falls inside the
	// range.
	ListResults(ctx context.Context, rng models.DateRange) ([]*models.AttributionResult, error)
}

// InMemoryResultStore stores results in memory. Not durable; resets on
// process restart.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results []*models.AttributionResult
	now     func() time.Time
}

// NewInMemoryResultStore constructs an empty store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{now: time.Now}
}

// SaveResult appends a copy of the result.
func (s *InMemoryResultStore) SaveResult(ctx context.Context, res *models.AttributionResult) error {
	if res == nil {
		return nil
	}
	cp := *res
	if cp.ComputedAt.IsZero() {
		cp.ComputedAt = s.now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, &cp)
	return nil
}

// ListResults filters stored results by the range.
func (s *InMemoryResultStore) ListResults(ctx context.Context, rng models.DateRange) ([]*models.AttributionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AttributionResult, 0)
	for _, r := range s.results {
		if rng.Contains(r.ComputedAt) {
			out = append(out, r)
		}
	}
	return out, nil
}
