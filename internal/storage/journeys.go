package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// JourneyStore is the touchpoint source consumed by the engine. The
// enclosing automation feeds touchpoints in from platform webhooks; the
// engine only ever reads materialized, time-ascending histories.
type JourneyStore interface {
	// SaveTouchpoint records one touchpoint for a user/session.
	SaveTouchpoint(ctx context.Context, userID, sessionID string, tp models.Touchpoint) error

	// GetTouchpoints returns the user's touchpoints sorted ascending by
	// timestamp. An unknown user yields an empty slice, not an error.
	GetTouchpoints(ctx context.Context, userID string) ([]models.Touchpoint, error)

	// SessionID returns the most recent session recorded for the user.
	SessionID(ctx context.Context, userID string) (string, error)
}

// InMemoryJourneyStore keeps touchpoints in memory. Not durable; intended
// for development and testing, matching the service's degraded mode when
// PostgreSQL is absent.
type InMemoryJourneyStore struct {
	mu          sync.RWMutex
	touchpoints map[string][]models.Touchpoint
	sessions    map[string]string
}

// NewInMemoryJourneyStore constructs an empty store.
func NewInMemoryJourneyStore() *InMemoryJourneyStore {
	return &InMemoryJourneyStore{
		touchpoints: make(map[string][]models.Touchpoint),
		sessions:    make(map[string]string),
	}
}

// SaveTouchpoint appends a copy of the touchpoint for the user.
func (s *InMemoryJourneyStore) SaveTouchpoint(ctx context.Context, userID, sessionID string, tp models.Touchpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchpoints[userID] = append(s.touchpoints[userID], tp)
	if sessionID != "" {
		s.sessions[userID] = sessionID
	}
	return nil
}

// GetTouchpoints returns the user's touchpoints, time-ascending with
// positions assigned.
func (s *InMemoryJourneyStore) GetTouchpoints(ctx context.Context, userID string) ([]models.Touchpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.touchpoints[userID]
	out := make([]models.Touchpoint, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}

// SessionID returns the last session recorded for the user.
func (s *InMemoryJourneyStore) SessionID(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID], nil
}
