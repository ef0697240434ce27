package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
)

// Ensure StatusHistoryStore implements the interface.
var _ driven.StatusHistoryStore = (*StatusHistoryStore)(nil)

// DefaultHistoryCapacity is the number of checks kept per connector.
const DefaultHistoryCapacity = 100

// StatusHistoryStore keeps the most recent health checks per connector in
// memory. Older entries are dropped once capacity is reached.
type StatusHistoryStore struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string][]domain.HealthCheckResult
}

// NewStatusHistoryStore creates a store keeping capacity entries per
// connector. A non-positive capacity uses DefaultHistoryCapacity.
func NewStatusHistoryStore(capacity int) *StatusHistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &StatusHistoryStore{
		capacity: capacity,
		entries:  make(map[string][]domain.HealthCheckResult),
	}
}

// Record appends a health check result.
func (s *StatusHistoryStore) Record(_ context.Context, result domain.HealthCheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.entries[result.ConnectorID], result)
	if over := len(list) - s.capacity; over > 0 {
		list = append([]domain.HealthCheckResult(nil), list[over:]...)
	}
	s.entries[result.ConnectorID] = list
	return nil
}

// List returns up to limit results for connectorID, newest first.
func (s *StatusHistoryStore) List(_ context.Context, connectorID string, limit int) ([]domain.HealthCheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.entries[connectorID]
	n := len(list)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.HealthCheckResult, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// Close is a no-op.
func (s *StatusHistoryStore) Close() error {
	return nil
}
