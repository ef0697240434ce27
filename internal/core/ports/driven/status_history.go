package driven

import (
	"context"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// StatusHistoryStore records connector health checks over time.
// It is optional: the registry keeps a live status cache regardless.
type StatusHistoryStore interface {
	// Record appends a health check result.
	Record(ctx context.Context, result domain.HealthCheckResult) error

	// List returns the most recent results for a connector, newest first.
	// A limit of zero or less returns every result.
	List(ctx context.Context, connectorID string, limit int) ([]domain.HealthCheckResult, error)

	// Close releases resources.
	Close() error
}
