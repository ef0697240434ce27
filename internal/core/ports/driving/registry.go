package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// Registry is the federated search entry point used by the CLI and MCP
// adapters. It knows every registered connector, fans queries out to them
// concurrently and keeps a cache of their health.
type Registry interface {
	// Sources returns every registered connector's metadata in registration order.
	Sources() []domain.SourceInfo

	// Source returns one connector's metadata.
	Source(id string) (domain.SourceInfo, error)

	// ConnectorsFor returns the connectors declaring the content type.
	ConnectorsFor(t domain.ContentType) []domain.SourceInfo

	// SetAPIKeys replaces the configured API keys.
	SetAPIKeys(keys map[string]string)

	// SearchAll runs a text search across connectors.
	SearchAll(ctx context.Context, req domain.SearchRequest) (*domain.ContentSearchResult, error)

	// GetByLocationAll finds content near a point across connectors.
	GetByLocationAll(ctx context.Context, req domain.LocationRequest) (*domain.ContentSearchResult, error)

	// GetByPeriodAll finds content dated within a range across connectors.
	GetByPeriodAll(ctx context.Context, req domain.PeriodRequest) (*domain.ContentSearchResult, error)

	// GetForSite finds content about an archaeological site across connectors.
	GetForSite(ctx context.Context, req domain.SiteRequest) (*domain.ContentSearchResult, error)

	// GetForEmpire finds content about an empire across connectors.
	GetForEmpire(ctx context.Context, req domain.EmpireRequest) (*domain.ContentSearchResult, error)

	// GetItem fetches one item from one connector.
	GetItem(ctx context.Context, connectorID, itemID string) (*domain.ContentItem, error)

	// Harvest streams items from a connector that supports bulk fetching.
	Harvest(ctx context.Context, connectorID string, limit int) (iter.Seq2[domain.ContentItem, error], error)

	// CheckConnectorStatus runs a health check on one connector.
	CheckConnectorStatus(ctx context.Context, id string) (domain.ConnectorStatus, error)

	// CheckAllStatus checks every connector, optionally running the canned
	// test queries against the healthy ones.
	CheckAllStatus(ctx context.Context, runTests bool) ([]domain.ConnectorStatus, error)

	// CachedStatus returns the last known status of every connector
	// without making network calls.
	CachedStatus() []domain.ConnectorStatus

	// StatusHistory returns recent health checks for a connector, newest first.
	StatusHistory(ctx context.Context, id string, limit int) ([]domain.HealthCheckResult, error)

	// Close drops connector instances and cached status.
	Close() error
}
