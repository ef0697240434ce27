package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// Connector adapts one external archive to the search contract.
// Each source (metmuseum, europeana, wikidata, etc.) implements this
// interface, usually by embedding base.Connector and overriding Search
// plus whichever optional capabilities the source offers.
type Connector interface {
	// Info returns the connector's static metadata.
	Info() domain.SourceInfo

	// Search runs a free-text query.
	// Upstream and parse failures are logged and reported as an empty
	// result with a nil error. Network and timeout failures are returned.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error)

	// GetItem fetches a single item by its connector-local ID.
	// Returns nil, nil when the item does not exist.
	GetItem(ctx context.Context, id string) (*domain.ContentItem, error)

	// GetByLocation returns content near a point.
	GetByLocation(ctx context.Context, q domain.LocationQuery) ([]domain.ContentItem, error)

	// GetByPeriod returns content dated within a year range.
	GetByPeriod(ctx context.Context, q domain.PeriodQuery) ([]domain.ContentItem, error)

	// GetByEmpire returns content about an empire or one of its periods.
	GetByEmpire(ctx context.Context, q domain.EmpireQuery) ([]domain.ContentItem, error)

	// GetBySite returns content about an archaeological site.
	GetBySite(ctx context.Context, q domain.SiteQuery) ([]domain.ContentItem, error)

	// BatchFetch streams up to limit items for bulk harvesting.
	// The boolean is false when the connector does not support harvesting.
	BatchFetch(ctx context.Context, limit int) (iter.Seq2[domain.ContentItem, error], bool)

	// Ping reports whether the upstream base URL answers.
	Ping(ctx context.Context) bool

	// HealthCheck probes the upstream and reports its status.
	// Unavailable connectors answer without touching the network.
	HealthCheck(ctx context.Context) domain.HealthCheckResult
}

// Factory builds a connector instance. apiKey is empty when none is configured.
type Factory func(apiKey string) Connector

// Registration pairs a connector's metadata with its factory so the
// registry can describe connectors before instantiating them.
type Registration struct {
	Info domain.SourceInfo
	New  Factory
}
