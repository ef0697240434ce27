// Package base provides the default implementation of driven.Connector.
//
// Concrete connectors embed *Connector, override Search and any optional
// capability their upstream offers, and inherit sensible defaults for the
// rest: empty location and period results, empire and site lookups routed
// through Search, no bulk harvesting, and a HEAD/GET reachability probe.
package base

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/logger"
	"github.com/custodia-labs/arkeo/internal/relevance"
)

const (
	// PingTimeout bounds a reachability probe.
	PingTimeout = 5 * time.Second

	// DefaultLimit is used when a query carries no limit.
	DefaultLimit = 20
)

// Option configures a Connector.
type Option func(*Connector)

// WithAPIKey sets the connector's API key.
func WithAPIKey(key string) Option {
	return func(c *Connector) {
		c.apiKey = key
	}
}

// WithClient replaces the REST client built from SourceInfo.
func WithClient(client *rest.Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

// WithRESTConfig adjusts the REST client config before it is built.
func WithRESTConfig(fn func(*rest.Config)) Option {
	return func(c *Connector) {
		c.restConfig = fn
	}
}

// WithProbeClient sets the HTTP client used by Ping.
func WithProbeClient(client *http.Client) Option {
	return func(c *Connector) {
		c.probe = client
	}
}

// WithPingURL probes url instead of SourceInfo.BaseURL.
func WithPingURL(url string) Option {
	return func(c *Connector) {
		c.pingURL = url
	}
}

// Connector is the embeddable default connector.
type Connector struct {
	info       domain.SourceInfo
	self       driven.Connector
	apiKey     string
	client     *rest.Client
	restConfig func(*rest.Config)
	probe      *http.Client
	pingURL    string
}

// New creates a default connector for info. self is the outer connector
// that embeds the result; default capabilities call back into it so that
// an overridden Search is used by GetByEmpire and GetBySite.
func New(info domain.SourceInfo, self driven.Connector, opts ...Option) *Connector {
	c := &Connector{
		info: info,
		self: self,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		cfg := rest.Config{
			BaseURL:           info.BaseURL,
			RequestsPerSecond: info.RateLimit,
		}
		if c.restConfig != nil {
			c.restConfig(&cfg)
		}
		c.client = rest.New(cfg)
	}
	if c.probe == nil {
		c.probe = &http.Client{Timeout: PingTimeout}
	}
	if c.pingURL == "" {
		c.pingURL = info.BaseURL
	}
	if c.self == nil {
		c.self = c
	}

	return c
}

// Info returns the connector's static metadata.
func (c *Connector) Info() domain.SourceInfo {
	return c.info
}

// ID returns the connector ID.
func (c *Connector) ID() string {
	return c.info.ID
}

// APIKey returns the configured API key.
func (c *Connector) APIKey() string {
	return c.apiKey
}

// Client returns the connector's REST client.
func (c *Connector) Client() *rest.Client {
	return c.client
}

// Search must be overridden. The default reports ErrNotImplemented.
func (c *Connector) Search(context.Context, string, domain.SearchOptions) ([]domain.ContentItem, error) {
	return nil, domain.ErrNotImplemented
}

// GetItem returns nil, nil.
func (c *Connector) GetItem(context.Context, string) (*domain.ContentItem, error) {
	return nil, nil
}

// GetByLocation returns no items.
func (c *Connector) GetByLocation(context.Context, domain.LocationQuery) ([]domain.ContentItem, error) {
	return nil, nil
}

// GetByPeriod returns no items.
func (c *Connector) GetByPeriod(context.Context, domain.PeriodQuery) ([]domain.ContentItem, error) {
	return nil, nil
}

// GetByEmpire searches for the period name, or for the empire name
// suffixed with "ancient" when no period is given.
func (c *Connector) GetByEmpire(ctx context.Context, q domain.EmpireQuery) ([]domain.ContentItem, error) {
	query := q.PeriodName
	if query == "" {
		query = q.EmpireName + " ancient"
	}
	return c.self.Search(ctx, query, domain.SearchOptions{ContentType: q.ContentType, Limit: q.Limit})
}

// GetBySite searches for the site name.
func (c *Connector) GetBySite(ctx context.Context, q domain.SiteQuery) ([]domain.ContentItem, error) {
	return c.self.Search(ctx, q.SiteName, domain.SearchOptions{ContentType: q.ContentType, Limit: q.Limit})
}

// BatchFetch reports that harvesting is not supported.
func (c *Connector) BatchFetch(context.Context, int) (iter.Seq2[domain.ContentItem, error], bool) {
	return nil, false
}

// Ping sends HEAD to the base URL, falling back to GET once when HEAD
// fails or is rejected. Any response below 500 counts as reachable.
func (c *Connector) Ping(ctx context.Context) bool {
	if c.pingURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()

	status, err := c.send(ctx, http.MethodHead)
	if err != nil || status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, err = c.send(ctx, http.MethodGet)
	}
	if err != nil {
		logger.Debug("%s: ping failed: %v", c.info.ID, err)
		return false
	}
	return status < http.StatusInternalServerError
}

func (c *Connector) send(ctx context.Context, method string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.pingURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", rest.DefaultUserAgent)

	resp, err := c.probe.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// HealthCheck probes the upstream via Ping. Unavailable connectors are
// reported without any network call.
func (c *Connector) HealthCheck(ctx context.Context) domain.HealthCheckResult {
	result := domain.HealthCheckResult{
		ConnectorID: c.info.ID,
		CheckedAt:   time.Now().UTC(),
	}

	if !c.info.Available {
		result.Status = domain.HealthUnavailable
		result.Message = c.info.UnavailableReason
		return result
	}

	start := time.Now()
	reachable := c.self.Ping(ctx)
	result.ResponseTimeMS = time.Since(start).Milliseconds()

	if reachable {
		result.Status = domain.HealthOK
	} else {
		result.Status = domain.HealthError
		result.Message = "upstream unreachable"
	}
	return result
}

// Close releases idle probe connections.
func (c *Connector) Close() error {
	c.probe.CloseIdleConnections()
	return nil
}

// Throttle waits for the connector's rate limiter. Requests made through
// Client are already throttled.
func (c *Connector) Throttle(ctx context.Context) error {
	return c.client.Limiter().Wait(ctx)
}

// MissingKey reports whether the connector needs an API key it does not
// have, logging a warning when so.
func (c *Connector) MissingKey() bool {
	if c.info.RequiresAuth && c.apiKey == "" {
		logger.Warn("%s: no API key configured (set api_keys.%s); returning no results", c.info.ID, c.info.ID)
		return true
	}
	return false
}

// Accepts reports whether a content-type filter admits this connector.
// An empty filter accepts everything.
func (c *Connector) Accepts(t domain.ContentType) bool {
	return t == "" || c.info.Provides(t)
}

// Recover applies the failure policy to err. Network, timeout and
// cancellation errors are returned so the registry records the source as
// failed. Everything else is logged and swallowed.
func (c *Connector) Recover(op string, err error) error {
	if err == nil {
		return nil
	}

	kind := domain.ClassifyError(err)
	if kind.Retryable() || errors.Is(err, context.Canceled) {
		return err
	}

	logger.Warnw("connector error", "connector", c.info.ID, "op", op, "kind", string(kind), "error", err.Error())
	return nil
}

// NewItem creates an item with a namespaced ID and the fetch time set.
func (c *Connector) NewItem(localID string, t domain.ContentType, title, url string) domain.ContentItem {
	return domain.ContentItem{
		ID:          c.info.ID + ":" + localID,
		Source:      c.info.ID,
		ContentType: t,
		Title:       title,
		URL:         url,
		FetchedAt:   time.Now().UTC(),
		Attribution: c.info.Attribution,
		License:     c.info.License,
	}
}

// Score rates an item title against query.
func (c *Connector) Score(title, query string, opts relevance.Options) int {
	return relevance.Score(title, query, opts)
}

// Valid drops items that break the item invariants, logging each one.
func (c *Connector) Valid(items []domain.ContentItem) []domain.ContentItem {
	kept := items[:0]
	for i := range items {
		if err := items[i].Validate(c.info.ContentTypes); err != nil {
			logger.Debug("%s: dropping item %q: %v", c.info.ID, items[i].ID, err)
			continue
		}
		items[i].ClampScore()
		kept = append(kept, items[i])
	}
	return kept
}

// Limit returns n, or DefaultLimit when n is not positive.
func Limit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}
