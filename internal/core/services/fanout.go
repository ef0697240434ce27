package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/logger"
)

// Fan-out operation names, used for logging and metrics labels.
const (
	OpSearch   = "search"
	OpLocation = "location"
	OpPeriod   = "period"
	OpSite     = "site"
	OpEmpire   = "empire"
	OpItem     = "item"
)

// Fan-out defaults used when neither the request nor settings give a value.
const (
	DefaultSearchTimeout  = 30 * time.Second
	DefaultLimitPerSource = 20
	DefaultRadiusKM       = 10.0
)

// task runs one operation against one connector.
type task func(ctx context.Context, conn driven.Connector) ([]domain.ContentItem, error)

// outcome is what one connector task produced.
type outcome struct {
	idx   int
	items []domain.ContentItem
	err   error
}

// SearchAll runs a text search across connectors.
func (r *Registry) SearchAll(ctx context.Context, req domain.SearchRequest) (*domain.ContentSearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	opts := domain.SearchOptions{
		ContentType: singleType(req.ContentTypes),
		Limit:       r.limit(req.LimitPerSource),
		Offset:      max(0, req.Offset),
		Extra:       req.Extra,
	}
	return r.fanout(ctx, OpSearch, query, req.Dispatch, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.Search(ctx, query, opts)
	})
}

// GetByLocationAll finds content near a point across connectors.
func (r *Registry) GetByLocationAll(ctx context.Context, req domain.LocationRequest) (*domain.ContentSearchResult, error) {
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		return nil, fmt.Errorf("%w: coordinates %.4f,%.4f out of range", domain.ErrInvalidInput, req.Lat, req.Lon)
	}
	if req.RadiusKM <= 0 {
		req.RadiusKM = DefaultRadiusKM
	}

	q := domain.LocationQuery{
		Lat:         req.Lat,
		Lon:         req.Lon,
		RadiusKM:    req.RadiusKM,
		ContentType: singleType(req.ContentTypes),
		Limit:       r.limit(req.LimitPerSource),
	}
	label := fmt.Sprintf("%.4f,%.4f", req.Lat, req.Lon)
	return r.fanout(ctx, OpLocation, label, req.Dispatch, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.GetByLocation(ctx, q)
	})
}

// GetByPeriodAll finds content dated within a range across connectors.
func (r *Registry) GetByPeriodAll(ctx context.Context, req domain.PeriodRequest) (*domain.ContentSearchResult, error) {
	if req.StartYear > req.EndYear {
		return nil, fmt.Errorf("%w: start year %d is after end year %d", domain.ErrInvalidInput, req.StartYear, req.EndYear)
	}

	q := domain.PeriodQuery{
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
		Culture:   req.Culture,
		Limit:     r.limit(req.LimitPerSource),
	}
	label := fmt.Sprintf("%d..%d", req.StartYear, req.EndYear)
	if req.Culture != "" {
		label += " " + req.Culture
	}
	return r.fanout(ctx, OpPeriod, label, req.Dispatch, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.GetByPeriod(ctx, q)
	})
}

// GetForSite finds content about an archaeological site across connectors.
func (r *Registry) GetForSite(ctx context.Context, req domain.SiteRequest) (*domain.ContentSearchResult, error) {
	name := strings.TrimSpace(req.SiteName)
	if name == "" {
		return nil, fmt.Errorf("%w: site name is empty", domain.ErrInvalidInput)
	}

	q := domain.SiteQuery{
		SiteName:    name,
		Location:    req.Location,
		Lat:         req.Lat,
		Lon:         req.Lon,
		ContentType: singleType(req.ContentTypes),
		Limit:       r.limit(req.LimitPerSource),
	}
	return r.fanout(ctx, OpSite, name, req.Dispatch, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.GetBySite(ctx, q)
	})
}

// GetForEmpire finds content about an empire across connectors.
func (r *Registry) GetForEmpire(ctx context.Context, req domain.EmpireRequest) (*domain.ContentSearchResult, error) {
	name := strings.TrimSpace(req.EmpireName)
	if name == "" {
		return nil, fmt.Errorf("%w: empire name is empty", domain.ErrInvalidInput)
	}

	q := domain.EmpireQuery{
		EmpireName:  name,
		PeriodName:  req.PeriodName,
		ContentType: singleType(req.ContentTypes),
		Limit:       r.limit(req.LimitPerSource),
	}
	label := name
	if req.PeriodName != "" {
		label += " / " + req.PeriodName
	}
	return r.fanout(ctx, OpEmpire, label, req.Dispatch, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.GetByEmpire(ctx, q)
	})
}

// GetItem fetches one item from one connector.
func (r *Registry) GetItem(ctx context.Context, connectorID, itemID string) (*domain.ContentItem, error) {
	conn, err := r.Connector(connectorID)
	if err != nil {
		return nil, err
	}

	// Accept both the namespaced form "met:123" and the bare local ID.
	itemID = strings.TrimPrefix(itemID, connectorID+":")
	if itemID == "" {
		return nil, fmt.Errorf("%w: item id is empty", domain.ErrInvalidInput)
	}

	start := time.Now()
	item, err := conn.GetItem(ctx, itemID)
	count := 0
	if item != nil {
		count = 1
	}
	r.metrics.ObserveCall(connectorID, OpItem, time.Since(start), count, err)

	if err != nil {
		return nil, fmt.Errorf("get %s from %s: %w", itemID, connectorID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s in %s: %w", itemID, connectorID, domain.ErrNotFound)
	}
	return item, nil
}

// Harvest streams items from a connector that supports bulk fetching.
func (r *Registry) Harvest(ctx context.Context, connectorID string, limit int) (iter.Seq2[domain.ContentItem, error], error) {
	conn, err := r.Connector(connectorID)
	if err != nil {
		return nil, err
	}
	seq, ok := conn.BatchFetch(ctx, limit)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support bulk fetching", domain.ErrNotImplemented, connectorID)
	}
	return seq, nil
}

// fanout dispatches run to every resolved connector concurrently, waits
// until all finish or the deadline passes, and aggregates what came back.
// A failing connector never fails the whole call.
func (r *Registry) fanout(ctx context.Context, op, query string, d domain.Dispatch, run task) (*domain.ContentSearchResult, error) {
	start := time.Now()

	ids, err := r.resolve(d)
	if err != nil {
		return nil, err
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = r.search.Timeout()
	}
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("fanout %s %q: %d connectors, timeout %s", op, query, len(ids), timeout)

	results := make(chan outcome, len(ids))
	for i, id := range ids {
		conn, err := r.Connector(id)
		if err != nil {
			results <- outcome{idx: i, err: err}
			continue
		}
		go func() {
			results <- r.call(ctx, op, i, id, conn, run)
		}()
	}

	done := collect(ctx, results, len(ids))

	result := &domain.ContentSearchResult{
		SearchID:        uuid.NewString(),
		Query:           query,
		Items:           []domain.ContentItem{},
		SourcesSearched: []string{},
		SourcesFailed:   []string{},
		SourceErrors:    make(map[string]domain.SourceError),
		ItemsBySource:   make(map[string]int, len(ids)),
	}

	for i, id := range ids {
		o := done[i]
		if o == nil {
			o = &outcome{idx: i, err: deadlineError(ctx, timeout)}
		}
		if o.err != nil {
			result.SourcesFailed = append(result.SourcesFailed, id)
			result.SourceErrors[id] = domain.NewSourceError(o.err)
			result.ItemsBySource[id] = 0
			logger.Warnw("connector failed", "connector", id, "op", op, "error", o.err.Error())
			continue
		}

		for j := range o.items {
			o.items[j].ClampScore()
		}
		result.SourcesSearched = append(result.SourcesSearched, id)
		result.ItemsBySource[id] = len(o.items)
		result.Items = append(result.Items, o.items...)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].RelevanceScore > result.Items[j].RelevanceScore
	})
	result.TotalCount = len(result.Items)

	elapsed := time.Since(start)
	result.SearchTimeMS = elapsed.Milliseconds()
	r.metrics.ObserveFanout(op, elapsed)

	logger.Debug("fanout %s %q: %d items, %d searched, %d failed in %s",
		op, query, result.TotalCount, len(result.SourcesSearched), len(result.SourcesFailed), elapsed)
	return result, nil
}

// collect gathers n outcomes or stops at ctx's deadline. Outcomes already
// delivered when the deadline fires are kept.
func collect(ctx context.Context, results <-chan outcome, n int) []*outcome {
	done := make([]*outcome, n)
	for pending := n; pending > 0; pending-- {
		select {
		case o := <-results:
			done[o.idx] = &o
		case <-ctx.Done():
			for {
				select {
				case o := <-results:
					done[o.idx] = &o
				default:
					return done
				}
			}
		}
	}
	return done
}

// call runs one task, converting a panic into an error.
func (r *Registry) call(ctx context.Context, op string, idx int, id string, conn driven.Connector, run task) (o outcome) {
	o.idx = idx
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			o.items, o.err = nil, fmt.Errorf("connector %s panicked: %v", id, p)
		}
		r.metrics.ObserveCall(id, op, time.Since(start), len(o.items), o.err)
	}()

	o.items, o.err = run(ctx, conn)
	return o
}

// deadlineError explains why a connector never reported back.
func deadlineError(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
	}
	return ctx.Err()
}

// singleType returns the type when exactly one is requested, so it can be
// passed down as a connector-side filter.
func singleType(types []domain.ContentType) domain.ContentType {
	if len(types) == 1 {
		return types[0]
	}
	return ""
}

func (r *Registry) limit(n int) int {
	if n > 0 {
		return n
	}
	if r.search.LimitPerSource > 0 {
		return r.search.LimitPerSource
	}
	return DefaultLimitPerSource
}
