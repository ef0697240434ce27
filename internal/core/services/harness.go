package services

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/logger"
)

// Harness limits.
const (
	OpTest = "test"

	// MaxSamples is the number of top-scored items kept per canned query.
	MaxSamples = 3

	testLimit = 10
)

// RunTestQueries runs the canned queries against every available connector
// whose cached status is usable. Connectors run in parallel up to the
// configured concurrency; queries against one connector run in sequence
// with a pause between them. Results are stored in the status cache and
// returned by connector ID.
func (r *Registry) RunTestQueries(ctx context.Context) map[string][]domain.QueryTestResult {
	logger.Section("Test Queries")

	var targets []string
	for _, status := range r.CachedStatus() {
		if status.Available && status.Status.Usable() {
			targets = append(targets, status.ConnectorID)
		}
	}

	results := make([][]domain.QueryTestResult, len(targets))

	var g errgroup.Group
	g.SetLimit(max(1, r.health.TestConcurrency))
	for i, id := range targets {
		g.Go(func() error {
			conn, err := r.Connector(id)
			if err != nil {
				logger.Warn("harness: %s: %v", id, err)
				return nil
			}
			results[i] = r.testConnector(ctx, id, conn)
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[string][]domain.QueryTestResult, len(targets))
	r.mu.Lock()
	for i, id := range targets {
		byID[id] = results[i]
		status, ok := r.status[id]
		if ok {
			status.TestResults = results[i]
			r.status[id] = status
		}
	}
	r.mu.Unlock()
	return byID
}

func (r *Registry) testConnector(ctx context.Context, id string, conn driven.Connector) []domain.QueryTestResult {
	queries := domain.CannedTestQueries()
	delay := time.Duration(r.health.TestDelayMS) * time.Millisecond
	out := make([]domain.QueryTestResult, 0, len(queries))

	for i, q := range queries {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(delay):
			}
		}
		out = append(out, r.testQuery(ctx, id, conn, q))
	}
	return out
}

func (r *Registry) testQuery(ctx context.Context, id string, conn driven.Connector, q domain.TestQuery) domain.QueryTestResult {
	timeout := r.search.Timeout()
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	o := r.call(qctx, OpTest, 0, id, conn, func(ctx context.Context, c driven.Connector) ([]domain.ContentItem, error) {
		return c.Search(ctx, q.Query, domain.SearchOptions{Limit: testLimit})
	})

	result := domain.QueryTestResult{
		QueryID:        q.ID,
		Query:          q.Query,
		ResultCount:    len(o.items),
		ResponseTimeMS: time.Since(start).Milliseconds(),
		TestedAt:       time.Now().UTC(),
	}
	if o.err != nil {
		result.Error = o.err.Error()
		logger.Debug("harness: %s %q failed: %v", id, q.Query, o.err)
		return result
	}

	sort.SliceStable(o.items, func(i, j int) bool {
		return o.items[i].RelevanceScore > o.items[j].RelevanceScore
	})
	for i := range o.items[:min(MaxSamples, len(o.items))] {
		result.Samples = append(result.Samples, domain.NewSampleItem(&o.items[i]))
	}
	return result
}
