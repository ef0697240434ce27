package services

import (
	"context"
	"iter"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
)

// fakeConnector is a scriptable driven.Connector.
type fakeConnector struct {
	info domain.SourceInfo

	items    []domain.ContentItem
	err      error
	delay    time.Duration
	panicMsg string
	batch    bool

	health      domain.HealthCheckResult
	healthDelay time.Duration

	// inflight, when set, is shared between fakes to observe concurrency.
	inflight *gauge

	calls       atomic.Int32
	healthCalls atomic.Int32
	closed      atomic.Bool

	mu       sync.Mutex
	lastOpts domain.SearchOptions
	lastLoc  domain.LocationQuery
}

var _ driven.Connector = (*fakeConnector)(nil)

// gauge tracks the peak number of concurrent callers.
type gauge struct {
	cur  atomic.Int32
	peak atomic.Int32
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.cur.Add(-1) }

func newFake(id string, types ...domain.ContentType) *fakeConnector {
	if len(types) == 0 {
		types = []domain.ContentType{domain.ContentTypeArtifact}
	}
	return &fakeConnector{
		info: domain.SourceInfo{
			ID:           id,
			Name:         "Fake " + id,
			ContentTypes: types,
			Protocol:     domain.ProtocolREST,
			Available:    true,
		},
		health: domain.HealthCheckResult{Status: domain.HealthOK, ResponseTimeMS: 10},
	}
}

func (f *fakeConnector) withItems(scores ...int) *fakeConnector {
	for i, s := range scores {
		f.items = append(f.items, domain.ContentItem{
			ID:             f.info.ID + ":" + string(rune('a'+i)),
			Source:         f.info.ID,
			ContentType:    f.info.ContentTypes[0],
			Title:          "Item " + string(rune('a'+i)),
			URL:            "https://example.org/" + f.info.ID,
			RelevanceScore: s,
		})
	}
	return f
}

func (f *fakeConnector) registration() driven.Registration {
	return driven.Registration{
		Info: f.info,
		New:  func(string) driven.Connector { return f },
	}
}

func (f *fakeConnector) run(ctx context.Context) ([]domain.ContentItem, error) {
	f.calls.Add(1)
	if f.inflight != nil {
		f.inflight.enter()
		defer f.inflight.leave()
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.items), nil
}

func (f *fakeConnector) Info() domain.SourceInfo { return f.info }

func (f *fakeConnector) Search(ctx context.Context, _ string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	f.mu.Lock()
	f.lastOpts = opts
	f.mu.Unlock()
	return f.run(ctx)
}

func (f *fakeConnector) GetItem(_ context.Context, id string) (*domain.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == f.info.ID+":"+id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeConnector) GetByLocation(ctx context.Context, q domain.LocationQuery) ([]domain.ContentItem, error) {
	f.mu.Lock()
	f.lastLoc = q
	f.mu.Unlock()
	return f.run(ctx)
}

func (f *fakeConnector) GetByPeriod(ctx context.Context, _ domain.PeriodQuery) ([]domain.ContentItem, error) {
	return f.run(ctx)
}

func (f *fakeConnector) GetByEmpire(ctx context.Context, _ domain.EmpireQuery) ([]domain.ContentItem, error) {
	return f.run(ctx)
}

func (f *fakeConnector) GetBySite(ctx context.Context, _ domain.SiteQuery) ([]domain.ContentItem, error) {
	return f.run(ctx)
}

func (f *fakeConnector) BatchFetch(_ context.Context, limit int) (iter.Seq2[domain.ContentItem, error], bool) {
	if !f.batch {
		return nil, false
	}
	return func(yield func(domain.ContentItem, error) bool) {
		for i, item := range f.items {
			if limit > 0 && i >= limit {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}, true
}

func (f *fakeConnector) Ping(context.Context) bool { return true }

func (f *fakeConnector) HealthCheck(ctx context.Context) domain.HealthCheckResult {
	f.healthCalls.Add(1)
	if f.healthDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.healthDelay):
		}
	}
	return f.health
}

func (f *fakeConnector) Close() error {
	f.closed.Store(true)
	return nil
}

// newTestRegistry registers fakes in order.
func newTestRegistry(t *testing.T, fakes []*fakeConnector, opts ...RegistryOption) *Registry {
	t.Helper()
	r := NewRegistry(opts...)
	for _, f := range fakes {
		require.NoError(t, r.Register(f.registration()))
	}
	return r
}

func itemIDs(items []domain.ContentItem) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func scores(items []domain.ContentItem) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = items[i].RelevanceScore
	}
	return out
}
