package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

func TestSearchAll_AggregatesAndRanks(t *testing.T) {
	a := newFake("a").withItems(90, 40)
	b := newFake("b")
	b.err = errors.New("upstream exploded")
	c := newFake("c").withItems(70)
	r := newTestRegistry(t, []*fakeConnector{a, b, c})

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "stonehenge"})
	require.NoError(t, err)

	assert.Equal(t, []int{90, 70, 40}, scores(res.Items))
	assert.Equal(t, []string{"a", "c"}, res.SourcesSearched)
	assert.Equal(t, []string{"b"}, res.SourcesFailed)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "stonehenge", res.Query)
	assert.NotEmpty(t, res.SearchID)
	assert.False(t, res.Cached)

	if diff := cmp.Diff(map[string]int{"a": 2, "b": 0, "c": 1}, res.ItemsBySource); diff != "" {
		t.Errorf("ItemsBySource mismatch (-want +got):\n%s", diff)
	}

	require.Contains(t, res.SourceErrors, "b")
	assert.Equal(t, domain.ErrorKindInternal, res.SourceErrors["b"].Kind)
	assert.Contains(t, res.SourceErrors["b"].Message, "upstream exploded")
	assert.True(t, res.Failed("b"))
	assert.False(t, res.Failed("a"))
}

func TestSearchAll_EmptyResultIsValid(t *testing.T) {
	r := newTestRegistry(t, []*fakeConnector{newFake("a"), newFake("b")})

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "nothing"})
	require.NoError(t, err)

	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, []string{"a", "b"}, res.SourcesSearched)
	assert.Empty(t, res.SourcesFailed)
	assert.Equal(t, map[string]int{"a": 0, "b": 0}, res.ItemsBySource)
}

func TestSearchAll_PanicIsIsolated(t *testing.T) {
	a := newFake("a").withItems(50)
	b := newFake("b")
	b.panicMsg = "nil map write"
	r := newTestRegistry(t, []*fakeConnector{a, b})

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "petra"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, res.SourcesSearched)
	assert.Equal(t, []string{"b"}, res.SourcesFailed)
	assert.Equal(t, domain.ErrorKindInternal, res.SourceErrors["b"].Kind)
	assert.Contains(t, res.SourceErrors["b"].Message, "panicked")
	assert.Len(t, res.Items, 1)
}

func TestSearchAll_DeadlineMarksSlowConnectorsFailed(t *testing.T) {
	fast := newFake("fast").withItems(60)
	slow := newFake("slow").withItems(99)
	slow.delay = 5 * time.Second
	r := newTestRegistry(t, []*fakeConnector{fast, slow})

	start := time.Now()
	res, err := r.SearchAll(context.Background(), domain.SearchRequest{
		Dispatch: domain.Dispatch{Timeout: 100 * time.Millisecond},
		Query:    "giza",
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []string{"fast"}, res.SourcesSearched)
	assert.Equal(t, []string{"slow"}, res.SourcesFailed)
	assert.Equal(t, domain.ErrorKindTimeout, res.SourceErrors["slow"].Kind)
	assert.Equal(t, []int{60}, scores(res.Items))
	assert.GreaterOrEqual(t, res.SearchTimeMS, int64(100))
}

func TestCollect_KeepsOutcomesDeliveredByDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := make(chan outcome, 3)
	results <- outcome{idx: 2, items: []domain.ContentItem{{ID: "c:1"}}}
	results <- outcome{idx: 0}

	for range 20 {
		done := collect(ctx, results, 3)
		require.NotNil(t, done[0])
		assert.Nil(t, done[1])
		require.NotNil(t, done[2])
		assert.Len(t, done[2].items, 1)

		results <- *done[2]
		results <- *done[0]
	}
}

func TestSearchAll_SearchedAndFailedPartitionDispatch(t *testing.T) {
	fakes := []*fakeConnector{
		newFake("a").withItems(10),
		newFake("b"),
		newFake("c").withItems(20, 30),
		newFake("d"),
	}
	fakes[1].err = context.DeadlineExceeded
	fakes[3].panicMsg = "boom"
	r := newTestRegistry(t, fakes)

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "knossos"})
	require.NoError(t, err)

	all := append(append([]string{}, res.SourcesSearched...), res.SourcesFailed...)
	sort.Strings(all)
	assert.Equal(t, []string{"a", "b", "c", "d"}, all)
	assert.Len(t, res.ItemsBySource, 4)
	assert.Len(t, res.SourceErrors, len(res.SourcesFailed))
	assert.Equal(t, res.TotalCount, len(res.Items))
}

func TestSearchAll_TiesKeepSourceOrder(t *testing.T) {
	a := newFake("a").withItems(50, 50)
	c := newFake("c").withItems(50)
	z := newFake("z").withItems(80)
	r := newTestRegistry(t, []*fakeConnector{a, c, z})

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "roman fort"})
	require.NoError(t, err)

	assert.Equal(t, []string{"z:a", "a:a", "a:b", "c:a"}, itemIDs(res.Items))
}

func TestSearchAll_ClampsScores(t *testing.T) {
	a := newFake("a").withItems(150, -5)
	r := newTestRegistry(t, []*fakeConnector{a})

	res, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 0}, scores(res.Items))
}

func TestSearchAll_EmptyQuery(t *testing.T) {
	r := newTestRegistry(t, []*fakeConnector{newFake("a")})

	_, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchAll_UnknownExplicitSource(t *testing.T) {
	r := newTestRegistry(t, []*fakeConnector{newFake("a")})

	_, err := r.SearchAll(context.Background(), domain.SearchRequest{
		Dispatch: domain.Dispatch{Sources: []string{"a", "nope"}},
		Query:    "x",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownConnector)
}

func TestSearchAll_CandidateResolution(t *testing.T) {
	museum := newFake("museum", domain.ContentTypeArtifact, domain.ContentTypeCoin).withItems(10)
	maps := newFake("maps", domain.ContentTypeMap).withItems(10)
	broken := newFake("broken", domain.ContentTypeArtifact)
	broken.info.Available = false
	broken.info.UnavailableReason = "blocked"
	broken.err = domain.ErrConnectorUnavailable
	r := newTestRegistry(t, []*fakeConnector{museum, maps, broken})
	ctx := context.Background()

	t.Run("default excludes unavailable", func(t *testing.T) {
		res, err := r.SearchAll(ctx, domain.SearchRequest{Query: "x"})
		require.NoError(t, err)
		assert.Equal(t, []string{"museum", "maps"}, res.SourcesSearched)
		assert.NotContains(t, res.ItemsBySource, "broken")
	})

	t.Run("content types select intersecting connectors", func(t *testing.T) {
		res, err := r.SearchAll(ctx, domain.SearchRequest{
			Dispatch: domain.Dispatch{ContentTypes: []domain.ContentType{domain.ContentTypeMap}},
			Query:    "x",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"maps"}, res.SourcesSearched)
		assert.Equal(t, domain.ContentTypeMap, maps.lastOpts.ContentType)
	})

	t.Run("explicit ids reach unavailable connectors", func(t *testing.T) {
		res, err := r.SearchAll(ctx, domain.SearchRequest{
			Dispatch: domain.Dispatch{Sources: []string{"broken", "museum", "broken"}},
			Query:    "x",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"museum"}, res.SourcesSearched)
		assert.Equal(t, []string{"broken"}, res.SourcesFailed)
		assert.Equal(t, domain.ErrorKindUnavailable, res.SourceErrors["broken"].Kind)
	})

	t.Run("no intersecting connectors", func(t *testing.T) {
		res, err := r.SearchAll(ctx, domain.SearchRequest{
			Dispatch: domain.Dispatch{ContentTypes: []domain.ContentType{domain.ContentTypeAudio}},
			Query:    "x",
		})
		require.NoError(t, err)
		assert.Empty(t, res.SourcesSearched)
		assert.Empty(t, res.Items)
	})
}

func TestSearchAll_PassesLimitsDown(t *testing.T) {
	a := newFake("a")
	r := newTestRegistry(t, []*fakeConnector{a}, WithSearchSettings(domain.SearchSettings{TimeoutSeconds: 5, LimitPerSource: 7}))

	_, err := r.SearchAll(context.Background(), domain.SearchRequest{Query: "x", Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, 7, a.lastOpts.Limit)
	assert.Equal(t, 0, a.lastOpts.Offset)

	_, err = r.SearchAll(context.Background(), domain.SearchRequest{Query: "x", LimitPerSource: 3, Offset: 6})
	require.NoError(t, err)
	assert.Equal(t, 3, a.lastOpts.Limit)
	assert.Equal(t, 6, a.lastOpts.Offset)
}

func TestGetByLocationAll(t *testing.T) {
	a := newFake("a").withItems(0)
	r := newTestRegistry(t, []*fakeConnector{a})
	ctx := context.Background()

	res, err := r.GetByLocationAll(ctx, domain.LocationRequest{Lat: 51.1789, Lon: -1.8262})
	require.NoError(t, err)
	assert.Equal(t, "51.1789,-1.8262", res.Query)
	assert.Equal(t, DefaultRadiusKM, a.lastLoc.RadiusKM)
	assert.Len(t, res.Items, 1)

	_, err = r.GetByLocationAll(ctx, domain.LocationRequest{Lat: 91, Lon: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.GetByLocationAll(ctx, domain.LocationRequest{Lat: 0, Lon: -181})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByPeriodAll(t *testing.T) {
	r := newTestRegistry(t, []*fakeConnector{newFake("a").withItems(30)})
	ctx := context.Background()

	res, err := r.GetByPeriodAll(ctx, domain.PeriodRequest{StartYear: -753, EndYear: 476, Culture: "Roman"})
	require.NoError(t, err)
	assert.Equal(t, "-753..476 Roman", res.Query)

	_, err = r.GetByPeriodAll(ctx, domain.PeriodRequest{StartYear: 100, EndYear: -100})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetForSiteAndEmpire(t *testing.T) {
	r := newTestRegistry(t, []*fakeConnector{newFake("a").withItems(30)})
	ctx := context.Background()

	res, err := r.GetForSite(ctx, domain.SiteRequest{SiteName: " Machu Picchu "})
	require.NoError(t, err)
	assert.Equal(t, "Machu Picchu", res.Query)

	_, err = r.GetForSite(ctx, domain.SiteRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err = r.GetForEmpire(ctx, domain.EmpireRequest{EmpireName: "Roman Empire", PeriodName: "Flavian"})
	require.NoError(t, err)
	assert.Equal(t, "Roman Empire / Flavian", res.Query)

	_, err = r.GetForEmpire(ctx, domain.EmpireRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetItem(t *testing.T) {
	a := newFake("a").withItems(10, 20)
	r := newTestRegistry(t, []*fakeConnector{a})
	ctx := context.Background()

	item, err := r.GetItem(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", item.ID)

	item, err = r.GetItem(ctx, "a", "a:a")
	require.NoError(t, err)
	assert.Equal(t, "a:a", item.ID)

	_, err = r.GetItem(ctx, "a", "zz")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.GetItem(ctx, "missing", "zz")
	assert.ErrorIs(t, err, domain.ErrUnknownConnector)

	_, err = r.GetItem(ctx, "a", "a:")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHarvest(t *testing.T) {
	bulk := newFake("bulk").withItems(1, 2, 3)
	bulk.batch = true
	plain := newFake("plain").withItems(1)
	r := newTestRegistry(t, []*fakeConnector{bulk, plain})
	ctx := context.Background()

	seq, err := r.Harvest(ctx, "bulk", 2)
	require.NoError(t, err)
	var got []string
	for item, err := range seq {
		require.NoError(t, err)
		got = append(got, item.ID)
	}
	assert.Equal(t, []string{"bulk:a", "bulk:b"}, got)

	_, err = r.Harvest(ctx, "plain", 0)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
