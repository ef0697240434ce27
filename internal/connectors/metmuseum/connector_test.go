package metmuseum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var objects = map[string]object{
	"1": {ObjectID: 1, Title: "Marble head of Augustus", ObjectName: "Head", Culture: "Roman", Country: "Italy",
		ObjectDate: "ca. 14 CE", ObjectBeginDate: 14, ObjectEndDate: 37, IsPublicDomain: true,
		ObjectURL: "https://www.metmuseum.org/art/collection/search/1", PrimaryImageSmall: "https://images/1.jpg"},
	"2": {ObjectID: 2, Title: "Denarius of Augustus", ObjectName: "Coin", Culture: "Roman", IsPublicDomain: true},
	"3": {ObjectID: 3, Title: "Augustus", ObjectName: "Painting", Classification: "Paintings", IsPublicDomain: false},
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			if r.URL.Query().Get("q") == "broken" {
				_, _ = w.Write([]byte("{not json"))
				return
			}
			_ = json.NewEncoder(w).Encode(searchResponse{Total: 4, ObjectIDs: []int{1, 2, 3, 99}})
		case r.URL.Path == "/objects":
			_ = json.NewEncoder(w).Encode(searchResponse{Total: 3, ObjectIDs: []int{1, 2, 3}})
		case strings.HasPrefix(r.URL.Path, "/objects/"):
			obj, ok := objects[strings.TrimPrefix(r.URL.Path, "/objects/")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"message":"ObjectID not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(obj)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestConnector(server *httptest.Server) *Connector {
	client := rest.New(rest.Config{
		BaseURL: server.URL,
		Retry:   rest.RetryConfig{MaxAttempts: 1},
	})
	return New("", base.WithClient(client), base.WithPingURL(server.URL))
}

func TestSearch(t *testing.T) {
	c := newTestConnector(newServer(t))

	items, err := c.Search(context.Background(), "Augustus", domain.SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 3)

	head := items[0]
	assert.Equal(t, "metmuseum:1", head.ID)
	assert.Equal(t, ID, head.Source)
	assert.Equal(t, domain.ContentTypeArtifact, head.ContentType)
	assert.Equal(t, "Roman", head.Culture)
	require.NotNil(t, head.Year)
	assert.Equal(t, 14, *head.Year)
	assert.Equal(t, "https://images/1.jpg", head.ThumbnailURL)
	assert.Equal(t, 70, head.RelevanceScore)

	assert.Equal(t, domain.ContentTypeCoin, items[1].ContentType)
	assert.Equal(t, domain.ContentTypeArtwork, items[2].ContentType)
	assert.Equal(t, 100, items[2].RelevanceScore)
	assert.Equal(t, "https://www.metmuseum.org/art/collection/search/2", items[1].URL)
}

func TestSearch_LimitAndOffset(t *testing.T) {
	c := newTestConnector(newServer(t))

	items, err := c.Search(context.Background(), "Augustus", domain.SearchOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "metmuseum:2", items[0].ID)
}

func TestSearch_ContentTypeFilter(t *testing.T) {
	c := newTestConnector(newServer(t))

	items, err := c.Search(context.Background(), "Augustus", domain.SearchOptions{ContentType: domain.ContentTypeCoin})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ContentTypeCoin, items[0].ContentType)

	items, err = c.Search(context.Background(), "Augustus", domain.SearchOptions{ContentType: domain.ContentTypeMap})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_ParseErrorIsSwallowed(t *testing.T) {
	c := newTestConnector(newServer(t))

	items, err := c.Search(context.Background(), "broken", domain.SearchOptions{})
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_TimeoutPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	c := newTestConnector(server)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "Augustus", domain.SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindTimeout, domain.ClassifyError(err))
}

func TestGetItem(t *testing.T) {
	c := newTestConnector(newServer(t))

	item, err := c.GetItem(context.Background(), "metmuseum:2")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Denarius of Augustus", item.Title)

	missing, err := c.GetItem(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetByPeriod(t *testing.T) {
	var gotBegin, gotEnd string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			gotBegin = r.URL.Query().Get("dateBegin")
			gotEnd = r.URL.Query().Get("dateEnd")
			_ = json.NewEncoder(w).Encode(searchResponse{Total: 1, ObjectIDs: []int{1}})
			return
		}
		_ = json.NewEncoder(w).Encode(objects["1"])
	}))
	defer server.Close()

	c := newTestConnector(server)
	items, err := c.GetByPeriod(context.Background(), domain.PeriodQuery{StartYear: -27, EndYear: 14, Culture: "Roman"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "-27", gotBegin)
	assert.Equal(t, "14", gotEnd)
}

func TestBatchFetch(t *testing.T) {
	c := newTestConnector(newServer(t))

	seq, ok := c.BatchFetch(context.Background(), 2)
	require.True(t, ok)

	var ids []string
	for item, err := range seq {
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"metmuseum:1", "metmuseum:2"}, ids)
}

func TestGetBySite_UsesSearch(t *testing.T) {
	c := newTestConnector(newServer(t))

	items, err := c.GetBySite(context.Background(), domain.SiteQuery{SiteName: "Augustus", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRegistration(t *testing.T) {
	reg := Registration()
	assert.Equal(t, ID, reg.Info.ID)
	assert.True(t, reg.Info.Available)
	assert.Equal(t, ID, reg.New("").Info().ID)
}
