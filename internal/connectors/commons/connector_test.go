package commons

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
)

const searchJSON = `{
  "batchcomplete": true,
  "continue": {"gsroffset": 2, "continue": "gsroffset||"},
  "query": {"pages": [
    {"pageid": 2, "ns": 6, "title": "File:Machu_Picchu_map.png", "index": 2,
     "imageinfo": [{"url": "https://upload/map.png", "descriptionurl": "https://commons.wikimedia.org/wiki/File:Machu_Picchu_map.png",
                    "thumburl": "https://upload/thumb/map.png", "mime": "image/png", "user": "Cartographer",
                    "extmetadata": {"LicenseShortName": {"value": "CC BY-SA 4.0"}}}]},
    {"pageid": 1, "ns": 6, "title": "File:Machu_Picchu,_Peru.jpg", "index": 1,
     "imageinfo": [{"url": "https://upload/mp.jpg", "descriptionurl": "https://commons.wikimedia.org/wiki/File:Machu_Picchu,_Peru.jpg",
                    "thumburl": "https://upload/thumb/mp.jpg", "mime": "image/jpeg", "user": "Uploader",
                    "extmetadata": {
                      "Artist": {"value": "<a href=\"//commons.wikimedia.org/wiki/User:Jane\">Jane  Doe</a>"},
                      "ImageDescription": {"value": "Ruins of <b>Machu Picchu</b>"},
                      "LicenseShortName": {"value": "CC0"},
                      "ImageWidth": {"value": 4000}}}],
     "coordinates": [{"lat": -13.1631, "lon": -72.545}]},
    {"pageid": 3, "ns": 6, "title": "File:Missing.jpg", "index": 3, "missing": true}
  ]}
}`

func newTestConnector(server *httptest.Server) *Connector {
	client := rest.New(rest.Config{BaseURL: server.URL, Retry: rest.RetryConfig{MaxAttempts: 1}})
	return New("", base.WithClient(client), base.WithPingURL(server.URL))
}

func TestSearch(t *testing.T) {
	var offsets []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "search", q.Get("generator"))
		assert.Equal(t, "6", q.Get("gsrnamespace"))
		assert.Equal(t, "2", q.Get("formatversion"))
		offsets = append(offsets, q.Get("gsroffset"))
		_, _ = w.Write([]byte(searchJSON))
	}))
	defer server.Close()

	c := newTestConnector(server)
	items, err := c.Search(context.Background(), "Machu Picchu", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"0"}, offsets)

	photo := items[0]
	assert.Equal(t, "commons:File:Machu_Picchu,_Peru.jpg", photo.ID)
	assert.Equal(t, "Machu Picchu, Peru", photo.Title)
	assert.Equal(t, domain.ContentTypePhoto, photo.ContentType)
	assert.Equal(t, "Jane Doe", photo.Creator)
	assert.Equal(t, "Ruins of Machu Picchu", photo.Description)
	assert.Equal(t, "CC0", photo.License)
	assert.Equal(t, prefixScore, photo.RelevanceScore)
	require.NotNil(t, photo.Lat)
	assert.InDelta(t, -13.1631, *photo.Lat, 1e-9)

	mapItem := items[1]
	assert.Equal(t, domain.ContentTypeMap, mapItem.ContentType)
	assert.Equal(t, "Cartographer", mapItem.Creator)
}

// "Machu Picchu, Peru" starts with the query.
const prefixScore = 80

func TestSearch_PagesUntilLimit(t *testing.T) {
	var offsets []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("gsroffset"))
		_, _ = w.Write([]byte(searchJSON))
	}))
	defer server.Close()

	c := newTestConnector(server)
	_, err := c.Search(context.Background(), "Machu Picchu", domain.SearchOptions{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, offsets)

	offsets = nil
	_, err = c.Search(context.Background(), "Machu Picchu", domain.SearchOptions{Limit: 120})
	require.NoError(t, err)
	require.NotEmpty(t, offsets)
	assert.Equal(t, "0", offsets[0])
}

func TestSearch_MapFilter(t *testing.T) {
	var search string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		search = r.URL.Query().Get("gsrsearch")
		_, _ = w.Write([]byte(searchJSON))
	}))
	defer server.Close()

	c := newTestConnector(server)
	items, err := c.Search(context.Background(), "Machu Picchu", domain.SearchOptions{ContentType: domain.ContentTypeMap})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Machu Picchu map", search)
	assert.Equal(t, domain.ContentTypeMap, items[0].ContentType)
}

func TestSearch_APIErrorIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": "badvalue", "info": "Unrecognized value"}}`))
	}))
	defer server.Close()

	c := newTestConnector(server)
	items, err := c.Search(context.Background(), "x", domain.SearchOptions{})
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetByLocation(t *testing.T) {
	var q map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q = map[string]string{
			"generator": r.URL.Query().Get("generator"),
			"ggscoord":  r.URL.Query().Get("ggscoord"),
			"ggsradius": r.URL.Query().Get("ggsradius"),
		}
		_, _ = w.Write([]byte(searchJSON))
	}))
	defer server.Close()

	c := newTestConnector(server)
	items, err := c.GetByLocation(context.Background(), domain.LocationQuery{Lat: -13.1631, Lon: -72.545, RadiusKM: 50})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "geosearch", q["generator"])
	assert.Equal(t, "-13.1631|-72.545", q["ggscoord"])
	assert.Equal(t, strconv.Itoa(maxRadiusMeters), q["ggsradius"])
}

func TestGetItem(t *testing.T) {
	var titles string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles = r.URL.Query().Get("titles")
		_, _ = w.Write([]byte(`{"query": {"pages": [{"title": "File:Missing.jpg", "missing": true}]}}`))
	}))
	defer server.Close()

	c := newTestConnector(server)
	item, err := c.GetItem(context.Background(), "commons:Missing.jpg")
	require.NoError(t, err)
	assert.Nil(t, item)
	assert.Equal(t, "File:Missing.jpg", titles)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Stonehenge 2007", displayTitle("File:Stonehenge_2007.jpg"))
	assert.Equal(t, "No extension", displayTitle("File:No_extension"))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain", stripHTML(" plain "))
	assert.Equal(t, "Jane Doe", stripHTML(`<span><a href="x">Jane</a> Doe</span>`))
}
