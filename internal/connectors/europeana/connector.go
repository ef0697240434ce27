// Package europeana searches the Europeana Search API.
package europeana

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/relevance"
)

// ID is the connector identifier.
const ID = "europeana"

// maxRows is the largest page the API serves.
const maxRows = 100

// kmPerDegree approximates the length of one degree of latitude.
const kmPerDegree = 111.0

// Info describes Europeana.
var Info = domain.SourceInfo{
	ID:          ID,
	Name:        "Europeana",
	Description: "Aggregated cultural heritage records from European museums, libraries and archives",
	ContentTypes: []domain.ContentType{
		domain.ContentTypePhoto,
		domain.ContentTypeArtwork,
		domain.ContentTypeArtifact,
		domain.ContentTypeDocument,
		domain.ContentTypeVideo,
		domain.ContentTypeAudio,
		domain.ContentTypeModel3D,
	},
	BaseURL:      "https://api.europeana.eu/record/v2",
	Protocol:     domain.ProtocolREST,
	RateLimit:    5,
	RequiresAuth: true,
	AuthType:     domain.AuthTypeAPIKey,
	License:      "Varies per record",
	Attribution:  "Europeana",
	Available:    true,
}

// typeFilters maps content types onto the API's TYPE facet.
var typeFilters = map[domain.ContentType]string{
	domain.ContentTypePhoto:    "IMAGE",
	domain.ContentTypeArtwork:  "IMAGE",
	domain.ContentTypeArtifact: "IMAGE",
	domain.ContentTypeDocument: "TEXT",
	domain.ContentTypeVideo:    "VIDEO",
	domain.ContentTypeAudio:    "SOUND",
	domain.ContentTypeModel3D:  "3D",
}

// Connector implements driven.Connector for Europeana.
type Connector struct {
	*base.Connector
}

// New creates a Europeana connector.
func New(apiKey string, opts ...base.Option) *Connector {
	c := &Connector{}
	c.Connector = base.New(Info, c, append([]base.Option{base.WithAPIKey(apiKey)}, opts...)...)
	return c
}

// Registration returns the registry entry for this connector.
func Registration() driven.Registration {
	return driven.Registration{
		Info: Info,
		New:  func(apiKey string) driven.Connector { return New(apiKey) },
	}
}

// Search runs a full-text query.
func (c *Connector) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	if c.MissingKey() || !c.Accepts(opts.ContentType) {
		return nil, nil
	}

	params := url.Values{"query": {query}}
	if f, ok := typeFilters[opts.ContentType]; ok {
		params.Add("qf", "TYPE:"+f)
	}
	if country := opts.Extra["country"]; country != "" {
		params.Add("qf", "COUNTRY:"+strings.ToLower(country))
	}

	items, err := c.search(ctx, params, query, opts.ContentType, opts.Offset, base.Limit(opts.Limit))
	return items, c.Recover("search", err)
}

// GetByLocation searches records whose place lies within a bounding box
// around the point.
func (c *Connector) GetByLocation(ctx context.Context, q domain.LocationQuery) ([]domain.ContentItem, error) {
	if c.MissingKey() || !c.Accepts(q.ContentType) {
		return nil, nil
	}

	radius := q.RadiusKM
	if radius <= 0 {
		radius = 10
	}
	dLat := radius / kmPerDegree
	dLon := radius / (kmPerDegree * math.Max(math.Cos(q.Lat*math.Pi/180), 0.01))

	params := url.Values{
		"query": {"*"},
		"qf": {
			fmt.Sprintf("pl_wgs84_pos_lat:[%s TO %s]", ftoa(q.Lat-dLat), ftoa(q.Lat+dLat)),
			fmt.Sprintf("pl_wgs84_pos_long:[%s TO %s]", ftoa(q.Lon-dLon), ftoa(q.Lon+dLon)),
		},
	}
	if f, ok := typeFilters[q.ContentType]; ok {
		params.Add("qf", "TYPE:"+f)
	}

	items, err := c.search(ctx, params, "", q.ContentType, 0, base.Limit(q.Limit))
	return items, c.Recover("location", err)
}

// GetItem fetches one record by its Europeana ID ("/dataset/local").
func (c *Connector) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	if c.MissingKey() {
		return nil, nil
	}

	recordID := strings.TrimPrefix(id, ID+":")
	if !strings.HasPrefix(recordID, "/") {
		recordID = "/" + recordID
	}

	var resp recordResponse
	err := c.Client().GetJSON(ctx, recordID+".json", url.Values{"wskey": {c.APIKey()}}, &resp)
	if err != nil {
		if rest.IsNotFound(err) {
			return nil, nil
		}
		return nil, c.Recover("get_item", err)
	}
	if !resp.Success || resp.Object.About == "" {
		return nil, nil
	}

	item := c.recordToItem(&resp.Object)
	return &item, nil
}

func (c *Connector) search(
	ctx context.Context, params url.Values, query string, filter domain.ContentType, offset, limit int,
) ([]domain.ContentItem, error) {
	params.Set("wskey", c.APIKey())
	params.Set("profile", "standard")

	bounds := rest.Bounds{PageSize: min(limit, maxRows), MaxItems: limit, MaxPages: 10}
	records, err := rest.PaginateOffset(ctx, bounds, func(ctx context.Context, start, size int) (rest.Page[record], error) {
		p := cloneValues(params)
		// start is 1-based.
		p.Set("start", strconv.Itoa(offset+start+1))
		p.Set("rows", strconv.Itoa(size))

		var resp searchResponse
		if err := c.Client().GetJSON(ctx, "/search.json", p, &resp); err != nil {
			return rest.Page[record]{}, err
		}
		if !resp.Success {
			return rest.Page[record]{}, fmt.Errorf("europeana: %s", resp.Error)
		}
		done := offset+start+len(resp.Items) >= resp.TotalResults
		return rest.Page[record]{Items: resp.Items, Done: done}, nil
	})
	if err != nil && len(records) == 0 {
		return nil, err
	}

	items := make([]domain.ContentItem, 0, len(records))
	for i := range records {
		item := c.toItem(&records[i], filter)
		if query != "" {
			item.RelevanceScore = c.Score(item.Title, query, relevance.Options{Country: item.Country})
		}
		items = append(items, item)
	}
	return c.Valid(items), err
}

func (c *Connector) toItem(r *record, filter domain.ContentType) domain.ContentItem {
	t := contentType(r.Type)
	if filter != "" {
		t = filter
	}

	link := r.GUID
	if link == "" {
		link = "https://www.europeana.eu/item" + r.ID
	}

	item := c.NewItem(strings.TrimPrefix(r.ID, "/"), t, first(r.Title), link)
	item.Description = first(r.DCDescription)
	item.ThumbnailURL = first(r.EDMPreview)
	item.MediaURL = first(r.EDMIsShownBy)
	item.Creator = first(r.DCCreator)
	item.Date = first(r.Year)
	if y, err := strconv.Atoi(first(r.Year)); err == nil {
		item.Year = domain.IntPtr(y)
	}
	item.Lat = parseFloat(first(r.EDMPlaceLatitude))
	item.Lon = parseFloat(first(r.EDMPlaceLongitude))
	// Country facets arrive lowercased. Casers are stateful, so one per call.
	item.Country = cases.Title(language.English).String(first(r.Country))
	item.LicenseURL = first(r.Rights)
	item.Museum = first(r.DataProvider)
	item.Attribution = first(r.DataProvider)
	return item
}

func (c *Connector) recordToItem(o *recordObject) domain.ContentItem {
	title := first(o.Title)
	if title == "" && len(o.Proxies) > 0 {
		title = firstLang(o.Proxies[0].DCTitle)
	}
	item := c.NewItem(strings.TrimPrefix(o.About, "/"), contentType(o.Type), title,
		"https://www.europeana.eu/item"+o.About)
	if len(o.Proxies) > 0 {
		item.Description = firstLang(o.Proxies[0].DCDescription)
		item.Creator = firstLang(o.Proxies[0].DCCreator)
	}
	if len(o.Aggregations) > 0 {
		item.MediaURL = o.Aggregations[0].EDMIsShownBy
		item.LicenseURL = o.Aggregations[0].EDMRights.first()
	}
	return item
}

func contentType(apiType string) domain.ContentType {
	switch apiType {
	case "TEXT":
		return domain.ContentTypeDocument
	case "VIDEO":
		return domain.ContentTypeVideo
	case "SOUND":
		return domain.ContentTypeAudio
	case "3D":
		return domain.ContentTypeModel3D
	default:
		return domain.ContentTypePhoto
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func firstLang(m map[string][]string) string {
	for _, lang := range []string{"en", "def"} {
		if v := first(m[lang]); v != "" {
			return v
		}
	}
	for _, v := range m {
		if s := first(v); s != "" {
			return s
		}
	}
	return ""
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
