// Package wikidata finds archaeological sites through the Wikidata SPARQL endpoint.
package wikidata

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/relevance"
)

// ID is the connector identifier.
const ID = "wikidata"

// entityPrefix is stripped from item URIs to get the Q-number.
const entityPrefix = "http://www.wikidata.org/entity/"

// Info describes the Wikidata SPARQL endpoint.
var Info = domain.SourceInfo{
	ID:           ID,
	Name:         "Wikidata",
	Description:  "Archaeological sites with coordinates, images and heritage designations from Wikidata",
	ContentTypes: []domain.ContentType{domain.ContentTypePlace},
	BaseURL:      "https://query.wikidata.org/sparql",
	Protocol:     domain.ProtocolSPARQL,
	RateLimit:    1,
	AuthType:     domain.AuthTypeNone,
	License:      "CC0",
	Attribution:  "Wikidata contributors",
	Available:    true,
}

var boostKeywords = []string{"archaeological", "ruins", "ancient", "temple", "necropolis"}

// qidPattern validates entity IDs before they are interpolated into SPARQL.
var qidPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Connector implements driven.Connector for Wikidata.
type Connector struct {
	*base.Connector
}

// New creates a Wikidata connector.
func New(_ string, opts ...base.Option) *Connector {
	c := &Connector{}
	defaults := []base.Option{base.WithRESTConfig(func(cfg *rest.Config) {
		cfg.Timeout = 60 * time.Second
	})}
	c.Connector = base.New(Info, c, append(defaults, opts...)...)
	return c
}

// Registration returns the registry entry for this connector.
func Registration() driven.Registration {
	return driven.Registration{
		Info: Info,
		New:  func(apiKey string) driven.Connector { return New(apiKey) },
	}
}

// Search finds archaeological sites whose label matches query.
func (c *Connector) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	if !c.Accepts(opts.ContentType) || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	sparql := fmt.Sprintf(searchTemplate, escape(query), base.Limit(opts.Limit), max(opts.Offset, 0))
	items, err := c.run(ctx, sparql, query)
	return items, c.Recover("search", err)
}

// GetByLocation finds archaeological sites within RadiusKM of the point.
func (c *Connector) GetByLocation(ctx context.Context, q domain.LocationQuery) ([]domain.ContentItem, error) {
	if !c.Accepts(q.ContentType) {
		return nil, nil
	}

	radius := q.RadiusKM
	if radius <= 0 {
		radius = 10
	}
	sparql := fmt.Sprintf(aroundTemplate,
		strconv.FormatFloat(q.Lon, 'f', -1, 64),
		strconv.FormatFloat(q.Lat, 'f', -1, 64),
		strconv.FormatFloat(radius, 'f', -1, 64),
		base.Limit(q.Limit),
	)
	items, err := c.run(ctx, sparql, "")
	return items, c.Recover("location", err)
}

// GetBySite prefers coordinates when given, then falls back to a name search.
func (c *Connector) GetBySite(ctx context.Context, q domain.SiteQuery) ([]domain.ContentItem, error) {
	if q.Lat != nil && q.Lon != nil {
		items, err := c.GetByLocation(ctx, domain.LocationQuery{
			Lat: *q.Lat, Lon: *q.Lon, RadiusKM: 5, ContentType: q.ContentType, Limit: q.Limit,
		})
		if err != nil || len(items) > 0 {
			for i := range items {
				items[i].RelevanceScore = c.Score(items[i].Title, q.SiteName, relevance.Options{BoostKeywords: boostKeywords})
			}
			return items, err
		}
	}
	return c.Search(ctx, q.SiteName, domain.SearchOptions{ContentType: q.ContentType, Limit: q.Limit})
}

// GetItem fetches a single entity by Q-number.
func (c *Connector) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	qid := strings.TrimPrefix(id, ID+":")
	if !qidPattern.MatchString(qid) {
		return nil, nil
	}

	items, err := c.run(ctx, fmt.Sprintf(entityTemplate, qid), "")
	if err != nil {
		return nil, c.Recover("get_item", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (c *Connector) run(ctx context.Context, sparql, query string) ([]domain.ContentItem, error) {
	params := url.Values{
		"query":  {sparql},
		"format": {"json"},
	}

	var resp sparqlResponse
	if err := c.Client().GetJSON(ctx, "", params, &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(resp.Results.Bindings))
	items := make([]domain.ContentItem, 0, len(resp.Results.Bindings))
	for _, b := range resp.Results.Bindings {
		qid := strings.TrimPrefix(b.value("item"), entityPrefix)
		// OPTIONAL joins can repeat an entity once per image or country.
		if qid == "" || seen[qid] {
			continue
		}
		seen[qid] = true

		item := c.toItem(qid, b)
		if query != "" {
			item.RelevanceScore = c.Score(item.Title, query, relevance.Options{
				Country:       item.Country,
				BoostKeywords: boostKeywords,
			})
		}
		items = append(items, item)
	}
	return c.Valid(items), nil
}

func (c *Connector) toItem(qid string, b binding) domain.ContentItem {
	title := b.value("itemLabel")
	item := c.NewItem(qid, domain.ContentTypePlace, title, "https://www.wikidata.org/wiki/"+qid)
	item.Description = b.value("itemDescription")
	item.Country = b.value("countryLabel")
	item.Place = title
	item.ObjectType = "archaeological site"
	if img := b.value("image"); img != "" {
		item.MediaURL = img
		item.ThumbnailURL = img + "?width=320"
	}
	if lon, lat, ok := parsePoint(b.value("coord")); ok {
		item.Lat = domain.FloatPtr(lat)
		item.Lon = domain.FloatPtr(lon)
	}
	return item
}

// parsePoint reads a WKT literal "Point(lon lat)".
func parsePoint(wkt string) (lon, lat float64, ok bool) {
	inner, found := strings.CutPrefix(wkt, "Point(")
	if !found {
		return 0, 0, false
	}
	fields := strings.Fields(strings.TrimSuffix(inner, ")"))
	if len(fields) != 2 {
		return 0, 0, false
	}
	lon, errLon := strconv.ParseFloat(fields[0], 64)
	lat, errLat := strconv.ParseFloat(fields[1], 64)
	if errLon != nil || errLat != nil {
		return 0, 0, false
	}
	return lon, lat, true
}

// escape makes s safe inside a double-quoted SPARQL string literal.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}
