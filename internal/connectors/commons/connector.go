// Package commons searches media files on Wikimedia Commons.
package commons

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/connectors/rest"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/relevance"
)

// ID is the connector identifier.
const ID = "commons"

const (
	// fileNamespace is the MediaWiki namespace for media files.
	fileNamespace = "6"

	// maxPageSize is the API's per-request cap for anonymous clients.
	maxPageSize = 50

	// maxRadiusMeters is the geosearch radius cap.
	maxRadiusMeters = 10000

	thumbWidth = "320"
)

// Info describes Wikimedia Commons.
var Info = domain.SourceInfo{
	ID:          ID,
	Name:        "Wikimedia Commons",
	Description: "Freely licensed photographs, maps and media of sites and objects",
	ContentTypes: []domain.ContentType{
		domain.ContentTypePhoto,
		domain.ContentTypeMap,
		domain.ContentTypeVideo,
		domain.ContentTypeAudio,
	},
	BaseURL:     "https://commons.wikimedia.org/w/api.php",
	Protocol:    domain.ProtocolREST,
	RateLimit:   5,
	AuthType:    domain.AuthTypeNone,
	License:     "Varies per file (CC BY-SA, CC0, public domain)",
	Attribution: "Wikimedia Commons contributors",
	Available:   true,
}

var boostKeywords = []string{"ruins", "archaeological", "excavation", "ancient"}

// Connector implements driven.Connector for Wikimedia Commons.
type Connector struct {
	*base.Connector
}

// New creates a Commons connector.
func New(_ string, opts ...base.Option) *Connector {
	c := &Connector{}
	c.Connector = base.New(Info, c, opts...)
	return c
}

// Registration returns the registry entry for this connector.
func Registration() driven.Registration {
	return driven.Registration{
		Info: Info,
		New:  func(apiKey string) driven.Connector { return New(apiKey) },
	}
}

// Search runs a full-text search over file pages.
func (c *Connector) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	if !c.Accepts(opts.ContentType) {
		return nil, nil
	}

	search := query
	if opts.ContentType == domain.ContentTypeMap {
		search += " map"
	}

	limit := base.Limit(opts.Limit)
	bounds := rest.Bounds{PageSize: min(limit, maxPageSize), MaxItems: limit, MaxPages: 5}
	pages, err := rest.PaginatePages(ctx, bounds, func(ctx context.Context, page, size int) (rest.Page[filePage], error) {
		params := c.params()
		params.Set("generator", "search")
		params.Set("gsrsearch", search)
		params.Set("gsrnamespace", fileNamespace)
		params.Set("gsrlimit", strconv.Itoa(size))
		params.Set("gsroffset", strconv.Itoa(opts.Offset+(page-1)*bounds.PageSize))
		return c.query(ctx, params)
	})
	if err != nil && len(pages) == 0 {
		return nil, c.Recover("search", err)
	}

	return c.toItems(pages, query, opts.ContentType), c.Recover("search", err)
}

// GetByLocation finds geotagged files near the point.
func (c *Connector) GetByLocation(ctx context.Context, q domain.LocationQuery) ([]domain.ContentItem, error) {
	if !c.Accepts(q.ContentType) {
		return nil, nil
	}

	radius := int(q.RadiusKM * 1000)
	if radius <= 0 || radius > maxRadiusMeters {
		radius = maxRadiusMeters
	}

	params := c.params()
	params.Set("generator", "geosearch")
	params.Set("ggscoord", strconv.FormatFloat(q.Lat, 'f', -1, 64)+"|"+strconv.FormatFloat(q.Lon, 'f', -1, 64))
	params.Set("ggsradius", strconv.Itoa(radius))
	params.Set("ggsnamespace", fileNamespace)
	params.Set("ggslimit", strconv.Itoa(min(base.Limit(q.Limit), maxPageSize)))

	page, err := c.query(ctx, params)
	if err != nil {
		return nil, c.Recover("location", err)
	}
	return c.toItems(page.Items, "", q.ContentType), nil
}

// GetItem fetches a file page by title ("File:...").
func (c *Connector) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	title := strings.TrimPrefix(id, ID+":")
	if !strings.HasPrefix(title, "File:") {
		title = "File:" + title
	}

	params := c.params()
	params.Set("titles", title)

	page, err := c.query(ctx, params)
	if err != nil {
		return nil, c.Recover("get_item", err)
	}
	items := c.toItems(page.Items, "", "")
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (c *Connector) params() url.Values {
	return url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"prop":          {"imageinfo|coordinates"},
		"iiprop":        {"url|mime|user|extmetadata"},
		"iiurlwidth":    {thumbWidth},
	}
}

func (c *Connector) query(ctx context.Context, params url.Values) (rest.Page[filePage], error) {
	var resp queryResponse
	if err := c.Client().GetJSON(ctx, "", params, &resp); err != nil {
		return rest.Page[filePage]{}, err
	}
	if resp.Error != nil {
		return rest.Page[filePage]{}, resp.Error
	}

	pages := resp.Query.Pages
	// Search generators return pages unordered; index carries the rank.
	sortByIndex(pages)
	return rest.Page[filePage]{Items: pages, Done: resp.Continue == nil}, nil
}

func (c *Connector) toItems(pages []filePage, query string, filter domain.ContentType) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(pages))
	for i := range pages {
		p := &pages[i]
		if p.Missing || len(p.ImageInfo) == 0 {
			continue
		}
		info := p.ImageInfo[0]

		t := classify(p.Title, info.Mime)
		if filter != "" && t != filter {
			continue
		}

		title := displayTitle(p.Title)
		link := info.DescriptionURL
		if link == "" {
			link = "https://commons.wikimedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(p.Title, " ", "_"))
		}

		item := c.NewItem(p.Title, t, title, link)
		item.ThumbnailURL = info.ThumbURL
		item.MediaURL = info.URL
		item.Description = stripHTML(info.ExtMetadata.value("ImageDescription"))
		item.Creator = stripHTML(info.ExtMetadata.value("Artist"))
		if item.Creator == "" {
			item.Creator = info.User
		}
		item.Date = stripHTML(info.ExtMetadata.value("DateTimeOriginal"))
		if lic := info.ExtMetadata.value("LicenseShortName"); lic != "" {
			item.License = lic
		}
		item.LicenseURL = info.ExtMetadata.value("LicenseUrl")
		item.Attribution = stripHTML(info.ExtMetadata.value("Credit"))
		if len(p.Coordinates) > 0 {
			item.Lat = domain.FloatPtr(p.Coordinates[0].Lat)
			item.Lon = domain.FloatPtr(p.Coordinates[0].Lon)
		}
		if query != "" {
			item.RelevanceScore = c.Score(title, query, relevance.Options{BoostKeywords: boostKeywords})
		}
		items = append(items, item)
	}
	return c.Valid(items)
}

func classify(title, mime string) domain.ContentType {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return domain.ContentTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return domain.ContentTypeAudio
	case strings.Contains(strings.ToLower(title), " map"):
		return domain.ContentTypeMap
	default:
		return domain.ContentTypePhoto
	}
}

// displayTitle turns "File:Stonehenge_2007.jpg" into "Stonehenge 2007".
func displayTitle(pageTitle string) string {
	name := strings.TrimPrefix(pageTitle, "File:")
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}

// stripHTML returns the text content of an extmetadata HTML fragment.
func stripHTML(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
