// Package ads searches the Archaeology Data Service library by scraping
// its HTML result pages.
package ads

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
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
const ID = "ads"

// pageSize is the number of results the library renders per page.
const pageSize = 20

// Info describes the Archaeology Data Service library.
var Info = domain.SourceInfo{
	ID:          ID,
	Name:        "Archaeology Data Service",
	Description: "Grey literature, excavation reports and journal articles from the UK's archaeology archive",
	ContentTypes: []domain.ContentType{
		domain.ContentTypePaper,
		domain.ContentTypeBook,
		domain.ContentTypeDocument,
	},
	BaseURL:     "https://archaeologydataservice.ac.uk",
	Protocol:    domain.ProtocolHTML,
	RateLimit:   1,
	AuthType:    domain.AuthTypeNone,
	License:     "ADS Terms of Use",
	Attribution: "Archaeology Data Service",
	Available:   true,
}

var boostKeywords = []string{"excavation", "survey", "archaeological", "evaluation"}

// yearPattern finds a four-digit year in a display date.
var yearPattern = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)

// Connector implements driven.Connector for the ADS library.
type Connector struct {
	*base.Connector
}

// New creates an ADS connector.
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

// Search scrapes library result pages until the limit is reached.
func (c *Connector) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	if !c.Accepts(opts.ContentType) {
		return nil, nil
	}

	limit := base.Limit(opts.Limit)
	firstPage := opts.Offset/pageSize + 1
	bounds := rest.Bounds{PageSize: pageSize, MaxItems: limit, MaxPages: 5}

	items, err := rest.PaginatePages(ctx, bounds, func(ctx context.Context, page, _ int) (rest.Page[domain.ContentItem], error) {
		return c.fetchPage(ctx, query, firstPage+page-1)
	})
	if err != nil && len(items) == 0 {
		return nil, c.Recover("search", err)
	}

	if opts.ContentType != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.ContentType == opts.ContentType {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	for i := range items {
		items[i].RelevanceScore = c.Score(items[i].Title, query, relevance.Options{BoostKeywords: boostKeywords})
	}

	return c.Valid(items), c.Recover("search", err)
}

func (c *Connector) fetchPage(ctx context.Context, query string, page int) (rest.Page[domain.ContentItem], error) {
	params := url.Values{
		"q":    {query},
		"page": {strconv.Itoa(page)},
	}
	raw, err := c.Client().GetRaw(ctx, "/library/search/results", params, map[string]string{"Accept": "text/html"})
	if err != nil {
		return rest.Page[domain.ContentItem]{}, err
	}
	if !raw.OK() {
		return rest.Page[domain.ContentItem]{}, &rest.StatusError{
			StatusCode: raw.StatusCode,
			Method:     http.MethodGet,
			URL:        c.Client().BuildURL("/library/search/results", params),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return rest.Page[domain.ContentItem]{}, &rest.DecodeError{URL: Info.BaseURL, Err: err}
	}

	items := c.parseResults(doc)
	last := doc.Find("a[rel=next], .pagination .next a").Length() == 0
	return rest.Page[domain.ContentItem]{Items: items, Done: last}, nil
}

func (c *Connector) parseResults(doc *goquery.Document) []domain.ContentItem {
	var items []domain.ContentItem

	doc.Find(".search-result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("h3 a, .result-title a").First()
		title := clean(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return
		}

		abs := absolute(href)
		localID, _ := s.Attr("data-id")
		if localID == "" {
			localID = lastSegment(abs)
		}

		resultType := clean(s.Find(".result-type").Text())
		item := c.NewItem(localID, classify(resultType), title, abs)
		item.Description = clean(s.Find(".result-description, .abstract").Text())
		item.Creator = clean(s.Find(".result-authors, .authors").Text())
		item.Date = clean(s.Find(".result-date, .date").Text())
		if m := yearPattern.FindString(item.Date); m != "" {
			y, _ := strconv.Atoi(m)
			item.Year = domain.IntPtr(y)
		}
		item.Place = clean(s.Find(".result-location").Text())
		item.ObjectType = resultType
		items = append(items, item)
	})

	return items
}

func classify(resultType string) domain.ContentType {
	t := strings.ToLower(resultType)
	switch {
	case strings.Contains(t, "journal"), strings.Contains(t, "article"), strings.Contains(t, "paper"):
		return domain.ContentTypePaper
	case strings.Contains(t, "book"), strings.Contains(t, "monograph"):
		return domain.ContentTypeBook
	default:
		return domain.ContentTypeDocument
	}
}

func absolute(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return href
	}
	baseURL, _ := url.Parse(Info.BaseURL)
	return baseURL.ResolveReference(u).String()
}

func lastSegment(link string) string {
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return fmt.Sprintf("%x", link)
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
