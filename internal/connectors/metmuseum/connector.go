// Package metmuseum searches The Metropolitan Museum of Art Collection API.
package metmuseum

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/relevance"
)

// ID is the connector identifier.
const ID = "metmuseum"

// Info describes The Met collection.
var Info = domain.SourceInfo{
	ID:          ID,
	Name:        "The Metropolitan Museum of Art",
	Description: "Open access objects from The Met collection, including antiquities from the ancient Near East, Egypt, Greece and Rome",
	ContentTypes: []domain.ContentType{
		domain.ContentTypeArtifact,
		domain.ContentTypeArtwork,
		domain.ContentTypeCoin,
	},
	BaseURL:     "https://collectionapi.metmuseum.org/public/collection/v1",
	Protocol:    domain.ProtocolREST,
	RateLimit:   10,
	AuthType:    domain.AuthTypeNone,
	License:     "CC0",
	Attribution: "The Metropolitan Museum of Art",
	Available:   true,
}

// boostKeywords mark titles that are likely antiquities.
var boostKeywords = []string{"ancient", "antiquities", "roman", "greek", "egyptian", "etruscan", "assyrian"}

// Connector implements driven.Connector for The Met.
type Connector struct {
	*base.Connector
}

// New creates a Met connector. The collection API needs no key.
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

// Search finds objects matching query. The API returns IDs only, so each
// hit is fetched individually up to the limit.
func (c *Connector) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ContentItem, error) {
	if !c.Accepts(opts.ContentType) {
		return nil, nil
	}

	params := url.Values{
		"q":         {query},
		"hasImages": {"true"},
	}
	if opts.Extra["department"] != "" {
		params.Set("departmentId", opts.Extra["department"])
	}

	items, err := c.searchIDs(ctx, params, query, opts)
	return items, c.Recover("search", err)
}

// GetByPeriod searches for objects dated within the range.
func (c *Connector) GetByPeriod(ctx context.Context, q domain.PeriodQuery) ([]domain.ContentItem, error) {
	query := q.Culture
	if query == "" {
		query = "*"
	}
	params := url.Values{
		"q":         {query},
		"dateBegin": {strconv.Itoa(q.StartYear)},
		"dateEnd":   {strconv.Itoa(q.EndYear)},
	}

	items, err := c.searchIDs(ctx, params, q.Culture, domain.SearchOptions{Limit: q.Limit})
	return items, c.Recover("period", err)
}

// GetItem fetches one object by its Met object ID.
func (c *Connector) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	obj, err := c.fetchObject(ctx, strings.TrimPrefix(id, ID+":"))
	if err != nil {
		return nil, c.Recover("get_item", err)
	}
	if obj == nil {
		return nil, nil
	}
	item := c.toItem(obj, "")
	return &item, nil
}

// BatchFetch streams objects from the full object list.
func (c *Connector) BatchFetch(ctx context.Context, limit int) (iter.Seq2[domain.ContentItem, error], bool) {
	return func(yield func(domain.ContentItem, error) bool) {
		var list searchResponse
		if err := c.Client().GetJSON(ctx, "/objects", nil, &list); err != nil {
			yield(domain.ContentItem{}, err)
			return
		}

		emitted := 0
		for _, id := range list.ObjectIDs {
			if limit > 0 && emitted >= limit {
				return
			}
			obj, err := c.fetchObject(ctx, strconv.Itoa(id))
			if err != nil {
				if !yield(domain.ContentItem{}, err) {
					return
				}
				continue
			}
			if obj == nil || obj.Title == "" {
				continue
			}
			emitted++
			if !yield(c.toItem(obj, ""), nil) {
				return
			}
		}
	}, true
}

func (c *Connector) searchIDs(
	ctx context.Context, params url.Values, query string, opts domain.SearchOptions,
) ([]domain.ContentItem, error) {
	var resp searchResponse
	if err := c.Client().GetJSON(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	ids := resp.ObjectIDs
	if opts.Offset > 0 {
		if opts.Offset >= len(ids) {
			return nil, nil
		}
		ids = ids[opts.Offset:]
	}

	limit := base.Limit(opts.Limit)
	items := make([]domain.ContentItem, 0, min(limit, len(ids)))
	for _, id := range ids {
		if len(items) >= limit {
			break
		}
		obj, err := c.fetchObject(ctx, strconv.Itoa(id))
		if err != nil {
			if c.Recover("object", err) != nil {
				return items, err
			}
			continue
		}
		if obj == nil {
			continue
		}
		item := c.toItem(obj, query)
		if opts.ContentType != "" && item.ContentType != opts.ContentType {
			continue
		}
		items = append(items, item)
	}

	return c.Valid(items), nil
}

// fetchObject returns nil, nil for objects the API reports missing.
func (c *Connector) fetchObject(ctx context.Context, id string) (*object, error) {
	var obj object
	err := c.Client().GetJSON(ctx, "/objects/"+url.PathEscape(id), nil, &obj)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("object %s: %w", id, err)
	}
	if obj.ObjectID == 0 {
		return nil, nil
	}
	return &obj, nil
}

func (c *Connector) toItem(obj *object, query string) domain.ContentItem {
	link := obj.ObjectURL
	if link == "" {
		link = "https://www.metmuseum.org/art/collection/search/" + strconv.Itoa(obj.ObjectID)
	}

	item := c.NewItem(strconv.Itoa(obj.ObjectID), classify(obj), obj.Title, link)
	item.Description = obj.CreditLine
	item.ThumbnailURL = obj.PrimaryImageSmall
	item.MediaURL = obj.PrimaryImage
	item.Creator = obj.ArtistDisplayName
	item.CreatorURL = obj.ArtistULANURL
	item.Date = obj.ObjectDate
	item.Period = firstNonEmpty(obj.Period, obj.Dynasty, obj.Reign)
	item.Culture = obj.Culture
	item.Place = firstNonEmpty(obj.City, obj.Region, obj.Excavation)
	item.Country = obj.Country
	item.ObjectType = obj.ObjectName
	item.Material = obj.Medium
	item.Dimensions = obj.Dimensions
	item.Museum = Info.Name
	if obj.ObjectBeginDate != 0 || obj.ObjectEndDate != 0 {
		item.Year = domain.IntPtr(obj.ObjectBeginDate)
	}
	if !obj.IsPublicDomain {
		item.License = "See museum terms"
	}

	if query != "" {
		item.RelevanceScore = c.Score(obj.Title, query, relevance.Options{
			Country:       obj.Country,
			BoostKeywords: boostKeywords,
		})
	}
	return item
}

func classify(obj *object) domain.ContentType {
	name := strings.ToLower(obj.ObjectName + " " + obj.Classification)
	switch {
	case strings.Contains(name, "coin"):
		return domain.ContentTypeCoin
	case strings.Contains(name, "painting"), strings.Contains(name, "drawing"), strings.Contains(name, "print"):
		return domain.ContentTypeArtwork
	default:
		return domain.ContentTypeArtifact
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
