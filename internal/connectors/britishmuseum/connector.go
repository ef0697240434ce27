// Package britishmuseum declares the British Museum collection, which
// currently rejects automated clients and is registered as unavailable.
package britishmuseum

import (
	"context"
	"fmt"

	"github.com/custodia-labs/arkeo/internal/connectors/base"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
)

// ID is the connector identifier.
const ID = "britishmuseum"

// Info describes the British Museum collection.
var Info = domain.SourceInfo{
	ID:          ID,
	Name:        "British Museum",
	Description: "Collection online of the British Museum",
	ContentTypes: []domain.ContentType{
		domain.ContentTypeArtifact,
		domain.ContentTypeCoin,
		domain.ContentTypeInscription,
	},
	BaseURL:           "https://www.britishmuseum.org/collection",
	Protocol:          domain.ProtocolHTML,
	RateLimit:         0.5,
	AuthType:          domain.AuthTypeNone,
	License:           "CC BY-NC-SA 4.0",
	Attribution:       "The Trustees of the British Museum",
	Available:         false,
	UnavailableReason: "Collection search blocks automated clients",
}

// Connector implements driven.Connector for the British Museum.
type Connector struct {
	*base.Connector
}

// New creates a British Museum connector.
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

// Search reports the source as unavailable so an explicit request shows
// up as a failed source with the reason attached.
func (c *Connector) Search(context.Context, string, domain.SearchOptions) ([]domain.ContentItem, error) {
	return nil, fmt.Errorf("%w: %s", domain.ErrConnectorUnavailable, Info.UnavailableReason)
}
