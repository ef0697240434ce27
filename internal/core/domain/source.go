package domain

import "slices"

// Protocol identifies how a connector talks to its upstream.
type Protocol string

// Upstream protocol kinds.
const (
	ProtocolREST    Protocol = "rest"
	ProtocolSPARQL  Protocol = "sparql"
	ProtocolHTML    Protocol = "html"
	ProtocolXML     Protocol = "xml"
	ProtocolOAIPMH  Protocol = "oai_pmh"
	ProtocolGraphQL Protocol = "graphql"
)

// IsSlow reports whether endpoints of this kind are known to answer slowly.
// Slow endpoints get a longer health-check budget.
func (p Protocol) IsSlow() bool {
	return p == ProtocolSPARQL
}

// AuthType describes what credential a connector needs.
type AuthType string

// Authentication kinds.
const (
	AuthTypeNone   AuthType = "none"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeOAuth  AuthType = "oauth"
)

// SourceInfo is the static metadata every connector declares.
type SourceInfo struct {
	// ID is the unique connector identifier (e.g. "metmuseum").
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// Description provides a brief explanation of the source.
	Description string `json:"description"`

	// ContentTypes lists the content types this connector can emit.
	ContentTypes []ContentType `json:"content_types"`

	// BaseURL is the upstream root used for requests and reachability probes.
	BaseURL string `json:"base_url"`

	// Protocol is the upstream protocol kind.
	Protocol Protocol `json:"protocol"`

	// RateLimit is the maximum requests per second. Zero means unlimited.
	RateLimit float64 `json:"rate_limit"`

	// RequiresAuth indicates the connector needs a credential to return results.
	RequiresAuth bool `json:"requires_auth"`

	// AuthType is the kind of credential required.
	AuthType AuthType `json:"auth_type"`

	License     string `json:"license,omitempty"`
	Attribution string `json:"attribution,omitempty"`

	// Available is false for sources known to be broken, deprecated or blocked.
	// Unavailable connectors are never contacted by health checks and are
	// excluded from default fan-out sets.
	Available bool `json:"available"`

	// UnavailableReason is the human-readable reason when Available is false.
	UnavailableReason string `json:"unavailable_reason,omitempty"`
}

// Provides reports whether the source declares the given content type.
func (s *SourceInfo) Provides(t ContentType) bool {
	return slices.Contains(s.ContentTypes, t)
}

// ProvidesAny reports whether the declared content types intersect types.
func (s *SourceInfo) ProvidesAny(types []ContentType) bool {
	for _, t := range types {
		if s.Provides(t) {
			return true
		}
	}
	return false
}
