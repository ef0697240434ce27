package domain

import (
	"fmt"
	"slices"
	"time"
)

// ContentType classifies a normalised content item.
type ContentType string

// Supported content types.
const (
	ContentTypePhoto          ContentType = "photo"
	ContentTypeArtwork        ContentType = "artwork"
	ContentTypeMap            ContentType = "map"
	ContentTypeModel3D        ContentType = "model_3d"
	ContentTypeArtifact       ContentType = "artifact"
	ContentTypeCoin           ContentType = "coin"
	ContentTypeInscription    ContentType = "inscription"
	ContentTypePrimaryText    ContentType = "primary_text"
	ContentTypeManuscript     ContentType = "manuscript"
	ContentTypeBook           ContentType = "book"
	ContentTypePaper          ContentType = "paper"
	ContentTypeDocument       ContentType = "document"
	ContentTypeVideo          ContentType = "video"
	ContentTypeAudio          ContentType = "audio"
	ContentTypeVocabularyTerm ContentType = "vocabulary_term"
	ContentTypePlace          ContentType = "place"
	ContentTypePeriod         ContentType = "period"
)

var allContentTypes = []ContentType{
	ContentTypePhoto,
	ContentTypeArtwork,
	ContentTypeMap,
	ContentTypeModel3D,
	ContentTypeArtifact,
	ContentTypeCoin,
	ContentTypeInscription,
	ContentTypePrimaryText,
	ContentTypeManuscript,
	ContentTypeBook,
	ContentTypePaper,
	ContentTypeDocument,
	ContentTypeVideo,
	ContentTypeAudio,
	ContentTypeVocabularyTerm,
	ContentTypePlace,
	ContentTypePeriod,
}

// AllContentTypes returns every supported content type in declaration order.
func AllContentTypes() []ContentType {
	return slices.Clone(allContentTypes)
}

// IsValid returns true if the content type is recognised.
func (t ContentType) IsValid() bool {
	return slices.Contains(allContentTypes, t)
}

// String returns the string representation.
func (t ContentType) String() string {
	return string(t)
}

// ParseContentType converts a string into a ContentType.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// ContentItem is a normalised unit of external content.
// Every connector maps its upstream records into this shape.
type ContentItem struct {
	// ID is adapter-local and namespaced by the source prefix (e.g. "met:436535").
	ID string `json:"id"`

	// Source is the connector ID that produced the item.
	Source string `json:"source"`

	// ContentType must be one of the types the connector declared.
	ContentType ContentType `json:"content_type"`

	// Title is the display title.
	Title string `json:"title"`

	// URL links to the item on the upstream site.
	URL string `json:"url"`

	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	MediaURL     string `json:"media_url,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`

	Creator    string `json:"creator,omitempty"`
	CreatorURL string `json:"creator_url,omitempty"`

	// Date is the display date string as given by the source.
	Date string `json:"date,omitempty"`

	// Year is the numeric year. Negative values are BCE.
	Year *int `json:"year,omitempty"`

	Period  string `json:"period,omitempty"`
	Culture string `json:"culture,omitempty"`

	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
	Place   string   `json:"place,omitempty"`
	Country string   `json:"country,omitempty"`

	License     string `json:"license,omitempty"`
	LicenseURL  string `json:"license_url,omitempty"`
	Attribution string `json:"attribution,omitempty"`

	ObjectType string `json:"object_type,omitempty"`
	Material   string `json:"material,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Museum     string `json:"museum,omitempty"`

	Views     int `json:"views,omitempty"`
	Likes     int `json:"likes,omitempty"`
	Downloads int `json:"downloads,omitempty"`

	// RelevanceScore ranks the item against the query, 0 to 100 inclusive.
	// Connectors that do not rank leave it at 0.
	RelevanceScore int `json:"relevance_score"`

	FetchedAt time.Time  `json:"fetched_at,omitzero"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Raw carries the source-specific payload for debugging.
	Raw map[string]any `json:"raw,omitempty"`
}

// Validate checks the emission invariant: required fields are set and the
// content type is one of the declared types.
func (c *ContentItem) Validate(declared []ContentType) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: item id is empty", ErrInvalidInput)
	case c.Source == "":
		return fmt.Errorf("%w: item %s has no source", ErrInvalidInput, c.ID)
	case c.Title == "":
		return fmt.Errorf("%w: item %s has no title", ErrInvalidInput, c.ID)
	case c.URL == "":
		return fmt.Errorf("%w: item %s has no url", ErrInvalidInput, c.ID)
	}
	if len(declared) > 0 && !slices.Contains(declared, c.ContentType) {
		return fmt.Errorf("%w: item %s has undeclared content type %q", ErrInvalidInput, c.ID, c.ContentType)
	}
	return nil
}

// ClampScore pins RelevanceScore into [0, 100].
func (c *ContentItem) ClampScore() {
	c.RelevanceScore = max(0, min(100, c.RelevanceScore))
}

// IntPtr returns a pointer to v. Useful for optional numeric fields.
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v. Useful for optional coordinates.
func FloatPtr(v float64) *float64 {
	return &v
}
