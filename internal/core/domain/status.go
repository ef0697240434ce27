package domain

import "time"

// HealthStatus is the outcome of a health check.
type HealthStatus string

// Health states.
const (
	HealthOK          HealthStatus = "ok"
	HealthWarning     HealthStatus = "warning"
	HealthError       HealthStatus = "error"
	HealthUnavailable HealthStatus = "unavailable"
	HealthUnknown     HealthStatus = "unknown"
)

// Usable reports whether the connector answered well enough to be queried.
func (s HealthStatus) Usable() bool {
	return s == HealthOK || s == HealthWarning
}

// HealthCheckResult is the raw result of Connector.HealthCheck.
type HealthCheckResult struct {
	ConnectorID    string       `json:"connector_id"`
	Status         HealthStatus `json:"status"`
	ResponseTimeMS int64        `json:"response_time_ms"`
	Message        string       `json:"message,omitempty"`
	CheckedAt      time.Time    `json:"checked_at"`
}

// SampleItem is a compact view of an item returned by a canned test query.
type SampleItem struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	URL            string      `json:"url"`
	ContentType    ContentType `json:"content_type"`
	RelevanceScore int         `json:"relevance_score"`
}

// NewSampleItem summarises an item.
func NewSampleItem(item *ContentItem) SampleItem {
	return SampleItem{
		ID:             item.ID,
		Title:          item.Title,
		URL:            item.URL,
		ContentType:    item.ContentType,
		RelevanceScore: item.RelevanceScore,
	}
}

// QueryTestResult records one canned query run against one connector.
type QueryTestResult struct {
	QueryID        string       `json:"query_id"`
	Query          string       `json:"query"`
	ResultCount    int          `json:"result_count"`
	Samples        []SampleItem `json:"samples,omitempty"`
	ResponseTimeMS int64        `json:"response_time_ms"`
	Error          string       `json:"error,omitempty"`
	TestedAt       time.Time    `json:"tested_at"`
}

// Passed reports whether the query ran without error and found something.
func (r *QueryTestResult) Passed() bool {
	return r.Error == "" && r.ResultCount > 0
}

// ConnectorCategory groups connectors for status display only.
type ConnectorCategory string

// Display categories.
const (
	CategoryMuseums     ConnectorCategory = "museums"
	CategoryMaps        ConnectorCategory = "maps"
	CategoryModels      ConnectorCategory = "models"
	CategoryTexts       ConnectorCategory = "texts"
	CategoryScholarship ConnectorCategory = "scholarship"
	CategoryMedia       ConnectorCategory = "media"
	CategoryGazetteers  ConnectorCategory = "gazetteers"
	CategoryGeneral     ConnectorCategory = "general"
)

// ConnectorStatus is the cached operational view of one connector.
type ConnectorStatus struct {
	ConnectorID       string            `json:"connector_id"`
	Name              string            `json:"name"`
	Category          ConnectorCategory `json:"category"`
	Status            HealthStatus      `json:"status"`
	ResponseTimeMS    int64             `json:"response_time_ms"`
	Message           string            `json:"message,omitempty"`
	LastChecked       *time.Time        `json:"last_checked,omitempty"`
	Available         bool              `json:"available"`
	UnavailableReason string            `json:"unavailable_reason,omitempty"`
	ContentTypes      []ContentType     `json:"content_types"`
	RequiresAuth      bool              `json:"requires_auth"`
	HasAPIKey         bool              `json:"has_api_key"`
	TestResults       []QueryTestResult `json:"test_results,omitempty"`
}
