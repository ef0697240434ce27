package domain

import "time"

// ContentSearchResult is the aggregated outcome of a fan-out operation.
type ContentSearchResult struct {
	// SearchID uniquely identifies this fan-out.
	SearchID string `json:"search_id"`

	// Query echoes the logical query (search text, site, empire or coordinates).
	Query string `json:"query"`

	// Items are ordered by descending relevance score. Ties keep the
	// relative order of the sources that produced them.
	Items []ContentItem `json:"items"`

	// TotalCount is the number of items returned.
	TotalCount int `json:"total_count"`

	// SourcesSearched lists connectors that completed without error.
	SourcesSearched []string `json:"sources_searched"`

	// SourcesFailed lists connectors that errored or missed the deadline.
	SourcesFailed []string `json:"sources_failed"`

	// SourceErrors explains each entry in SourcesFailed.
	SourceErrors map[string]SourceError `json:"source_errors,omitempty"`

	// ItemsBySource counts items per dispatched connector, failed ones included as 0.
	ItemsBySource map[string]int `json:"items_by_source"`

	// SearchTimeMS is the wall-clock time from call start to aggregation.
	SearchTimeMS int64 `json:"search_time_ms"`

	// Cached is always false; results are never cached.
	Cached bool `json:"cached"`
}

// SearchTime returns SearchTimeMS as a duration.
func (r *ContentSearchResult) SearchTime() time.Duration {
	return time.Duration(r.SearchTimeMS) * time.Millisecond
}

// Failed reports whether the connector is listed as failed.
func (r *ContentSearchResult) Failed(connectorID string) bool {
	_, ok := r.SourceErrors[connectorID]
	return ok
}
