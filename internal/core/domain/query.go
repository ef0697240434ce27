package domain

import "time"

// SearchOptions configures a single connector search.
type SearchOptions struct {
	// ContentType restricts results to one type. Empty means any.
	ContentType ContentType

	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int

	// Extra carries connector-specific parameters.
	Extra map[string]string
}

// LocationQuery asks for content near a point.
type LocationQuery struct {
	Lat         float64
	Lon         float64
	RadiusKM    float64
	ContentType ContentType
	Limit       int
}

// PeriodQuery asks for content dated within a year range. Negative years are BCE.
type PeriodQuery struct {
	StartYear int
	EndYear   int
	Culture   string
	Limit     int
}

// EmpireQuery asks for content about an empire or one of its periods.
type EmpireQuery struct {
	EmpireName  string
	PeriodName  string
	ContentType ContentType
	Limit       int
}

// SiteQuery asks for content about an archaeological site.
type SiteQuery struct {
	SiteName    string
	Location    string
	Lat         *float64
	Lon         *float64
	ContentType ContentType
	Limit       int
}

// Dispatch scopes a fan-out: which connectors to ask and for how long.
type Dispatch struct {
	// Sources lists explicit connector IDs. Unavailable connectors may be
	// requested explicitly.
	Sources []string

	// ContentTypes selects connectors whose declared types intersect these.
	// Ignored when Sources is set.
	ContentTypes []ContentType

	// Timeout bounds the whole fan-out. Zero uses the registry default.
	Timeout time.Duration
}

// SearchRequest is a registry-wide text search.
type SearchRequest struct {
	Dispatch

	Query          string
	LimitPerSource int
	Offset         int
	Extra          map[string]string
}

// LocationRequest is a registry-wide location search.
type LocationRequest struct {
	Dispatch

	Lat            float64
	Lon            float64
	RadiusKM       float64
	LimitPerSource int
}

// PeriodRequest is a registry-wide date-range search.
type PeriodRequest struct {
	Dispatch

	StartYear      int
	EndYear        int
	Culture        string
	LimitPerSource int
}

// SiteRequest is a registry-wide site search.
type SiteRequest struct {
	Dispatch

	SiteName       string
	Location       string
	Lat            *float64
	Lon            *float64
	LimitPerSource int
}

// EmpireRequest is a registry-wide empire search.
type EmpireRequest struct {
	Dispatch

	EmpireName     string
	PeriodName     string
	LimitPerSource int
}

// TestQuery is one canned query of the live-behaviour harness.
type TestQuery struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// CannedTestQueries returns the fixed harness table. The set is stable
// across runs so results stay comparable over time.
func CannedTestQueries() []TestQuery {
	return []TestQuery{
		{ID: "machu_picchu", Query: "Machu Picchu"},
		{ID: "stonehenge", Query: "Stonehenge"},
		{ID: "roman_empire", Query: "Roman Empire"},
	}
}
