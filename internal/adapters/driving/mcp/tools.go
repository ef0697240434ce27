package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

// DispatchInput scopes a fan-out. Embedded in every search tool input.
type DispatchInput struct {
	Sources        []string `json:"sources,omitempty" jsonschema:"connector ids to query; default is every available connector"`
	ContentTypes   []string `json:"content_types,omitempty" jsonschema:"only query connectors offering these content types"`
	Limit          int      `json:"limit,omitempty" jsonschema:"maximum items per connector (default 20)"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" jsonschema:"overall deadline in seconds (default 30)"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	DispatchInput
	Query  string `json:"query" jsonschema:"free-text query, e.g. a site, object or culture"`
	Offset int    `json:"offset,omitempty" jsonschema:"items to skip per connector"`
}

// NearbyInput is the input schema for the search_nearby tool.
type NearbyInput struct {
	DispatchInput
	Lat      float64 `json:"lat" jsonschema:"latitude in decimal degrees"`
	Lon      float64 `json:"lon" jsonschema:"longitude in decimal degrees"`
	RadiusKM float64 `json:"radius_km,omitempty" jsonschema:"search radius in kilometres (default 10)"`
}

// SiteInput is the input schema for the search_site tool.
type SiteInput struct {
	DispatchInput
	SiteName string   `json:"site_name" jsonschema:"archaeological site name, e.g. Knossos"`
	Location string   `json:"location,omitempty" jsonschema:"region or country to disambiguate the site"`
	Lat      *float64 `json:"lat,omitempty" jsonschema:"site latitude when known"`
	Lon      *float64 `json:"lon,omitempty" jsonschema:"site longitude when known"`
}

// EmpireInput is the input schema for the search_empire tool.
type EmpireInput struct {
	DispatchInput
	EmpireName string `json:"empire_name" jsonschema:"empire or civilisation, e.g. Roman Empire"`
	PeriodName string `json:"period_name,omitempty" jsonschema:"sub-period, e.g. Flavian"`
}

// PeriodInput is the input schema for the search_period tool.
type PeriodInput struct {
	DispatchInput
	StartYear int    `json:"start_year" jsonschema:"first year; negative for BCE"`
	EndYear   int    `json:"end_year" jsonschema:"last year; negative for BCE"`
	Culture   string `json:"culture,omitempty" jsonschema:"culture filter, e.g. Minoan"`
}

// ItemOutput is the compact view of a content item.
type ItemOutput struct {
	ID             string   `json:"id"`
	Source         string   `json:"source"`
	ContentType    string   `json:"content_type"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Description    string   `json:"description,omitempty"`
	ThumbnailURL   string   `json:"thumbnail_url,omitempty"`
	Creator        string   `json:"creator,omitempty"`
	Date           string   `json:"date,omitempty"`
	Culture        string   `json:"culture,omitempty"`
	Place          string   `json:"place,omitempty"`
	Country        string   `json:"country,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	License        string   `json:"license,omitempty"`
	Museum         string   `json:"museum,omitempty"`
	RelevanceScore int      `json:"relevance_score"`
}

// SourceErrorOutput explains why a connector failed.
type SourceErrorOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SearchOutput is the output schema shared by every search tool.
type SearchOutput struct {
	SearchID        string                       `json:"search_id"`
	Query           string                       `json:"query"`
	Items           []ItemOutput                 `json:"items"`
	TotalCount      int                          `json:"total_count"`
	SourcesSearched []string                     `json:"sources_searched"`
	SourcesFailed   []string                     `json:"sources_failed"`
	SourceErrors    map[string]SourceErrorOutput `json:"source_errors,omitempty"`
	ItemsBySource   map[string]int               `json:"items_by_source"`
	SearchTimeMS    int64                        `json:"search_time_ms"`
}

// GetItemInput is the input schema for the get_item tool.
type GetItemInput struct {
	Source string `json:"source" jsonschema:"connector id, e.g. metmuseum"`
	ID     string `json:"id" jsonschema:"item id as returned by a search, e.g. metmuseum:436535"`
}

// ListSourcesInput is the input schema for the list_sources tool.
type ListSourcesInput struct {
	ContentType string `json:"content_type,omitempty" jsonschema:"only list connectors offering this content type"`
}

// SourceOutput describes one connector.
type SourceOutput struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	ContentTypes      []string `json:"content_types"`
	Protocol          string   `json:"protocol"`
	RequiresAuth      bool     `json:"requires_auth"`
	Available         bool     `json:"available"`
	UnavailableReason string   `json:"unavailable_reason,omitempty"`
}

// ListSourcesOutput is the output schema for the list_sources tool.
type ListSourcesOutput struct {
	Sources []SourceOutput `json:"sources"`
	Count   int            `json:"count"`
}

// StatusInput is the input schema for the connector_status tool.
type StatusInput struct {
	ID       string `json:"id,omitempty" jsonschema:"connector id; default is every connector"`
	Check    bool   `json:"check,omitempty" jsonschema:"run live health checks instead of returning cached status"`
	RunTests bool   `json:"run_tests,omitempty" jsonschema:"also run the canned test queries (implies check)"`
}

// StatusOutput describes one connector's health.
type StatusOutput struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	ResponseTimeMS int64  `json:"response_time_ms"`
	Message        string `json:"message,omitempty"`
	LastChecked    string `json:"last_checked,omitempty"`
	TestsPassed    int    `json:"tests_passed"`
	TestsRun       int    `json:"tests_run"`
}

// ConnectorStatusOutput is the output schema for the connector_status tool.
type ConnectorStatusOutput struct {
	Statuses []StatusOutput `json:"statuses"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search museums, archives, gazetteers and scholarship for archaeological content",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_nearby",
		Description: "Find archaeological content near a point",
	}, s.handleNearby)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_site",
		Description: "Find content about a named archaeological site",
	}, s.handleSite)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_empire",
		Description: "Find content about an empire or civilisation",
	}, s.handleEmpire)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_period",
		Description: "Find content dated within a year range",
	}, s.handlePeriod)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_item",
		Description: "Fetch one item from one connector",
	}, s.handleGetItem)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the registered content connectors",
	}, s.handleListSources)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "connector_status",
		Description: "Report connector health, optionally running live checks",
	}, s.handleConnectorStatus)
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	d, err := in.dispatch()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	res, err := s.ports.Registry.SearchAll(ctx, domain.SearchRequest{
		Dispatch:       d,
		Query:          in.Query,
		LimitPerSource: in.Limit,
		Offset:         in.Offset,
	})
	return searchResult(res, err)
}

func (s *Server) handleNearby(ctx context.Context, _ *mcp.CallToolRequest, in NearbyInput) (*mcp.CallToolResult, SearchOutput, error) {
	d, err := in.dispatch()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	res, err := s.ports.Registry.GetByLocationAll(ctx, domain.LocationRequest{
		Dispatch:       d,
		Lat:            in.Lat,
		Lon:            in.Lon,
		RadiusKM:       in.RadiusKM,
		LimitPerSource: in.Limit,
	})
	return searchResult(res, err)
}

func (s *Server) handleSite(ctx context.Context, _ *mcp.CallToolRequest, in SiteInput) (*mcp.CallToolResult, SearchOutput, error) {
	d, err := in.dispatch()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	res, err := s.ports.Registry.GetForSite(ctx, domain.SiteRequest{
		Dispatch:       d,
		SiteName:       in.SiteName,
		Location:       in.Location,
		Lat:            in.Lat,
		Lon:            in.Lon,
		LimitPerSource: in.Limit,
	})
	return searchResult(res, err)
}

func (s *Server) handleEmpire(ctx context.Context, _ *mcp.CallToolRequest, in EmpireInput) (*mcp.CallToolResult, SearchOutput, error) {
	d, err := in.dispatch()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	res, err := s.ports.Registry.GetForEmpire(ctx, domain.EmpireRequest{
		Dispatch:       d,
		EmpireName:     in.EmpireName,
		PeriodName:     in.PeriodName,
		LimitPerSource: in.Limit,
	})
	return searchResult(res, err)
}

func (s *Server) handlePeriod(ctx context.Context, _ *mcp.CallToolRequest, in PeriodInput) (*mcp.CallToolResult, SearchOutput, error) {
	d, err := in.dispatch()
	if err != nil {
		return nil, SearchOutput{}, err
	}
	res, err := s.ports.Registry.GetByPeriodAll(ctx, domain.PeriodRequest{
		Dispatch:       d,
		StartYear:      in.StartYear,
		EndYear:        in.EndYear,
		Culture:        in.Culture,
		LimitPerSource: in.Limit,
	})
	return searchResult(res, err)
}

func (s *Server) handleGetItem(ctx context.Context, _ *mcp.CallToolRequest, in GetItemInput) (*mcp.CallToolResult, ItemOutput, error) {
	item, err := s.ports.Registry.GetItem(ctx, in.Source, in.ID)
	if err != nil {
		return nil, ItemOutput{}, err
	}
	return nil, toItemOutput(item), nil
}

func (s *Server) handleListSources(_ context.Context, _ *mcp.CallToolRequest, in ListSourcesInput) (*mcp.CallToolResult, ListSourcesOutput, error) {
	infos := s.ports.Registry.Sources()
	if in.ContentType != "" {
		t, err := domain.ParseContentType(in.ContentType)
		if err != nil {
			return nil, ListSourcesOutput{}, err
		}
		infos = s.ports.Registry.ConnectorsFor(t)
	}

	out := ListSourcesOutput{Sources: make([]SourceOutput, 0, len(infos)), Count: len(infos)}
	for i := range infos {
		out.Sources = append(out.Sources, toSourceOutput(&infos[i]))
	}
	return nil, out, nil
}

func (s *Server) handleConnectorStatus(ctx context.Context, _ *mcp.CallToolRequest, in StatusInput) (*mcp.CallToolResult, ConnectorStatusOutput, error) {
	var statuses []domain.ConnectorStatus

	switch {
	case in.ID != "" && (in.Check || in.RunTests):
		status, err := s.ports.Registry.CheckConnectorStatus(ctx, in.ID)
		if err != nil {
			return nil, ConnectorStatusOutput{}, err
		}
		statuses = []domain.ConnectorStatus{status}
	case in.Check || in.RunTests:
		all, err := s.ports.Registry.CheckAllStatus(ctx, in.RunTests)
		if err != nil {
			return nil, ConnectorStatusOutput{}, err
		}
		statuses = all
	default:
		statuses = s.ports.Registry.CachedStatus()
	}

	out := ConnectorStatusOutput{Statuses: make([]StatusOutput, 0, len(statuses))}
	for i := range statuses {
		if in.ID != "" && statuses[i].ConnectorID != in.ID {
			continue
		}
		out.Statuses = append(out.Statuses, toStatusOutput(&statuses[i]))
	}
	if in.ID != "" && len(out.Statuses) == 0 {
		if _, err := s.ports.Registry.Source(in.ID); err != nil {
			return nil, ConnectorStatusOutput{}, err
		}
	}
	return nil, out, nil
}

func (in DispatchInput) dispatch() (domain.Dispatch, error) {
	d := domain.Dispatch{
		Sources: in.Sources,
		Timeout: time.Duration(in.TimeoutSeconds) * time.Second,
	}
	for _, raw := range in.ContentTypes {
		t, err := domain.ParseContentType(raw)
		if err != nil {
			return domain.Dispatch{}, err
		}
		d.ContentTypes = append(d.ContentTypes, t)
	}
	return d, nil
}

func searchResult(res *domain.ContentSearchResult, err error) (*mcp.CallToolResult, SearchOutput, error) {
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(res), nil
}

func toSearchOutput(res *domain.ContentSearchResult) SearchOutput {
	out := SearchOutput{
		SearchID:        res.SearchID,
		Query:           res.Query,
		Items:           make([]ItemOutput, 0, len(res.Items)),
		TotalCount:      res.TotalCount,
		SourcesSearched: res.SourcesSearched,
		SourcesFailed:   res.SourcesFailed,
		ItemsBySource:   res.ItemsBySource,
		SearchTimeMS:    res.SearchTimeMS,
	}
	for i := range res.Items {
		out.Items = append(out.Items, toItemOutput(&res.Items[i]))
	}
	if len(res.SourceErrors) > 0 {
		out.SourceErrors = make(map[string]SourceErrorOutput, len(res.SourceErrors))
		for id, e := range res.SourceErrors {
			out.SourceErrors[id] = SourceErrorOutput{Kind: string(e.Kind), Message: e.Message}
		}
	}
	return out
}

func toItemOutput(item *domain.ContentItem) ItemOutput {
	return ItemOutput{
		ID:             item.ID,
		Source:         item.Source,
		ContentType:    item.ContentType.String(),
		Title:          item.Title,
		URL:            item.URL,
		Description:    item.Description,
		ThumbnailURL:   item.ThumbnailURL,
		Creator:        item.Creator,
		Date:           item.Date,
		Culture:        item.Culture,
		Place:          item.Place,
		Country:        item.Country,
		Lat:            item.Lat,
		Lon:            item.Lon,
		License:        item.License,
		Museum:         item.Museum,
		RelevanceScore: item.RelevanceScore,
	}
}

func toSourceOutput(info *domain.SourceInfo) SourceOutput {
	types := make([]string, len(info.ContentTypes))
	for i, t := range info.ContentTypes {
		types[i] = t.String()
	}
	return SourceOutput{
		ID:                info.ID,
		Name:              info.Name,
		Description:       info.Description,
		ContentTypes:      types,
		Protocol:          string(info.Protocol),
		RequiresAuth:      info.RequiresAuth,
		Available:         info.Available,
		UnavailableReason: info.UnavailableReason,
	}
}

func toStatusOutput(st *domain.ConnectorStatus) StatusOutput {
	out := StatusOutput{
		ID:             st.ConnectorID,
		Name:           st.Name,
		Category:       string(st.Category),
		Status:         string(st.Status),
		ResponseTimeMS: st.ResponseTimeMS,
		Message:        st.Message,
		TestsRun:       len(st.TestResults),
	}
	if st.LastChecked != nil {
		out.LastChecked = st.LastChecked.Format(time.RFC3339)
	}
	for i := range st.TestResults {
		if st.TestResults[i].Passed() {
			out.TestsPassed++
		}
	}
	return out
}
