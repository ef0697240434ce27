package mcp

import (
	"context"
	"iter"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
)

// mockRegistry is a mock implementation of driving.Registry.
type mockRegistry struct {
	sources  []domain.SourceInfo
	result   *domain.ContentSearchResult
	item     *domain.ContentItem
	statuses []domain.ConnectorStatus
	err      error

	lastSearch   domain.SearchRequest
	lastLocation domain.LocationRequest
	lastPeriod   domain.PeriodRequest
	lastSite     domain.SiteRequest
	lastEmpire   domain.EmpireRequest
	lastItem     [2]string
	checkedAll   bool
	ranTests     bool
	checkedOne   string
}

var _ driving.Registry = (*mockRegistry)(nil)

func (m *mockRegistry) Sources() []domain.SourceInfo { return m.sources }

func (m *mockRegistry) Source(id string) (domain.SourceInfo, error) {
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.SourceInfo{}, domain.ErrUnknownConnector
}

func (m *mockRegistry) ConnectorsFor(t domain.ContentType) []domain.SourceInfo {
	var out []domain.SourceInfo
	for i := range m.sources {
		if m.sources[i].Provides(t) {
			out = append(out, m.sources[i])
		}
	}
	return out
}

func (m *mockRegistry) SetAPIKeys(map[string]string) {}

func (m *mockRegistry) SearchAll(_ context.Context, req domain.SearchRequest) (*domain.ContentSearchResult, error) {
	m.lastSearch = req
	return m.result, m.err
}

func (m *mockRegistry) GetByLocationAll(_ context.Context, req domain.LocationRequest) (*domain.ContentSearchResult, error) {
	m.lastLocation = req
	return m.result, m.err
}

func (m *mockRegistry) GetByPeriodAll(_ context.Context, req domain.PeriodRequest) (*domain.ContentSearchResult, error) {
	m.lastPeriod = req
	return m.result, m.err
}

func (m *mockRegistry) GetForSite(_ context.Context, req domain.SiteRequest) (*domain.ContentSearchResult, error) {
	m.lastSite = req
	return m.result, m.err
}

func (m *mockRegistry) GetForEmpire(_ context.Context, req domain.EmpireRequest) (*domain.ContentSearchResult, error) {
	m.lastEmpire = req
	return m.result, m.err
}

func (m *mockRegistry) GetItem(_ context.Context, connectorID, itemID string) (*domain.ContentItem, error) {
	m.lastItem = [2]string{connectorID, itemID}
	return m.item, m.err
}

func (m *mockRegistry) Harvest(context.Context, string, int) (iter.Seq2[domain.ContentItem, error], error) {
	return nil, domain.ErrNotImplemented
}

func (m *mockRegistry) CheckConnectorStatus(_ context.Context, id string) (domain.ConnectorStatus, error) {
	m.checkedOne = id
	if m.err != nil {
		return domain.ConnectorStatus{}, m.err
	}
	for _, st := range m.statuses {
		if st.ConnectorID == id {
			return st, nil
		}
	}
	return domain.ConnectorStatus{}, domain.ErrUnknownConnector
}

func (m *mockRegistry) CheckAllStatus(_ context.Context, runTests bool) ([]domain.ConnectorStatus, error) {
	m.checkedAll = true
	m.ranTests = runTests
	return m.statuses, m.err
}

func (m *mockRegistry) CachedStatus() []domain.ConnectorStatus { return m.statuses }

func (m *mockRegistry) StatusHistory(context.Context, string, int) ([]domain.HealthCheckResult, error) {
	return nil, m.err
}

func (m *mockRegistry) Close() error { return nil }

func testSources() []domain.SourceInfo {
	return []domain.SourceInfo{
		{
			ID:           "metmuseum",
			Name:         "The Metropolitan Museum of Art",
			ContentTypes: []domain.ContentType{domain.ContentTypeArtifact},
			Protocol:     domain.ProtocolREST,
			Available:    true,
		},
		{
			ID:           "wikidata",
			Name:         "Wikidata",
			ContentTypes: []domain.ContentType{domain.ContentTypePlace},
			Protocol:     domain.ProtocolSPARQL,
			Available:    true,
		},
		{
			ID:                "britishmuseum",
			Name:              "British Museum",
			ContentTypes:      []domain.ContentType{domain.ContentTypeArtifact},
			Protocol:          domain.ProtocolHTML,
			UnavailableReason: "blocks automated clients",
		},
	}
}
