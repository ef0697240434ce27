package cli

import (
	"bytes"
	"context"
	"iter"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/arkeo/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
	"github.com/custodia-labs/arkeo/internal/core/services"
)

// mockRegistry is a mock implementation of driving.Registry.
type mockRegistry struct {
	sources  []domain.SourceInfo
	result   *domain.ContentSearchResult
	item     *domain.ContentItem
	harvest  []domain.ContentItem
	statuses []domain.ConnectorStatus
	history  []domain.HealthCheckResult
	apiKeys  map[string]string
	err      error

	lastSearch   domain.SearchRequest
	lastLocation domain.LocationRequest
	lastPeriod   domain.PeriodRequest
	lastSite     domain.SiteRequest
	lastEmpire   domain.EmpireRequest
	lastHarvest  int
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

func (m *mockRegistry) SetAPIKeys(keys map[string]string) { m.apiKeys = keys }

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

func (m *mockRegistry) GetItem(context.Context, string, string) (*domain.ContentItem, error) {
	return m.item, m.err
}

func (m *mockRegistry) Harvest(_ context.Context, _ string, limit int) (iter.Seq2[domain.ContentItem, error], error) {
	m.lastHarvest = limit
	if m.err != nil {
		return nil, m.err
	}
	return func(yield func(domain.ContentItem, error) bool) {
		for _, item := range m.harvest {
			if !yield(item, nil) {
				return
			}
		}
	}, nil
}

func (m *mockRegistry) CheckConnectorStatus(_ context.Context, id string) (domain.ConnectorStatus, error) {
	m.checkedOne = id
	for _, st := range m.statuses {
		if st.ConnectorID == id {
			return st, m.err
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
	return m.history, m.err
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
			ID:           "europeana",
			Name:         "Europeana",
			ContentTypes: []domain.ContentType{domain.ContentTypeArtifact, domain.ContentTypePhoto},
			Protocol:     domain.ProtocolREST,
			RequiresAuth: true,
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

// useServices swaps the package services for the duration of a test.
func useServices(t *testing.T, reg driving.Registry) driving.SettingsService {
	t.Helper()
	oldRegistry, oldSettings := registry, settingsService
	settings := services.NewSettingsService(memory.NewConfigStore())
	registry, settingsService = reg, settings
	t.Cleanup(func() {
		registry, settingsService = oldRegistry, oldSettings
	})
	return settings
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	defer resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so commands do not leak
// state between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(interface{ Replace([]string) error }); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
