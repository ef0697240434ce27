package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchTimeout     = "search.timeout_seconds"
	keySearchLimit       = "search.limit_per_source"
	keyHealthTimeout     = "health.timeout_seconds"
	keyHealthSlowTimeout = "health.slow_timeout_seconds"
	keyHealthWarnMS      = "health.warn_threshold_ms"
	keyHealthConcurrency = "health.test_concurrency"
	keyHealthTestDelay   = "health.test_delay_ms"
	keyStatusHistory     = "storage.status_history"
	keyMetricsAddr       = "metrics.addr"
	keyAPIKeyPrefix      = "api_keys."
)

// maxSearchTimeout caps the configurable fan-out timeout, in seconds.
const maxSearchTimeout = 300

var positiveIntKeys = []string{
	keySearchTimeout,
	keySearchLimit,
	keyHealthTimeout,
	keyHealthSlowTimeout,
	keyHealthWarnMS,
	keyHealthConcurrency,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			TimeoutSeconds: s.getInt(keySearchTimeout, defaults.Search.TimeoutSeconds),
			LimitPerSource: s.getInt(keySearchLimit, defaults.Search.LimitPerSource),
		},
		Health: domain.HealthSettings{
			TimeoutSeconds:     s.getInt(keyHealthTimeout, defaults.Health.TimeoutSeconds),
			SlowTimeoutSeconds: s.getInt(keyHealthSlowTimeout, defaults.Health.SlowTimeoutSeconds),
			WarnThresholdMS:    s.getInt(keyHealthWarnMS, defaults.Health.WarnThresholdMS),
			TestConcurrency:    s.getInt(keyHealthConcurrency, defaults.Health.TestConcurrency),
			TestDelayMS:        s.getInt(keyHealthTestDelay, defaults.Health.TestDelayMS),
		},
		APIKeys: s.apiKeys(),
		Storage: domain.StorageSettings{
			StatusHistory: s.getHistoryBackend(defaults.Storage.StatusHistory),
		},
		Metrics: domain.MetricsSettings{
			Addr: s.configStore.GetString(keyMetricsAddr),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	ints := []struct {
		key string
		val int
	}{
		{keySearchTimeout, settings.Search.TimeoutSeconds},
		{keySearchLimit, settings.Search.LimitPerSource},
		{keyHealthTimeout, settings.Health.TimeoutSeconds},
		{keyHealthSlowTimeout, settings.Health.SlowTimeoutSeconds},
		{keyHealthWarnMS, settings.Health.WarnThresholdMS},
		{keyHealthConcurrency, settings.Health.TestConcurrency},
		{keyHealthTestDelay, settings.Health.TestDelayMS},
	}
	for _, kv := range ints {
		if err := s.configStore.Set(kv.key, kv.val); err != nil {
			return fmt.Errorf("save %s: %w", kv.key, err)
		}
	}

	if err := s.configStore.Set(keyStatusHistory, settings.Storage.StatusHistory.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyStatusHistory, err)
	}
	if settings.Metrics.Addr != "" {
		if err := s.configStore.Set(keyMetricsAddr, settings.Metrics.Addr); err != nil {
			return fmt.Errorf("save %s: %w", keyMetricsAddr, err)
		}
	}

	for id, key := range settings.APIKeys {
		if err := s.SetAPIKey(id, key); err != nil {
			return err
		}
	}

	return nil
}

// SetAPIKey stores the API key for a connector. An empty key removes it.
func (s *SettingsService) SetAPIKey(connectorID, key string) error {
	connectorID = strings.TrimSpace(connectorID)
	if connectorID == "" || strings.Contains(connectorID, ".") {
		return fmt.Errorf("%w: connector id %q", domain.ErrInvalidInput, connectorID)
	}

	if key == "" {
		if err := s.configStore.Delete(keyAPIKeyPrefix + connectorID); err != nil {
			return fmt.Errorf("remove api key for %s: %w", connectorID, err)
		}
		return nil
	}
	if err := s.configStore.Set(keyAPIKeyPrefix+connectorID, key); err != nil {
		return fmt.Errorf("save api key for %s: %w", connectorID, err)
	}
	return nil
}

// SetSearchTimeout updates the default fan-out timeout.
func (s *SettingsService) SetSearchTimeout(seconds int) error {
	if seconds <= 0 || seconds > maxSearchTimeout {
		return fmt.Errorf("%w: search timeout must be between 1 and %d seconds", domain.ErrInvalidInput, maxSearchTimeout)
	}
	return s.configStore.Set(keySearchTimeout, seconds)
}

// SetHistoryBackend selects where status history is kept.
func (s *SettingsService) SetHistoryBackend(backend domain.HistoryBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: history backend %q", domain.ErrInvalidInput, backend)
	}
	return s.configStore.Set(keyStatusHistory, backend.String())
}

// Validate checks that settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range positiveIntKeys {
		if _, exists := s.configStore.Get(key); exists && s.configStore.GetInt(key) <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive integer", key))
		}
	}
	if settings.Health.SlowTimeoutSeconds < settings.Health.TimeoutSeconds {
		errs = append(errs, fmt.Errorf("%s must not be shorter than %s", keyHealthSlowTimeout, keyHealthTimeout))
	}
	if raw := s.configStore.GetString(keyStatusHistory); raw != "" && !domain.HistoryBackend(raw).IsValid() {
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", keyStatusHistory, raw))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func (s *SettingsService) apiKeys() map[string]string {
	keys := make(map[string]string)
	for _, k := range s.configStore.Keys(keyAPIKeyPrefix) {
		if v := s.configStore.GetString(k); v != "" {
			keys[strings.TrimPrefix(k, keyAPIKeyPrefix)] = v
		}
	}
	return keys
}

// Helper methods for getting config values with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getHistoryBackend(defaultVal domain.HistoryBackend) domain.HistoryBackend {
	val := s.configStore.GetString(keyStatusHistory)
	if val == "" {
		return defaultVal
	}
	backend := domain.HistoryBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
