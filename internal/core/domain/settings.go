package domain

import "time"

const unknownDescription = "Unknown"

// HistoryBackend selects where connector status history is kept.
type HistoryBackend string

// Available history backends.
const (
	// HistoryNone keeps no history beyond the registry's live status cache.
	HistoryNone HistoryBackend = "none"

	// HistoryMemory keeps history in process memory.
	HistoryMemory HistoryBackend = "memory"

	// HistorySQLite persists history in ~/.arkeo/data/status.db.
	HistorySQLite HistoryBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b HistoryBackend) IsValid() bool {
	switch b {
	case HistoryNone, HistoryMemory, HistorySQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b HistoryBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b HistoryBackend) Description() string {
	switch b {
	case HistoryNone:
		return "None (live status only)"
	case HistoryMemory:
		return "Memory (lost on exit)"
	case HistorySQLite:
		return "SQLite (persisted)"
	default:
		return unknownDescription
	}
}

// SearchSettings holds fan-out defaults.
type SearchSettings struct {
	// TimeoutSeconds bounds each fan-out.
	TimeoutSeconds int

	// LimitPerSource caps items requested from each connector.
	LimitPerSource int
}

// Timeout returns TimeoutSeconds as a duration.
func (s SearchSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// HealthSettings holds health-check and harness configuration.
type HealthSettings struct {
	// TimeoutSeconds bounds a health check on a regular endpoint.
	TimeoutSeconds int

	// SlowTimeoutSeconds bounds a health check on a known-slow endpoint (SPARQL).
	SlowTimeoutSeconds int

	// WarnThresholdMS downgrades a slow but successful check to warning.
	WarnThresholdMS int

	// TestConcurrency caps simultaneous canned-query runs.
	TestConcurrency int

	// TestDelayMS is the pause between canned queries against one connector.
	TestDelayMS int
}

// StorageSettings holds optional persistence configuration.
type StorageSettings struct {
	// StatusHistory selects the status history backend.
	StatusHistory HistoryBackend
}

// MetricsSettings holds Prometheus exposition configuration.
type MetricsSettings struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds fan-out defaults.
	Search SearchSettings

	// Health holds health-check settings.
	Health HealthSettings

	// APIKeys maps connector IDs to their secrets.
	APIKeys map[string]string

	// Storage holds persistence settings.
	Storage StorageSettings

	// Metrics holds metrics exposition settings.
	Metrics MetricsSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			TimeoutSeconds: 30,
			LimitPerSource: 20,
		},
		Health: HealthSettings{
			TimeoutSeconds:     10,
			SlowTimeoutSeconds: 30,
			WarnThresholdMS:    5000,
			TestConcurrency:    5,
			TestDelayMS:        500,
		},
		APIKeys: map[string]string{},
		Storage: StorageSettings{
			StatusHistory: HistoryMemory,
		},
	}
}

// AllHistoryBackends returns every history backend.
func AllHistoryBackends() []HistoryBackend {
	return []HistoryBackend{
		HistoryNone,
		HistoryMemory,
		HistorySQLite,
	}
}
