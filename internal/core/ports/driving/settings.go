package driving

import "github.com/custodia-labs/arkeo/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetAPIKey stores the API key for a connector. An empty key removes it.
	SetAPIKey(connectorID, key string) error

	// SetSearchTimeout updates the default fan-out timeout.
	SetSearchTimeout(seconds int) error

	// SetHistoryBackend selects where status history is kept.
	SetHistoryBackend(backend domain.HistoryBackend) error

	// Validate checks that settings are internally consistent.
	Validate() error
}
