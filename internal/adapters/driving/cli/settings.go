package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var errSettingsNotConfigured = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure search defaults, health checks, API keys and storage.

Settings live in ~/.arkeo/config.toml. Use subcommands to change them.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "set-key [connector] [key]",
	Short: "Set or clear a connector API key",
	Long: `Stores the API key for a connector. When the key is omitted it is read
from the terminal without echo. An empty key removes the stored key.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsKey,
}

var settingsTimeoutCmd = &cobra.Command{
	Use:   "timeout [seconds]",
	Short: "Set the default search timeout",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsTimeout,
}

var settingsHistoryCmd = &cobra.Command{
	Use:   "history [backend]",
	Short: "Select the status history backend",
	Long: `Selects where connector health checks are recorded.

Available backends:
  none    - Live status only
  memory  - Kept until the process exits
  sqlite  - Persisted in ~/.arkeo/data/status.db`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsHistory,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings for errors",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsTimeoutCmd)
	settingsCmd.AddCommand(settingsHistoryCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Timeout: %ds\n", settings.Search.TimeoutSeconds)
	cmd.Printf("  Limit per source: %d\n", settings.Search.LimitPerSource)
	cmd.Println()

	cmd.Println("[Health]")
	cmd.Printf("  Timeout: %ds (slow endpoints %ds)\n", settings.Health.TimeoutSeconds, settings.Health.SlowTimeoutSeconds)
	cmd.Printf("  Warn threshold: %dms\n", settings.Health.WarnThresholdMS)
	cmd.Printf("  Test concurrency: %d\n", settings.Health.TestConcurrency)
	cmd.Printf("  Test delay: %dms\n", settings.Health.TestDelayMS)
	cmd.Println()

	cmd.Println("[API Keys]")
	for _, id := range keyedConnectors(settings.APIKeys) {
		if key := settings.APIKeys[id]; key != "" {
			cmd.Printf("  %s: %s\n", id, maskAPIKey(key))
		} else {
			cmd.Printf("  %s: (not set)\n", id)
		}
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Status history: %s\n", settings.Storage.StatusHistory.Description())
	cmd.Println()

	cmd.Println("[Metrics]")
	if settings.Metrics.Addr != "" {
		cmd.Printf("  Address: %s\n", settings.Metrics.Addr)
	} else {
		cmd.Println("  Address: (disabled)")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

// keyedConnectors lists connectors that need a key plus any with a stored key.
func keyedConnectors(keys map[string]string) []string {
	var ids []string
	if registry != nil {
		for _, info := range registry.Sources() {
			if info.RequiresAuth {
				ids = append(ids, info.ID)
			}
		}
	}
	for id := range keys {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func runSettingsKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	id := args[0]
	if registry != nil {
		if _, err := registry.Source(id); err != nil {
			return err
		}
	}

	var key string
	if len(args) == 2 {
		key = args[1]
	} else {
		cmd.Printf("API key for %s: ", id)
		key = readPassword()
		cmd.Println()
	}
	key = strings.TrimSpace(key)

	if err := settingsService.SetAPIKey(id, key); err != nil {
		return fmt.Errorf("failed to set API key: %w", err)
	}
	if err := reloadAPIKeys(); err != nil {
		return err
	}

	if key == "" {
		cmd.Printf("API key for %s removed.\n", id)
	} else {
		cmd.Printf("API key for %s set to %s.\n", id, maskAPIKey(key))
	}
	return nil
}

// reloadAPIKeys pushes the stored keys into the registry.
func reloadAPIKeys() error {
	if registry == nil || settingsService == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	registry.SetAPIKeys(settings.APIKeys)
	return nil
}

func runSettingsTimeout(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: timeout must be a whole number of seconds", domain.ErrInvalidInput)
	}
	if err := settingsService.SetSearchTimeout(seconds); err != nil {
		return fmt.Errorf("failed to set timeout: %w", err)
	}

	cmd.Printf("Search timeout set to %ds.\n", seconds)
	return nil
}

func runSettingsHistory(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	backend := domain.HistoryBackend(strings.ToLower(args[0]))
	if err := settingsService.SetHistoryBackend(backend); err != nil {
		return fmt.Errorf("failed to set history backend: %w", err)
	}

	cmd.Printf("Status history: %s\n", backend.Description())
	cmd.Println("The change applies to the next run.")
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Println("Configuration is valid.")
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
