// Package cli provides the arkeo command-line interface.
package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/ports/driving"
	"github.com/custodia-labs/arkeo/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services wired by Configure.
var (
	registry        driving.Registry
	settingsService driving.SettingsService
	metricsHandler  http.Handler
	watchConfig     func(ctx context.Context, onChange func()) error
)

var rootCmd = &cobra.Command{
	Use:   "arkeo",
	Short: "Federated search over archaeological collections",
	Long: `arkeo searches museums, archives, gazetteers and scholarly indexes in
parallel and merges the results into one ranked list.

Connectors that fail or miss the deadline are reported alongside the
results instead of failing the whole search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log connector activity to stderr")
}

// Deps are the services the commands drive.
type Deps struct {
	Registry driving.Registry
	Settings driving.SettingsService

	// Metrics serves Prometheus metrics. Optional.
	Metrics http.Handler

	// WatchConfig reports configuration file changes. Optional.
	WatchConfig func(ctx context.Context, onChange func()) error
}

// Configure wires the services used by every command.
func Configure(d Deps) {
	registry = d.Registry
	settingsService = d.Settings
	metricsHandler = d.Metrics
	watchConfig = d.WatchConfig
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
