// Command arkeo searches archaeological collections across many sources.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/arkeo/internal/adapters/driven/config/file"
	"github.com/custodia-labs/arkeo/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arkeo/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/arkeo/internal/adapters/driving/cli"
	"github.com/custodia-labs/arkeo/internal/connectors"
	"github.com/custodia-labs/arkeo/internal/core/domain"
	"github.com/custodia-labs/arkeo/internal/core/ports/driven"
	"github.com/custodia-labs/arkeo/internal/core/services"
	"github.com/custodia-labs/arkeo/internal/logger"
	"github.com/custodia-labs/arkeo/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// historyRetention bounds how long persisted health checks are kept.
const historyRetention = 30 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	home := os.Getenv("ARKEO_HOME")
	if home == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return err
		}
		home = dir
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	history, err := openHistory(settings.Storage.StatusHistory, filepath.Join(home, "data"))
	if err != nil {
		logger.Warn("status history disabled: %v", err)
	}

	m := metrics.New()
	opts := []services.RegistryOption{
		services.WithMetrics(m),
		services.WithSearchSettings(settings.Search),
		services.WithHealthSettings(settings.Health),
	}
	if history != nil {
		opts = append(opts, services.WithHistory(history))
	}

	registry := services.NewRegistry(opts...)
	if err := registry.RegisterAll(connectors.Builtin()); err != nil {
		return fmt.Errorf("registering connectors: %w", err)
	}
	registry.SetAPIKeys(settings.APIKeys)

	cli.SetVersion(version)
	cli.Configure(cli.Deps{
		Registry:    registry,
		Settings:    settingsService,
		Metrics:     m.Handler(),
		WatchConfig: configStore.Watch,
	})

	runErr := cli.Execute()

	closeErr := registry.Close()
	if history != nil {
		closeErr = errors.Join(closeErr, history.Close())
	}
	_ = logger.Sync()

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// openHistory opens the configured status history backend. It returns nil
// for the "none" backend.
func openHistory(backend domain.HistoryBackend, dataDir string) (driven.StatusHistoryStore, error) {
	switch backend {
	case domain.HistoryNone:
		return nil, nil
	case domain.HistorySQLite:
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if n, err := store.Prune(ctx, time.Now().Add(-historyRetention)); err != nil {
			logger.Warn("pruning status history: %v", err)
		} else if n > 0 {
			logger.Debug("pruned %d status history rows", n)
		}
		return store, nil
	default:
		return memory.NewStatusHistoryStore(memory.DefaultHistoryCapacity), nil
	}
}
