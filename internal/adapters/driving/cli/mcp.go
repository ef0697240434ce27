package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/arkeo/internal/adapters/driving/mcp"
	"github.com/custodia-labs/arkeo/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can run
federated searches and inspect connector health.

By default, the server communicates over stdio using JSON-RPC.

Use --port to start an HTTP server instead. In HTTP mode Prometheus
metrics are served at /metrics on the same port. In stdio mode use
--metrics-addr (or metrics.addr in config.toml) to expose them.

Examples:
  # Stdio mode (default)
  arkeo mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  arkeo mcp serve --port 8080

  # Stdio with metrics on a side port
  arkeo mcp serve --metrics-addr :9464

Desktop client configuration:
  {
    "mcpServers": {
      "arkeo": {
        "command": "/path/to/arkeo",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("metrics-addr", "", "serve /metrics on this address in stdio mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("getting metrics-addr flag: %w", err)
	}
	if metricsAddr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			metricsAddr = settings.Metrics.Addr
		}
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Registry: registry,
		Metrics:  metricsHandler,
	})
	if err != nil {
		return err
	}

	// The server goroutine cancels the rest when it returns.
	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(runCtx)

	if watchConfig != nil {
		g.Go(func() error {
			err := watchConfig(ctx, func() {
				if err := reloadAPIKeys(); err != nil {
					logger.Warn("reloading API keys: %v", err)
					return
				}
				logger.Info("configuration reloaded")
			})
			if err != nil {
				logger.Warn("config watch stopped: %v", err)
			}
			return nil
		})
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		g.Go(func() error {
			defer cancel()
			return server.RunHTTP(ctx, addr)
		})
		return g.Wait()
	}

	if metricsAddr != "" && metricsHandler != nil {
		logger.Info("metrics listening on %s", metricsAddr)
		g.Go(func() error { return mcp.ServeMetrics(ctx, metricsAddr, metricsHandler) })
	}
	g.Go(func() error {
		defer cancel()
		return server.Run(ctx)
	})
	return g.Wait()
}
