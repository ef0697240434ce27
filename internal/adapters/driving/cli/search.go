package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var (
	searchFlags  dispatchFlags
	searchOffset int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every connector for a query",
	Long: `Runs a free-text search against every available connector in parallel
and merges the results by relevance.

Use --source to name connectors explicitly, or --type to query only the
connectors that offer a content type (artifact, photo, map, paper, ...).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var errRegistryNotConfigured = errors.New("registry not configured")

func init() {
	searchFlags.bind(searchCmd)
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "items to skip per connector")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}

	d, err := searchFlags.dispatch()
	if err != nil {
		return err
	}

	res, err := registry.SearchAll(cmd.Context(), domain.SearchRequest{
		Dispatch:       d,
		Query:          strings.Join(args, " "),
		LimitPerSource: searchFlags.limit,
		Offset:         searchOffset,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return outputResult(cmd, res, searchFlags.json)
}
