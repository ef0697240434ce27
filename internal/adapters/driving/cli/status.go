package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var (
	statusCheck        bool
	statusTests        bool
	statusHistory      string
	statusHistoryLimit int
	statusJSON         bool
)

var statusCmd = &cobra.Command{
	Use:   "status [connector]",
	Short: "Show connector health",
	Long: `Shows the cached health of every connector, grouped by category.

  --check    run live health checks first
  --tests    also run the canned test queries against healthy connectors
  --history  show recent checks recorded for one connector`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "run live health checks")
	statusCmd.Flags().BoolVar(&statusTests, "tests", false, "run canned test queries (implies --check)")
	statusCmd.Flags().StringVar(&statusHistory, "history", "", "show recorded checks for a connector")
	statusCmd.Flags().IntVar(&statusHistoryLimit, "history-limit", 20, "number of history entries to show")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}
	ctx := cmd.Context()

	if statusHistory != "" {
		return runStatusHistory(cmd, statusHistory)
	}

	var statuses []domain.ConnectorStatus
	switch {
	case len(args) == 1 && (statusCheck || statusTests):
		if statusTests {
			return errors.New("--tests runs against every connector; omit the connector argument")
		}
		st, err := registry.CheckConnectorStatus(ctx, args[0])
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}
		statuses = []domain.ConnectorStatus{st}
	case statusCheck || statusTests:
		all, err := registry.CheckAllStatus(ctx, statusTests)
		if err != nil {
			return fmt.Errorf("status check failed: %w", err)
		}
		statuses = all
	default:
		statuses = registry.CachedStatus()
	}

	if len(args) == 1 {
		if _, err := registry.Source(args[0]); err != nil {
			return err
		}
		statuses = filterStatus(statuses, args[0])
	}

	if statusJSON {
		return outputJSON(cmd, statuses)
	}
	outputStatus(cmd, statuses)
	return nil
}

func runStatusHistory(cmd *cobra.Command, id string) error {
	history, err := registry.StatusHistory(cmd.Context(), id, statusHistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if statusJSON {
		return outputJSON(cmd, history)
	}
	if len(history) == 0 {
		cmd.Printf("No recorded checks for %s.\n", id)
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("History: " + id))
	cmd.Println()
	for i := range history {
		h := &history[i]
		cmd.Printf("  %s  %-11s %6dms  %s\n",
			h.CheckedAt.Local().Format(time.DateTime), st.health(h.Status), h.ResponseTimeMS, h.Message)
	}
	return nil
}

func filterStatus(statuses []domain.ConnectorStatus, id string) []domain.ConnectorStatus {
	var out []domain.ConnectorStatus
	for i := range statuses {
		if statuses[i].ConnectorID == id {
			out = append(out, statuses[i])
		}
	}
	return out
}

func outputStatus(cmd *cobra.Command, statuses []domain.ConnectorStatus) {
	st := newStyles(cmd.OutOrStdout())

	groups := make(map[domain.ConnectorCategory][]*domain.ConnectorStatus)
	var order []domain.ConnectorCategory
	for i := range statuses {
		c := statuses[i].Category
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], &statuses[i])
	}

	counts := make(map[domain.HealthStatus]int)
	for _, cat := range order {
		cmd.Println(st.Header.Render(string(cat)))
		for _, s := range groups[cat] {
			counts[s.Status]++
			line := fmt.Sprintf("  %-15s %s", s.ConnectorID, st.health(s.Status))
			if s.LastChecked != nil && s.Status != domain.HealthUnavailable {
				line += fmt.Sprintf(" %dms", s.ResponseTimeMS)
			}
			if s.Message != "" {
				line += "  " + st.Muted.Render(s.Message)
			}
			cmd.Println(line)
			outputTests(cmd, st, s.TestResults)
		}
		cmd.Println()
	}

	cmd.Printf("%d ok, %d warning, %d error, %d unavailable, %d unknown\n",
		counts[domain.HealthOK], counts[domain.HealthWarning], counts[domain.HealthError],
		counts[domain.HealthUnavailable], counts[domain.HealthUnknown])
}

func outputTests(cmd *cobra.Command, st *styles, results []domain.QueryTestResult) {
	for i := range results {
		r := &results[i]
		mark := st.Success.Render("pass")
		detail := fmt.Sprintf("%d results", r.ResultCount)
		if !r.Passed() {
			mark = st.Error.Render("fail")
			if r.Error != "" {
				detail = r.Error
			}
		}
		cmd.Printf("      %s %-14s %s %s\n", mark, r.QueryID, detail, st.Muted.Render(fmt.Sprintf("%dms", r.ResponseTimeMS)))
		for _, sample := range r.Samples {
			cmd.Printf("           %s %s\n", st.Muted.Render(fmt.Sprintf("(%d)", sample.RelevanceScore)), sample.Title)
		}
	}
}
