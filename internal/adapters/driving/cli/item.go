package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	itemJSON     bool
	harvestLimit int
)

var itemCmd = &cobra.Command{
	Use:   "item [connector] [id]",
	Short: "Show one item from a connector",
	Long: `Fetches a single item by id. The id may include the connector prefix
printed by search, e.g. "arkeo item metmuseum metmuseum:436535".`,
	Args: cobra.ExactArgs(2),
	RunE: runItem,
}

var harvestCmd = &cobra.Command{
	Use:   "harvest [connector]",
	Short: "Stream a connector's collection as JSON lines",
	Long: `Pages through a connector's collection and writes one JSON object per
line. Only connectors with bulk access support harvesting.`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	itemCmd.Flags().BoolVar(&itemJSON, "json", false, "output the item as JSON")
	harvestCmd.Flags().IntVarP(&harvestLimit, "limit", "n", 100, "maximum items to fetch (0 = no limit)")
	rootCmd.AddCommand(itemCmd, harvestCmd)
}

func runItem(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}

	item, err := registry.GetItem(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}

	if itemJSON {
		return outputJSON(cmd, item)
	}
	outputItem(cmd, item)
	return nil
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}

	seq, err := registry.Harvest(cmd.Context(), args[0], harvestLimit)
	if err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for item, err := range seq {
		if err != nil {
			return fmt.Errorf("harvest failed: %w", err)
		}
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to write item: %w", err)
		}
	}
	return nil
}
