package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

var (
	sourcesType string
	sourcesJSON bool
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered connectors",
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	sourcesCmd.Flags().StringVarP(&sourcesType, "type", "t", "", "only list connectors offering this content type")
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errRegistryNotConfigured
	}

	infos := registry.Sources()
	if sourcesType != "" {
		t, err := domain.ParseContentType(sourcesType)
		if err != nil {
			return err
		}
		infos = registry.ConnectorsFor(t)
	}

	if sourcesJSON {
		return outputJSON(cmd, infos)
	}

	if len(infos) == 0 {
		cmd.Println("No connectors registered.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title.Render("Connectors"))
	cmd.Println()
	for i := range infos {
		info := &infos[i]
		types := make([]string, len(info.ContentTypes))
		for j, t := range info.ContentTypes {
			types[j] = t.String()
		}

		cmd.Printf("  %-15s %s\n", info.ID, info.Name)
		cmd.Printf("  %-15s %s\n", "", st.Muted.Render(fmt.Sprintf("%s · %s", info.Protocol, strings.Join(types, ", "))))
		if info.RequiresAuth {
			cmd.Printf("  %-15s requires api_keys.%s\n", "", info.ID)
		}
		if !info.Available {
			cmd.Printf("  %-15s %s\n", "", st.Warning.Render("unavailable: "+info.UnavailableReason))
		}
	}
	return nil
}
