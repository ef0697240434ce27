package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/arkeo/internal/core/domain"
)

const maxDescription = 160

// dispatchFlags are the flags shared by every fan-out command.
type dispatchFlags struct {
	sources []string
	types   []string
	limit   int
	timeout int
	json    bool
}

func (f *dispatchFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.sources, "source", "s", nil, "connector ids to query (repeatable)")
	cmd.Flags().StringSliceVarP(&f.types, "type", "t", nil, "only query connectors offering these content types")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "maximum items per connector (default from settings)")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "overall deadline in seconds (default from settings)")
	cmd.Flags().BoolVar(&f.json, "json", false, "output results as JSON")
}

func (f *dispatchFlags) dispatch() (domain.Dispatch, error) {
	d := domain.Dispatch{
		Sources: f.sources,
		Timeout: time.Duration(f.timeout) * time.Second,
	}
	for _, raw := range f.types {
		t, err := domain.ParseContentType(strings.TrimSpace(raw))
		if err != nil {
			return domain.Dispatch{}, err
		}
		d.ContentTypes = append(d.ContentTypes, t)
	}
	return d, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResult(cmd *cobra.Command, res *domain.ContentSearchResult, asJSON bool) error {
	if asJSON {
		return outputJSON(cmd, res)
	}

	st := newStyles(cmd.OutOrStdout())

	if len(res.Items) == 0 {
		cmd.Println("No results found.")
	} else {
		cmd.Println(st.Title.Render(fmt.Sprintf("Results for %q", res.Query)))
		cmd.Println()
		for i := range res.Items {
			outputItemLine(cmd, st, i+1, &res.Items[i])
		}
	}

	cmd.Println(st.Muted.Render(fmt.Sprintf("%d items from %d sources in %dms",
		res.TotalCount, len(res.SourcesSearched), res.SearchTimeMS)))

	if len(res.SourcesFailed) > 0 {
		cmd.Println(st.Warning.Render("Failed sources:"))
		failed := slices.Clone(res.SourcesFailed)
		slices.Sort(failed)
		for _, id := range failed {
			e := res.SourceErrors[id]
			cmd.Printf("  %s [%s] %s\n", id, e.Kind, e.Message)
		}
	}
	return nil
}

func outputItemLine(cmd *cobra.Command, st *styles, n int, item *domain.ContentItem) {
	cmd.Printf("  [%d] %s %s\n", n, item.Title, st.Score.Render(fmt.Sprintf("(%d)", item.RelevanceScore)))

	meta := []string{item.Source, string(item.ContentType)}
	for _, v := range []string{item.Date, item.Culture, item.Place} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	cmd.Printf("      %s\n", st.Muted.Render(strings.Join(meta, " · ")))
	if item.Description != "" {
		cmd.Printf("      %s\n", truncate(item.Description, maxDescription))
	}
	cmd.Printf("      %s\n", item.URL)
	cmd.Println()
}

func outputItem(cmd *cobra.Command, item *domain.ContentItem) {
	st := newStyles(cmd.OutOrStdout())

	cmd.Println(st.Title.Render(item.Title))
	cmd.Println()
	fields := []struct {
		label string
		value string
	}{
		{"ID", item.ID},
		{"Source", item.Source},
		{"Type", string(item.ContentType)},
		{"URL", item.URL},
		{"Creator", item.Creator},
		{"Date", item.Date},
		{"Period", item.Period},
		{"Culture", item.Culture},
		{"Place", item.Place},
		{"Country", item.Country},
		{"Object type", item.ObjectType},
		{"Material", item.Material},
		{"Dimensions", item.Dimensions},
		{"Museum", item.Museum},
		{"License", item.License},
		{"Attribution", item.Attribution},
		{"Thumbnail", item.ThumbnailURL},
	}
	for _, f := range fields {
		if f.value != "" {
			cmd.Printf("  %-12s %s\n", f.label+":", f.value)
		}
	}
	if item.Lat != nil && item.Lon != nil {
		cmd.Printf("  %-12s %.5f, %.5f\n", "Location:", *item.Lat, *item.Lon)
	}
	if item.Description != "" {
		cmd.Println()
		cmd.Println(item.Description)
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
