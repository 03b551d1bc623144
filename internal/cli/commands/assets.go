package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/output"
)

// NewAssetsCommand creates the assets command.
func NewAssetsCommand() *cobra.Command {
	var kindFilter string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List assets known to the catalog",
		Long: `List every asset the catalog knows about: discovered tables, imported
segments and cards. The ref column is what fingerprint and compare accept.`,
		Example: `  # List everything
  drift assets

  # Only segments
  drift assets --kind segment

  # Output as JSON
  drift assets --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssets(cmd, kindFilter)
		},
	}

	cmd.Flags().StringVar(&kindFilter, "kind", "", "Only list assets of this kind (table, segment, card)")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "segment", "card"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type assetRow struct {
	Ref    string `json:"ref"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type assetsOutput struct {
	Assets []assetRow `json:"assets"`
	Count  int        `json:"count"`
}

func runAssets(cmd *cobra.Command, kindFilter string) error {
	cctx, cleanup, err := NewCommandContextWithoutSource(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rows, err := collectAssetRows(cctx, kindFilter)
	if err != nil {
		return err
	}

	out := assetsOutput{Assets: rows, Count: len(rows)}
	r := cctx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return assetsMarkdown(r, out)
	default:
		return assetsText(r, out)
	}
}

func collectAssetRows(cctx *CommandContext, kindFilter string) ([]assetRow, error) {
	var rows []assetRow

	if kindFilter == "" || kindFilter == "table" {
		tables, err := cctx.Catalog.ListTables()
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			rows = append(rows, assetRow{
				Ref:    "table:" + t.Table.String(),
				Kind:   "table",
				Target: t.Table.String(),
				Detail: fmt.Sprintf("%d columns", len(t.Columns)),
			})
		}
	}

	if kindFilter == "" || kindFilter == "segment" {
		segments, err := cctx.Catalog.ListSegments()
		if err != nil {
			return nil, err
		}
		for _, s := range segments {
			rows = append(rows, assetRow{
				Ref:    "segment:" + s.Name,
				Kind:   "segment",
				Target: s.Table.String(),
				Detail: s.Predicate,
			})
		}
	}

	if kindFilter == "" || kindFilter == "card" {
		cards, err := cctx.Catalog.ListCards()
		if err != nil {
			return nil, err
		}
		for _, c := range cards {
			rows = append(rows, assetRow{
				Ref:    "card:" + c.Name,
				Kind:   "card",
				Target: c.Table.String(),
				Detail: truncate(c.Query.SQL, 60),
			})
		}
	}

	return rows, nil
}

func assetsText(r *output.Renderer, out assetsOutput) error {
	if out.Count == 0 {
		r.Muted("No assets in catalog. Run 'drift discover' to sync tables or 'drift import' to load definitions.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"REF", "KIND", "TARGET", "DETAIL"})
	for _, row := range out.Assets {
		t.AppendRow(table.Row{row.Ref, row.Kind, row.Target, row.Detail})
	}
	t.Render()
	r.Printf("(%d assets)\n", out.Count)

	return nil
}

func assetsMarkdown(r *output.Renderer, out assetsOutput) error {
	r.Println(output.FormatHeader(1, "Catalog Assets"))
	r.Println("")
	r.Println(output.FormatKeyValue("Count", fmt.Sprintf("%d", out.Count)))

	if out.Count > 0 {
		r.Println("")
		r.Println("| Ref | Kind | Target | Detail |")
		r.Println("|-----|------|--------|--------|")
		for _, row := range out.Assets {
			r.Printf("| %s | %s | %s | %s |\n", row.Ref, row.Kind, row.Target, row.Detail)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
