package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/output"
)

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	var schemaFilter string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Sync warehouse tables into the catalog",
		Long: `Scan the configured warehouse and record every visible table and its
columns in the catalog, including primary key detection.

Discovered tables become addressable assets: fingerprint them with
'drift fingerprint table:<name>' or build segments and cards on top.`,
		Example: `  # Discover all tables
  drift discover

  # Only tables in one schema
  drift discover --schema analytics

  # Output as JSON
  drift discover --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd, schemaFilter)
		},
	}

	cmd.Flags().StringVar(&schemaFilter, "schema", "", "Only discover tables in this schema")

	return cmd
}

type discoveredTable struct {
	Ref     string `json:"ref"`
	Columns int    `json:"columns"`
}

type discoverOutput struct {
	Tables      []discoveredTable `json:"tables"`
	CatalogPath string            `json:"catalog_path"`
}

func runDiscover(cmd *cobra.Command, schemaFilter string) error {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	tables, err := cctx.Source.Tables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	var discovered []discoveredTable
	for _, table := range tables {
		if schemaFilter != "" && table.Schema != schemaFilter {
			continue
		}
		cols, err := cctx.Source.TableColumns(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to describe %s: %w", table.String(), err)
		}
		if err := cctx.Catalog.UpsertTable(table, cols); err != nil {
			return err
		}
		discovered = append(discovered, discoveredTable{
			Ref:     "table:" + table.String(),
			Columns: len(cols),
		})
	}

	out := discoverOutput{Tables: discovered, CatalogPath: cctx.Cfg.CatalogPath}
	r := cctx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return discoverMarkdown(r, out)
	default:
		return discoverText(r, out)
	}
}

func discoverText(r *output.Renderer, out discoverOutput) error {
	r.Success(fmt.Sprintf("Discovered %d tables", len(out.Tables)))
	r.Muted(fmt.Sprintf("Catalog saved to %s", out.CatalogPath))

	if len(out.Tables) > 0 {
		r.Println("")
		for _, table := range out.Tables {
			r.Printf("  - %s (%d columns)\n", table.Ref, table.Columns)
		}
	}

	return nil
}

func discoverMarkdown(r *output.Renderer, out discoverOutput) error {
	r.Println(output.FormatHeader(1, "Discovered Tables"))
	r.Println("")
	r.Println(output.FormatKeyValue("Tables", fmt.Sprintf("%d", len(out.Tables))))
	r.Println(output.FormatKeyValue("Catalog", out.CatalogPath))

	if len(out.Tables) > 0 {
		r.Println("")
		for _, table := range out.Tables {
			r.Printf("- %s (%d columns)\n", table.Ref, table.Columns)
		}
	}

	return nil
}
