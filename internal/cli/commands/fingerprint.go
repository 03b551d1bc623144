package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/output"
	"github.com/leapstack-labs/drift/internal/fingerprint"
	"github.com/leapstack-labs/drift/pkg/core"
)

// roundPlaces is the decimal precision of floats in rendered fingerprints.
const roundPlaces = 4

// previewRows caps the card result preview in text mode.
const previewRows = 10

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint <asset-ref>",
		Short: "Compute an asset's statistical fingerprint",
		Long: `Extract the feature vector of one asset. The asset is addressed by a
catalog ref:

  table:<schema.name>    whole table, one feature set per column
  column:<table.column>  single column
  segment:<name>         table filtered by the segment's predicate
  card:<name>            saved query result

Features depend on the column type: numeric columns get min, max, mean
and standard deviation, text columns length statistics, every column
null counts. The cost policy caps how much data is read; override it
with --max-cost-query full-scan for exact results on large tables.`,
		Example: `  # Fingerprint a table
  drift fingerprint table:main.orders

  # Fingerprint a segment without sampling
  drift fingerprint segment:big_spenders --max-cost-query full-scan

  # Output as JSON
  drift fingerprint card:revenue --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(cmd, args[0])
		},
	}

	return cmd
}

type fingerprintOutput struct {
	Asset        string            `json:"asset"`
	Kind         string            `json:"kind"`
	Fingerprint  *core.Extraction  `json:"fingerprint"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
}

func runFingerprint(cmd *cobra.Command, ref string) error {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	asset, err := cctx.Catalog.ResolveAsset(ref)
	if err != nil {
		return err
	}

	ext, err := cctx.Extractor.Extract(cmd.Context(), cctx.Options(), asset)
	if err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", ref, err)
	}
	ext = fingerprint.RoundDecimals(ext, roundPlaces)

	out := fingerprintOutput{
		Asset:        ref,
		Kind:         string(asset.Kind()),
		Fingerprint:  ext,
		Descriptions: fingerprint.Describe(ext),
	}
	r := cctx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return fingerprintMarkdown(r, out)
	default:
		return fingerprintText(r, out)
	}
}

func fingerprintText(r *output.Renderer, out fingerprintOutput) error {
	r.Header(1, out.Asset)
	r.Muted("kind: " + out.Kind)
	if out.Fingerprint.Sample {
		r.Warning("Computed over a capped sample; pass --max-cost-query full-scan for exact features")
	}
	r.Println("")

	ext := out.Fingerprint
	if len(ext.Features) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"FEATURE", "VALUE"})
		for _, name := range sortedFeatures(ext.Features) {
			t.AppendRow(table.Row{fingerprint.FeatureTitle(name), formatFeature(ext.Features[name])})
		}
		t.Render()
	}

	if len(ext.Constituents) > 0 {
		r.Println("")
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"COLUMN", "TYPE", "FEATURE", "VALUE"})
		for _, cf := range ext.Constituents {
			for i, name := range sortedFeatures(cf.Features) {
				col, typ := "", ""
				if i == 0 {
					col, typ = cf.Column.Name, cf.Column.Type
				}
				t.AppendRow(table.Row{col, typ, fingerprint.FeatureTitle(name), formatFeature(cf.Features[name])})
			}
		}
		t.Render()
		r.Printf("(%d columns)\n", len(ext.Constituents))
	}

	if ext.Dataset != nil {
		r.Println("")
		r.Header(2, "Result preview")
		renderDatasetPreview(r, ext.Dataset)
	}

	return nil
}

func fingerprintMarkdown(r *output.Renderer, out fingerprintOutput) error {
	r.Println(output.FormatHeader(1, "Fingerprint: "+out.Asset))
	r.Println("")
	r.Println(output.FormatKeyValue("Kind", out.Kind))
	r.Println(output.FormatKeyValue("Sampled", fmt.Sprintf("%t", out.Fingerprint.Sample)))

	ext := out.Fingerprint
	if len(ext.Features) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Features"))
		r.Println("")
		for _, name := range sortedFeatures(ext.Features) {
			r.Println(output.FormatKeyValue(fingerprint.FeatureTitle(name), formatFeature(ext.Features[name])))
		}
	}

	if len(ext.Constituents) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Columns"))
		r.Println("")
		r.Println("| Column | Type | Feature | Value |")
		r.Println("|--------|------|---------|-------|")
		for _, cf := range ext.Constituents {
			for _, name := range sortedFeatures(cf.Features) {
				r.Printf("| %s | %s | %s | %s |\n",
					cf.Column.Name, cf.Column.Type, fingerprint.FeatureTitle(name), formatFeature(cf.Features[name]))
			}
		}
	}

	return nil
}

// renderDatasetPreview prints the first rows of a card's result set.
func renderDatasetPreview(r *output.Renderer, ds *core.Dataset) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(ds.Cols))
	for i, col := range ds.Cols {
		header[i] = col.Name
	}
	t.AppendHeader(header)

	n := len(ds.Rows)
	if n > previewRows {
		n = previewRows
	}
	for _, row := range ds.Rows[:n] {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = formatFeature(v)
		}
		t.AppendRow(cells)
	}
	t.Render()
	r.Printf("(%d of %d rows)\n", n, len(ds.Rows))
}

// sortedFeatures returns the feature names of a set in lexical order, so
// rendered output is stable across runs.
func sortedFeatures(fs core.FeatureSet) []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// formatFeature renders a single feature value for display.
func formatFeature(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
