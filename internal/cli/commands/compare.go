package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/cli/output"
	"github.com/leapstack-labs/drift/internal/fingerprint"
	"github.com/leapstack-labs/drift/pkg/core"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <asset-a> <asset-b>",
		Short: "Compare two assets' fingerprints",
		Long: `Extract both assets and measure how far their statistical fingerprints
are apart. Assets must have the same shape: two composites (tables,
segments, cards) are compared column by column in the first asset's
column order, two columns are compared directly.

The result lists a distance per field in [0, 1], whether it crosses the
significance threshold, and the features that drive the difference.`,
		Example: `  # Compare a segment against its base table
  drift compare table:main.orders segment:big_spenders

  # Compare the same card across environments
  drift -e prod fingerprint card:revenue --output json > prod.json
  drift compare card:revenue card:revenue_v2

  # Output as JSON
  drift compare table:main.orders segment:big_spenders --output json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args[0], args[1])
		},
	}

	return cmd
}

type compareOutput struct {
	A            string                 `json:"a"`
	B            string                 `json:"b"`
	Result       *core.ComparisonResult `json:"result"`
	Descriptions map[string]string      `json:"descriptions,omitempty"`
}

func runCompare(cmd *cobra.Command, refA, refB string) error {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	assetA, err := cctx.Catalog.ResolveAsset(refA)
	if err != nil {
		return err
	}
	assetB, err := cctx.Catalog.ResolveAsset(refB)
	if err != nil {
		return err
	}

	result, err := cctx.Engine.Compare(cmd.Context(), cctx.Options(), assetA, assetB)
	if err != nil {
		return fmt.Errorf("failed to compare %s and %s: %w", refA, refB, err)
	}

	descriptions := make(map[string]string)
	for i, c := range result.Constituents {
		if c == nil {
			continue
		}
		result.Constituents[i] = fingerprint.RoundDecimals(c, roundPlaces)
		for name, title := range fingerprint.Describe(c) {
			descriptions[name] = title
		}
	}

	out := compareOutput{A: refA, B: refB, Result: result, Descriptions: descriptions}
	r := cctx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return compareMarkdown(r, out)
	default:
		return compareText(r, out)
	}
}

func compareText(r *output.Renderer, out compareOutput) error {
	res := out.Result

	r.Header(1, fmt.Sprintf("%s vs %s", out.A, out.B))
	if res.Significant {
		r.Warning("Significant drift detected")
	} else {
		r.Success("No significant drift")
	}
	if res.Sample {
		r.Muted("At least one side was sampled; distances are approximate")
	}
	r.Println("")

	if len(res.Fields) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"FIELD", "DISTANCE", "SIGNIFICANT"})
		for _, fd := range res.Fields {
			t.AppendRow(table.Row{fd.Field, fmt.Sprintf("%.4f", fd.Distance.Distance), yesNo(fd.Significant)})
		}
		t.Render()
	}

	if res.Overall != nil {
		r.Println(output.FormatKeyValue("Distance", fmt.Sprintf("%.4f", res.Overall.Distance)))
		r.Println(output.FormatKeyValue("Significant", yesNo(res.Overall.Significant)))
	}

	if len(res.TopContributors) > 0 {
		r.Println("")
		r.Header(2, "Top contributors")
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		if len(res.Fields) > 0 {
			t.AppendHeader(table.Row{"FIELD", "FEATURE", "CONTRIBUTION"})
			for _, c := range res.TopContributors {
				t.AppendRow(table.Row{c.Field, fingerprint.FeatureTitle(c.Feature), fmt.Sprintf("%.4f", c.Contribution)})
			}
		} else {
			t.AppendHeader(table.Row{"FEATURE", "DIFFERENCE"})
			for _, c := range res.TopContributors {
				t.AppendRow(table.Row{fingerprint.FeatureTitle(c.Feature), fmt.Sprintf("%.4f", c.Difference)})
			}
		}
		t.Render()
	}

	r.Println("")
	r.Muted("comparison id: " + res.ID)

	return nil
}

func compareMarkdown(r *output.Renderer, out compareOutput) error {
	res := out.Result

	r.Println(output.FormatHeader(1, fmt.Sprintf("Comparison: %s vs %s", out.A, out.B)))
	r.Println("")
	r.Println(output.FormatKeyValue("Significant", yesNo(res.Significant)))
	r.Println(output.FormatKeyValue("Sampled", yesNo(res.Sample)))
	r.Println(output.FormatKeyValue("ID", res.ID))

	if len(res.Fields) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Fields"))
		r.Println("")
		r.Println("| Field | Distance | Significant |")
		r.Println("|-------|----------|-------------|")
		for _, fd := range res.Fields {
			r.Printf("| %s | %.4f | %s |\n", fd.Field, fd.Distance.Distance, yesNo(fd.Significant))
		}
	}

	if res.Overall != nil {
		r.Println("")
		r.Println(output.FormatKeyValue("Distance", fmt.Sprintf("%.4f", res.Overall.Distance)))
	}

	if len(res.TopContributors) > 0 {
		r.Println("")
		r.Println(output.FormatHeader(2, "Top Contributors"))
		r.Println("")
		r.Println("| Field | Feature | Contribution | Difference |")
		r.Println("|-------|---------|--------------|------------|")
		for _, c := range res.TopContributors {
			r.Printf("| %s | %s | %.4f | %.4f |\n", c.Field, fingerprint.FeatureTitle(c.Feature), c.Contribution, c.Difference)
		}
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
