package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/drift/internal/fingerprint"
)

// featureDoc describes one feature emitted by a reducer family.
type featureDoc struct {
	Name        string
	Type        string
	Description string
}

// familyDoc groups the features of one column family.
type familyDoc struct {
	Name        string
	Matches     string
	Description string
	Features    []featureDoc
}

// featureCatalog returns the feature reference schema.
// Based on the reducers in internal/fingerprint.
func featureCatalog() []familyDoc {
	return []familyDoc{
		{
			Name:        "All columns",
			Matches:     "every column, regardless of type",
			Description: "Presence statistics emitted for every fingerprinted column. Columns whose warehouse type has no dedicated family report only these.",
			Features: []featureDoc{
				{Name: "count", Type: "int", Description: "Number of observed cells, including nils"},
				{Name: "nil_count", Type: "int", Description: "Number of nil cells"},
				{Name: "nil_share", Type: "float", Description: "Fraction of nil cells, 0 for empty columns"},
			},
		},
		{
			Name:        "Numeric columns",
			Matches:     "INTEGER, BIGINT, DECIMAL, DOUBLE, and friends",
			Description: "Summary statistics over the column's non-nil values. Mean and standard deviation are computed in a single streaming pass; sd requires at least two values.",
			Features: []featureDoc{
				{Name: "min", Type: "float", Description: "Smallest observed value"},
				{Name: "max", Type: "float", Description: "Largest observed value"},
				{Name: "sum", Type: "float", Description: "Sum of observed values"},
				{Name: "mean", Type: "float", Description: "Arithmetic mean"},
				{Name: "sd", Type: "float", Description: "Sample standard deviation"},
			},
		},
		{
			Name:        "Text columns",
			Matches:     "VARCHAR, TEXT, CHAR, UUID, and friends",
			Description: "Cardinality and length statistics. Distinct tracking is capped by the computation cost level; when the cap is hit, distinct_count stops growing and distinct_capped flips to true.",
			Features: []featureDoc{
				{Name: "distinct_count", Type: "int", Description: "Number of distinct values seen, up to the cap"},
				{Name: "distinct_capped", Type: "bool", Description: "Whether distinct tracking hit its cap"},
				{Name: "min_length", Type: "int", Description: "Shortest value length in bytes"},
				{Name: "max_length", Type: "int", Description: "Longest value length in bytes"},
				{Name: "avg_length", Type: "float", Description: "Average value length in bytes"},
			},
		},
		{
			Name:        "Temporal columns",
			Matches:     "DATE, TIME, TIMESTAMP, and friends",
			Description: "The observed range of the column.",
			Features: []featureDoc{
				{Name: "earliest", Type: "timestamp", Description: "Earliest observed value"},
				{Name: "latest", Type: "timestamp", Description: "Latest observed value"},
			},
		},
		{
			Name:        "Boolean columns",
			Matches:     "BOOL, BOOLEAN",
			Description: "The balance of true and false values.",
			Features: []featureDoc{
				{Name: "true_count", Type: "int", Description: "Number of true values"},
				{Name: "true_share", Type: "float", Description: "Fraction of non-nil values that are true"},
			},
		},
		{
			Name:        "Card relation",
			Matches:     "the dimension/metric pair of a card's result set",
			Description: "Relationship statistics between a card's primary dimension and its metric, computed over the card's executed result. Slope, intercept, and correlation appear only when both axes are numeric (temporal dimensions are regressed on Unix seconds) and the dimension has variance.",
			Features: []featureDoc{
				{Name: "row_count", Type: "int", Description: "Number of result rows"},
				{Name: "query", Type: "object", Description: "The card's query definition"},
				{Name: "slope", Type: "float", Description: "Least-squares slope of metric over dimension"},
				{Name: "intercept", Type: "float", Description: "Least-squares intercept"},
				{Name: "correlation", Type: "float", Description: "Pearson correlation between dimension and metric"},
			},
		},
		{
			Name:        "Asset identity",
			Matches:     "the fingerprint's top-level feature set",
			Description: "Identity features naming what was fingerprinted. Identity strings compare by equality, so renaming a segment or repointing a card registers as drift.",
			Features: []featureDoc{
				{Name: "table", Type: "ref", Description: "The schema-qualified source table"},
				{Name: "segment", Type: "string", Description: "Segment name, on segment fingerprints"},
				{Name: "card", Type: "string", Description: "Card name, on card fingerprints"},
			},
		},
	}
}

// generateFeatureDocs generates the feature reference page.
func generateFeatureDocs(outDir string) error {
	log.Printf("Generating feature docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Feature Reference", "Statistical features Drift extracts per column family")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Feature Reference")
	w.Paragraph("A fingerprint is a set of named features. Which features a column contributes depends on its warehouse type family; all features of a family are computed in one pass over the data.")
	w.Paragraph("Feature names are stable across warehouses and cost levels, so fingerprints taken in different environments stay comparable.")

	for _, fam := range featureCatalog() {
		w.Header(2, fam.Name)
		w.Paragraph(fmt.Sprintf("Applies to %s. %s", fam.Matches, fam.Description))

		headers := []string{"Feature", "Title", "Type", "Description"}
		var rows [][]string
		for _, f := range fam.Features {
			rows = append(rows, []string{
				InlineCode(f.Name),
				fingerprint.FeatureTitle(f.Name),
				f.Type,
				cleanDescription(f.Description),
			})
		}
		w.Table(headers, rows)
	}

	// Write file
	filename := filepath.Join(outDir, "features.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated features.md")
	return nil
}
