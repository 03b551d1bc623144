package comparison

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leapstack-labs/drift/pkg/core"
)

// ErrShapeMismatch is returned when exactly one side of a comparison has
// per-column constituents. A table cannot be meaningfully compared with a
// single column.
var ErrShapeMismatch = errors.New("cannot compare a composite fingerprint with a leaf fingerprint")

// NoCounterpartError is returned when the second asset has no constituent
// matching one of the first asset's columns.
type NoCounterpartError struct {
	Field string
}

func (e *NoCounterpartError) Error() string {
	return fmt.Sprintf("no counterpart for field %q in the second asset", e.Field)
}

// Extractor is the slice of the extraction engine the comparison needs.
type Extractor interface {
	Extract(ctx context.Context, opts core.Options, asset core.Asset) (*core.Extraction, error)
}

// Engine compares two assets by extracting and diffing their fingerprints.
type Engine struct {
	extractor Extractor
	logger    *slog.Logger
}

// NewEngine creates a comparison engine. If logger is nil, a discard logger
// is used.
func NewEngine(extractor Extractor, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{extractor: extractor, logger: logger}
}

// Compare extracts both assets and measures how far apart they are. The
// extractions run sequentially; callers wanting parallelism own it.
func (e *Engine) Compare(ctx context.Context, opts core.Options, a, b core.Asset) (*core.ComparisonResult, error) {
	e.logger.Debug("comparing assets", "a", a.Name(), "b", b.Name())

	extA, err := e.extractor.Extract(ctx, opts, a)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", a.Name(), err)
	}
	extB, err := e.extractor.Extract(ctx, opts, b)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", b.Name(), err)
	}

	result := &core.ComparisonResult{
		ID:           uuid.NewString(),
		Constituents: [2]*core.Extraction{extA, extB},
		Sample:       extA.Sample || extB.Sample,
	}

	switch {
	case extA.Constituents != nil && extB.Constituents != nil:
		fields, err := compareConstituents(extA.Constituents, extB.Constituents)
		if err != nil {
			return nil, err
		}
		result.Fields = fields
		result.TopContributors = rankComposite(fields)
		for _, fd := range fields {
			if fd.Significant {
				result.Significant = true
				break
			}
		}
	case extA.Constituents == nil && extB.Constituents == nil:
		d := featureDistance(extA.Features, extB.Features)
		result.Overall = &d
		result.TopContributors = rankLeaf(d)
		result.Significant = d.Significant
	default:
		return nil, ErrShapeMismatch
	}

	return result, nil
}

// compareConstituents pairs the first extraction's constituents with the
// second's by column name, in the first's stored order.
func compareConstituents(a, b core.Constituents) ([]core.FieldDistance, error) {
	fields := make([]core.FieldDistance, 0, len(a))
	for _, cf := range a {
		counterpart, ok := b.Get(cf.Column.Name)
		if !ok {
			return nil, &NoCounterpartError{Field: cf.Column.Name}
		}
		fields = append(fields, core.FieldDistance{
			Field:    cf.Column.Name,
			Distance: featureDistance(cf.Features, counterpart),
		})
	}
	return fields, nil
}
