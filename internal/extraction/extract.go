package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/drift/pkg/core"
)

// ErrNoRelatedPair is returned for card assets whose result set offers no
// second field to relate to the primary dimension: no aggregation column and
// no second breakout.
var ErrNoRelatedPair = errors.New("card has no aggregation or second breakout to pair with its dimension")

// DataSource is the slice of a warehouse source the extractor needs.
type DataSource interface {
	Fetch(ctx context.Context, ref core.DatasetRef, opts core.QueryOptions) (*core.Dataset, error)
	Execute(ctx context.Context, q core.QueryDef, opts core.QueryOptions) (*core.Dataset, error)
}

// Extractor computes statistical fingerprints for analytical assets.
type Extractor struct {
	source  DataSource
	factory core.ReducerFactory
	policy  Policy
	logger  *slog.Logger
}

// New creates an extractor. If logger is nil, a discard logger is used.
func New(source DataSource, factory core.ReducerFactory, policy Policy, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{source: source, factory: factory, policy: policy, logger: logger}
}

// Policy returns the extractor's cost policy.
func (e *Extractor) Policy() Policy {
	return e.policy
}

// Extract dispatches on the asset's kind and returns its fingerprint.
func (e *Extractor) Extract(ctx context.Context, opts core.Options, asset core.Asset) (*core.Extraction, error) {
	e.logger.Debug("extracting asset", "kind", asset.Kind(), "asset", asset.Name())

	switch a := asset.(type) {
	case core.ColumnAsset:
		return e.extractColumn(ctx, opts, a)
	case core.TableAsset:
		return e.extractTable(ctx, opts, a)
	case core.SegmentAsset:
		return e.extractSegment(ctx, opts, a)
	case core.CardAsset:
		return e.extractCard(ctx, opts, a)
	default:
		return nil, fmt.Errorf("unsupported asset kind %q", asset.Kind())
	}
}

// extractColumn fingerprints a single column: one projected fetch, one
// reducer. Exclusion flags do not apply when the column is the asset itself.
func (e *Extractor) extractColumn(ctx context.Context, opts core.Options, a core.ColumnAsset) (*core.Extraction, error) {
	ref := core.DatasetRef{Table: a.Table, Columns: []core.Column{a.Column}}
	ds, err := e.source.Fetch(ctx, ref, e.policy.QueryOptions(opts.MaxCost))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch column %s: %w", a.Name(), err)
	}

	features := reduceColumn(e.factory.Column(opts, a.Column), ds.Rows)
	features["table"] = a.Table

	return &core.Extraction{
		Features: features,
		Sample:   e.policy.Sampled(opts.MaxCost, len(ds.Rows)),
	}, nil
}

// extractTable fingerprints every eligible column of a table.
func (e *Extractor) extractTable(ctx context.Context, opts core.Options, a core.TableAsset) (*core.Extraction, error) {
	ref := core.DatasetRef{Table: a.Table, Columns: a.Columns}
	ds, err := e.source.Fetch(ctx, ref, e.policy.QueryOptions(opts.MaxCost))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch table %s: %w", a.Name(), err)
	}

	return &core.Extraction{
		Features:     core.FeatureSet{"table": a.Table},
		Constituents: aggregateColumns(e.factory, opts, ds),
		Sample:       e.policy.Sampled(opts.MaxCost, len(ds.Rows)),
	}, nil
}

// extractSegment fingerprints a table filtered by the segment's predicate.
func (e *Extractor) extractSegment(ctx context.Context, opts core.Options, a core.SegmentAsset) (*core.Extraction, error) {
	ref := core.DatasetRef{Table: a.Table, Columns: a.Columns, Where: a.Predicate}
	ds, err := e.source.Fetch(ctx, ref, e.policy.QueryOptions(opts.MaxCost))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch segment %s: %w", a.Name(), err)
	}

	return &core.Extraction{
		Features:     core.FeatureSet{"table": a.Table, "segment": a.SegmentName},
		Constituents: aggregateColumns(e.factory, opts, ds),
		Sample:       e.policy.Sampled(opts.MaxCost, len(ds.Rows)),
	}, nil
}

// extractCard executes a card's query and fingerprints the result: per-column
// constituents over the full result set plus relation features over the
// card's dimension/metric pair.
func (e *Extractor) extractCard(ctx context.Context, opts core.Options, a core.CardAsset) (*core.Extraction, error) {
	ds, err := e.source.Execute(ctx, a.Query, e.policy.QueryOptions(opts.MaxCost))
	if err != nil {
		return nil, fmt.Errorf("failed to execute card %s: %w", a.Name(), err)
	}

	tagColumnRoles(ds.Cols, a.Query)

	fields, err := relatedFields(ds.Cols)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", a.Name(), err)
	}

	aligned, err := alignFields(fields, ds)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", a.Name(), err)
	}

	// The pair reducer folds the card's query identity into its features.
	pairOpts := opts
	pairOpts.Query = &a.Query
	features := reducePair(e.factory.Pair(pairOpts, fields[0], fields[1]), aligned)
	features["card"] = a.CardName
	features["table"] = a.Table

	return &core.Extraction{
		Features:     features,
		Constituents: aggregateColumns(e.factory, opts, ds),
		Sample:       e.policy.Sampled(opts.MaxCost, len(ds.Rows)),
		Dataset:      ds,
	}, nil
}

// tagColumnRoles applies a card's visualization hints to its result columns.
// Hints only fill in roles when the result carries unroled columns; columns
// already tagged by the warehouse keep their roles. Only the first declared
// metric and dimension are tagged, by name.
func tagColumnRoles(cols []core.Column, q core.QueryDef) {
	if !q.HasHints() {
		return
	}
	every := true
	for _, col := range cols {
		if col.Role == core.RoleNone {
			every = false
			break
		}
	}
	if every {
		return
	}

	if len(q.Metrics) > 0 {
		for i := range cols {
			if cols[i].Name == q.Metrics[0] {
				cols[i].Role = core.RoleAggregation
				break
			}
		}
	}
	if len(q.Dimensions) > 0 {
		for i := range cols {
			if cols[i].Name == q.Dimensions[0] {
				cols[i].Role = core.RoleBreakout
				break
			}
		}
	}
}

// relatedFields picks the card's dimension/metric pair: the first breakout
// column and the first aggregation column, falling back to a second breakout
// when the result has no aggregation.
func relatedFields(cols []core.Column) ([2]core.Column, error) {
	var breakouts, aggregations []core.Column
	for _, col := range cols {
		switch col.Role {
		case core.RoleBreakout:
			breakouts = append(breakouts, col)
		case core.RoleAggregation:
			aggregations = append(aggregations, col)
		}
	}

	if len(breakouts) == 0 {
		return [2]core.Column{}, ErrNoRelatedPair
	}
	if len(aggregations) > 0 {
		return [2]core.Column{breakouts[0], aggregations[0]}, nil
	}
	if len(breakouts) > 1 {
		return [2]core.Column{breakouts[0], breakouts[1]}, nil
	}
	return [2]core.Column{}, ErrNoRelatedPair
}
