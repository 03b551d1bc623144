// Package core defines the shared language of the Drift system.
//
// This package contains:
//   - Dataset types (Dataset, Column, Role)
//   - Asset variants (ColumnAsset, TableAsset, CardAsset, SegmentAsset)
//   - Extraction and comparison envelopes (Extraction, ComparisonResult)
//   - Collaborator contracts (Reducer, ReducerFactory)
//   - Warehouse-facing types (SourceConfig, DatasetRef, QueryOptions)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
