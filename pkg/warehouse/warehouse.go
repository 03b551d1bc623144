// Package warehouse provides warehouse source interfaces and shared SQL
// plumbing for Drift's extraction engine.
//
// This package contains the public contract that all warehouse sources must
// implement. Concrete source implementations are in pkg/warehouse/
// subdirectories and register themselves with the source registry.
package warehouse

import (
	"context"

	"github.com/leapstack-labs/drift/pkg/core"
)

// Source defines the interface that all warehouse sources must implement.
// It covers the two retrieval paths of the extraction engine (table reads
// and card query execution) plus the introspection used by discovery.
type Source interface {
	// Connect establishes a connection to the warehouse.
	Connect(ctx context.Context, cfg core.SourceConfig) error

	// Close closes the connection and releases resources.
	Close() error

	// Fetch retrieves the dataset described by ref, honoring opts. Used
	// for column, table, and segment assets.
	Fetch(ctx context.Context, ref core.DatasetRef, opts core.QueryOptions) (*core.Dataset, error)

	// Execute runs a card's query definition and returns its result set,
	// honoring opts. Used only for card assets.
	Execute(ctx context.Context, q core.QueryDef, opts core.QueryOptions) (*core.Dataset, error)

	// Tables lists the user tables visible to the connection.
	Tables(ctx context.Context) ([]core.TableRef, error)

	// TableColumns retrieves the declared columns of a table, including
	// primary key detection.
	TableColumns(ctx context.Context, table core.TableRef) ([]core.Column, error)
}
