// Package main provides the Drift command-line interface.
package main

import (
	"os"

	"github.com/leapstack-labs/drift/internal/cli"

	// Warehouse drivers register themselves on import.
	_ "github.com/leapstack-labs/drift/pkg/warehouse/duckdb"
	_ "github.com/leapstack-labs/drift/pkg/warehouse/postgres"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
