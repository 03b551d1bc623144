package config

import (
	"strings"

	"github.com/leapstack-labs/drift/internal/extraction"
	"github.com/leapstack-labs/drift/pkg/core"
)

// Default configuration values.
const (
	DefaultCatalogFile = ".drift/catalog.db"
	DefaultAssetsDir   = "assets"
	DefaultEnv         = "dev"
	DefaultOutput      = "auto" // Auto-detect: TTY=table, non-TTY=json
)

// DefaultSampleCap mirrors the extraction cost policy's cap so config
// defaults stay in sync with it.
const DefaultSampleCap = extraction.DefaultSampleCap

// DefaultSchemaForType returns the default schema for a warehouse type.
// Unknown types fall back to "main".
func DefaultSchemaForType(sourceType string) string {
	switch strings.ToLower(sourceType) {
	case "postgres":
		return "public"
	default:
		return "main"
	}
}

// ApplySourceDefaults applies default values to a SourceConfig based on the
// source type.
func ApplySourceDefaults(s *core.SourceConfig) {
	if s == nil {
		return
	}

	// Apply default schema based on type
	if s.Schema == "" {
		s.Schema = DefaultSchemaForType(s.Type)
	}

	// Apply type-specific defaults
	if s.Type == "postgres" {
		if s.Port == 0 {
			s.Port = 5432
		}
	}
}

// DefaultMaxCost bounds runs that did not ask for anything else: sampled
// retrieval with cheap accumulators.
func DefaultMaxCost() core.MaxCost {
	return core.MaxCost{
		Query:       core.CostQuerySample,
		Computation: core.CostComputationLinear,
	}
}
