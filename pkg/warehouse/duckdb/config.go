package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from core.SourceConfig.Params using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "parquet", "json")
	Extensions []string `mapstructure:"extensions"`

	// Settings to apply at session level (e.g., memory_limit, threads)
	Settings map[string]string `mapstructure:"settings"`
}

// ParseParams decodes the generic params map into DuckDB-specific Params.
// A nil map yields empty Params.
func ParseParams(raw map[string]any) (*Params, error) {
	params := &Params{}
	if len(raw) == 0 {
		return params, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode params: %w", err)
	}
	return params, nil
}
