package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/leapstack-labs/drift/pkg/warehouse"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog_path is required")
	}
	if c.SampleCap < 0 {
		return fmt.Errorf("sample_cap must not be negative")
	}

	// Only validate directory existence if we're running a command that needs it
	// This allows help commands to work without a valid directory
	return nil
}

// ValidateAssetsDir checks if the assets directory exists.
func (c *Config) ValidateAssetsDir() error {
	if _, err := os.Stat(c.AssetsDir); os.IsNotExist(err) {
		return fmt.Errorf("assets directory does not exist: %s\nHint: Create the directory or use --assets-dir to specify a different path", c.AssetsDir)
	}
	return nil
}

// ValidateSource checks if the source configuration is valid.
// It uses the warehouse registry to determine which source types are available.
func ValidateSource(s *core.SourceConfig) error {
	if s == nil || s.Type == "" {
		return fmt.Errorf("source type is required")
	}

	// Use warehouse registry as single source of truth
	if !warehouse.IsRegistered(strings.ToLower(s.Type)) {
		return &warehouse.UnknownSourceError{
			Type:      s.Type,
			Available: warehouse.ListSources(),
		}
	}

	return nil
}
