// Package config provides configuration management for the Drift CLI.
//
// Configuration is loaded from drift.yaml (or drift.yml), environment
// variables with the DRIFT_ prefix, and command-line flags, in increasing
// order of precedence. The shared warehouse connection type
// (core.SourceConfig) is defined in pkg/core and re-exported here via a
// type alias for convenience.
package config

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// SourceConfig is an alias for the shared warehouse source configuration.
// This allows CLI code to use config.SourceConfig without importing pkg/core.
type SourceConfig = core.SourceConfig

// MaxCost is an alias for the shared cost bound type.
// This allows CLI code to use config.MaxCost without importing pkg/core.
type MaxCost = core.MaxCost

// ServeConfig holds configuration for the API server.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// DefaultServeConfig returns a ServeConfig with default values.
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{
		Port:  8135,
		Watch: true,
	}
}

// GetServeConfig returns the serve config with defaults applied for any unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return DefaultServeConfig()
	}
	s := c.Serve
	if s.Port == 0 {
		s.Port = 8135
	}
	return s
}

// Config holds all CLI configuration options.
type Config struct {
	CatalogPath  string               `koanf:"catalog_path"`
	AssetsDir    string               `koanf:"assets_dir"`
	SampleCap    int                  `koanf:"sample_cap"`
	MaxCost      MaxCost              `koanf:"max_cost"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Source       *SourceConfig        `koanf:"source"`
	Serve        *ServeConfig         `koanf:"serve"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory all relative paths resolve against.
	// It is inferred at load time, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	CatalogPath string        `koanf:"catalog_path"`
	Source      *SourceConfig `koanf:"source"`
}
