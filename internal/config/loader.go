package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile finds the config file to use.
// Priority: explicit path > drift.yaml > drift.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("drift.yaml"); err == nil {
		return "drift.yaml"
	}
	if _, err := os.Stat("drift.yml"); err == nil {
		return "drift.yml"
	}
	return ""
}

// configExistsIn checks if a drift config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"drift.yaml", "drift.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a drift config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root from CLI flags and filesystem.
// Priority:
//  1. Explicit --project-dir flag
//  2. Infer from --assets-dir (parent if contains config or named "assets")
//  3. Search upward from CWD for drift.yaml
//  4. Current working directory
func inferProjectRoot(flags *pflag.FlagSet) string {
	// 1. Check explicit --project-dir
	if flags != nil {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" && flags.Changed("project-dir") {
			abs, err := filepath.Abs(projectDir)
			if err == nil {
				return abs
			}
			return filepath.Clean(projectDir)
		}
	}

	// 2. Infer from --assets-dir
	if flags != nil {
		if assetsDir, _ := flags.GetString("assets-dir"); assetsDir != "" && flags.Changed("assets-dir") {
			absAssets, err := filepath.Abs(assetsDir)
			if err == nil {
				parent := filepath.Dir(absAssets)

				// If parent has a config file, it's the project root
				if configExistsIn(parent) {
					return parent
				}

				// If folder is named "assets", assume parent is root
				if filepath.Base(absAssets) == "assets" {
					return parent
				}
			}
		}
	}

	// 3. Search upward from CWD for drift.yaml
	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	// 4. Default to CWD
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithEnv(cfgFile, "", flags)
}

// LoadConfigWithEnv loads configuration with an optional environment override.
// The envOverride parameter selects which environment's overrides to apply.
// The flags parameter allows CLI flags to override config file and env var values.
func LoadConfigWithEnv(cfgFile string, envOverride string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// Infer project root from flags before loading config
	// This enables the "anchor pattern" where --assets-dir testdata/assets
	// implies project root is testdata/
	projectRoot := inferProjectRoot(flags)

	// Track paths that were explicitly provided as flags (already relative to CWD).
	// These will be converted to absolute paths before the normal resolution step,
	// to prevent double-resolution when project root was inferred from them.
	var flagAssetsDir, flagCatalogPath string
	if flags != nil {
		if flags.Changed("assets-dir") {
			if v, _ := flags.GetString("assets-dir"); v != "" {
				flagAssetsDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("catalog") {
			if v, _ := flags.GetString("catalog"); v != "" {
				// Catalog path can be :memory: or a file path
				if v != ":memory:" {
					flagCatalogPath, _ = filepath.Abs(v)
				} else {
					flagCatalogPath = v
				}
			}
		}
	}

	// If an explicit config file is provided, use its directory as project root
	// (unless a more specific hint was given via flags)
	if cfgFile != "" && projectRoot == inferProjectRoot(nil) {
		// No flag-based inference happened, use config file's directory
		if absPath, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(absPath)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"catalog_path":         DefaultCatalogFile,
		"assets_dir":           DefaultAssetsDir,
		"sample_cap":           DefaultSampleCap,
		"max_cost.query":       string(core.CostQuerySample),
		"max_cost.computation": string(core.CostComputationLinear),
		"environment":          DefaultEnv,
		"verbose":              false,
		"output":               DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	// Search in project root if no explicit config file provided
	if cfgFile == "" {
		// Look for config in inferred project root
		for _, name := range []string{"drift.yaml", "drift.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DRIFT_ prefix)
	// Transform: DRIFT_ASSETS_DIR -> assets_dir
	if err := k.Load(env.Provider("DRIFT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DRIFT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: Bridge the gap between flag names and config keys
			// The CLI uses --catalog for brevity, but the config struct uses
			// catalog_path for clarity; the cost flags map into the max_cost block.
			switch key {
			case "catalog":
				return "catalog_path", posflag.FlagVal(flags, f)
			case "max_cost_query":
				return "max_cost.query", posflag.FlagVal(flags, f)
			case "max_cost_computation":
				return "max_cost.computation", posflag.FlagVal(flags, f)
			case "port":
				return "serve.port", posflag.FlagVal(flags, f)
			case "watch":
				return "serve.watch", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Set project root and resolve relative paths
	// Use project root as base for all path resolution (not config file directory)
	// This implements the "anchor pattern" for intuitive path resolution
	cfg.ProjectRoot = projectRoot

	// For paths explicitly provided via flags, use the pre-computed absolute paths
	// (already computed relative to CWD at flag parse time).
	// For paths from config file or defaults, resolve relative to project root.
	if flagAssetsDir != "" {
		cfg.AssetsDir = flagAssetsDir
	} else {
		cfg.AssetsDir = resolvePathRelativeTo(cfg.AssetsDir, projectRoot)
	}

	// Determine which environment to use for override selection
	envForOverrides := cfg.Environment
	if envOverride != "" {
		envForOverrides = envOverride
	}

	// Apply environment-specific overrides if an environment is selected
	if envForOverrides != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[envForOverrides]; ok {
			if envCfg.CatalogPath != "" {
				cfg.CatalogPath = envCfg.CatalogPath
			}

			// Merge environment source with base source
			if envCfg.Source != nil {
				cfg.Source = MergeSourceConfig(cfg.Source, envCfg.Source)
			}
		}
	}

	if flagCatalogPath != "" {
		cfg.CatalogPath = flagCatalogPath
	} else if cfg.CatalogPath != ":memory:" {
		cfg.CatalogPath = resolvePathRelativeTo(cfg.CatalogPath, projectRoot)
	}

	// Initialize default source if not specified: an in-memory DuckDB so
	// zero-config invocations still have somewhere to run queries.
	if cfg.Source == nil {
		cfg.Source = &core.SourceConfig{
			Type: "duckdb",
		}
	}

	// Apply defaults based on source type
	ApplySourceDefaults(cfg.Source)

	// Expand environment variables in source credentials
	expandSourceEnvVars(cfg.Source)

	// DuckDB database files travel with the project
	if cfg.Source.Type == "duckdb" && cfg.Source.Path != "" && cfg.Source.Path != ":memory:" {
		cfg.Source.Path = resolvePathRelativeTo(cfg.Source.Path, projectRoot)
	}

	// Validate source configuration
	if err := ValidateSource(cfg.Source); err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithEnv is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	// Match ${VAR} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSourceEnvVars expands environment variables in sensitive source fields.
func expandSourceEnvVars(s *core.SourceConfig) {
	if s == nil {
		return
	}
	s.Password = expandEnvVars(s.Password)
	s.Username = expandEnvVars(s.Username)
	s.Host = expandEnvVars(s.Host)
	s.Database = expandEnvVars(s.Database)
	s.Path = expandEnvVars(s.Path)
}

// MergeSourceConfig merges two source configs, with override taking precedence.
func MergeSourceConfig(base, override *core.SourceConfig) *core.SourceConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	// Start with a copy of base
	merged := &core.SourceConfig{
		Type:     base.Type,
		Path:     base.Path,
		Host:     base.Host,
		Port:     base.Port,
		Database: base.Database,
		Username: base.Username,
		Password: base.Password,
		Schema:   base.Schema,
		Options:  make(map[string]string),
		Params:   make(map[string]any),
	}

	// Copy base options
	for k, v := range base.Options {
		merged.Options[k] = v
	}

	// Copy base params
	for k, v := range base.Params {
		merged.Params[k] = v
	}

	// Apply overrides
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Username != "" {
		merged.Username = override.Username
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}

	// Merge options
	for k, v := range override.Options {
		merged.Options[k] = v
	}

	// Merge params (override takes precedence)
	for k, v := range override.Params {
		merged.Params[k] = v
	}

	return merged
}
