package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/catalog"
	"github.com/leapstack-labs/drift/internal/cli/output"
	"github.com/leapstack-labs/drift/internal/comparison"
	"github.com/leapstack-labs/drift/internal/config"
	"github.com/leapstack-labs/drift/internal/extraction"
	"github.com/leapstack-labs/drift/internal/fingerprint"
	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/leapstack-labs/drift/pkg/warehouse"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Catalog   *catalog.Store
	Source    warehouse.Source
	Extractor *extraction.Extractor
	Engine    *comparison.Engine
	Renderer  *output.Renderer
}

// Options returns the extraction options derived from the configuration.
func (c *CommandContext) Options() core.Options {
	return core.Options{MaxCost: c.Cfg.MaxCost}
}

// NewCommandContext creates a CommandContext with an open catalog, a
// connected warehouse source, and the engines built on top of them.
// Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	src, err := connectSource(cmd.Context(), cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	policy := extraction.NewPolicy(cfg.SampleCap)
	extractor := extraction.New(src, fingerprint.NewBuilder(logger), policy, logger)
	engine := comparison.NewEngine(extractor, logger)

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = src.Close()
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Catalog:   store,
		Source:    src,
		Extractor: extractor,
		Engine:    engine,
		Renderer:  r,
	}, cleanup, nil
}

// NewCommandContextWithoutSource creates a CommandContext with only the
// catalog open. Useful for commands that never touch the warehouse.
func NewCommandContextWithoutSource(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Catalog:  store,
		Renderer: r,
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	catalogPath := getEnvOrDefault("DRIFT_CATALOG_PATH", config.DefaultCatalogFile)
	assetsDir := getEnvOrDefault("DRIFT_ASSETS_DIR", config.DefaultAssetsDir)
	environment := getEnvOrDefault("DRIFT_ENVIRONMENT", config.DefaultEnv)
	verbose := os.Getenv("DRIFT_VERBOSE") == "true"
	outputFormat := os.Getenv("DRIFT_OUTPUT")

	cfg := &config.Config{
		CatalogPath:  catalogPath,
		AssetsDir:    assetsDir,
		SampleCap:    config.DefaultSampleCap,
		MaxCost:      config.DefaultMaxCost(),
		Environment:  environment,
		Verbose:      verbose,
		OutputFormat: outputFormat,
		Source:       &core.SourceConfig{Type: "duckdb"},
	}
	config.ApplySourceDefaults(cfg.Source)
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openCatalog(cfg *config.Config, logger *slog.Logger) (*catalog.Store, error) {
	store := catalog.NewStore(logger)
	if err := store.Open(cfg.CatalogPath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func connectSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (warehouse.Source, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("no source configured\nHint: add a source section to drift.yaml or run 'drift init'")
	}

	src, err := warehouse.NewSource(*cfg.Source, logger)
	if err != nil {
		return nil, err
	}
	if err := src.Connect(ctx, *cfg.Source); err != nil {
		return nil, fmt.Errorf("failed to connect to %s source: %w", cfg.Source.Type, err)
	}
	return src, nil
}
