package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/drift/internal/api"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port  int
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Drift API server",
		Long: `Start a local JSON API server exposing the catalog, fingerprint
extraction and comparison over HTTP:

  GET /api/health
  GET /api/assets
  GET /api/fingerprint?asset=<ref>
  GET /api/compare?a=<ref>&b=<ref>

With watching enabled (the default) the assets directory is monitored
and definition changes are re-imported into the catalog automatically.`,
		Example: `  # Start on the default port
  drift serve

  # Start on a custom port without watching
  drift serve --port 3000 --watch=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8135)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Watch the assets directory for changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// CLI flags override config file
	serveCfg := cctx.Cfg.GetServeConfig()
	port := serveCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := serveCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	// Import definitions up front so the catalog is warm before the first
	// request; watching keeps it in sync afterwards.
	if _, err := os.Stat(cctx.Cfg.AssetsDir); err == nil {
		if stats, err := cctx.Catalog.ImportDir(cctx.Cfg.AssetsDir); err != nil {
			cctx.Logger.Warn("initial import failed", "error", err)
		} else {
			cctx.Logger.Info("definitions imported",
				"tables", stats.Tables, "segments", stats.Segments, "cards", stats.Cards)
		}
	}

	server := api.NewServer(api.Config{
		Catalog:   cctx.Catalog,
		Extractor: cctx.Extractor,
		Engine:    cctx.Engine,
		Options:   cctx.Options(),
		AssetsDir: cctx.Cfg.AssetsDir,
		Port:      port,
		Watch:     watch,
		Logger:    cctx.Logger,
	})

	r := cctx.Renderer
	r.Printf("Serving Drift API on http://localhost:%d\n", port)
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
