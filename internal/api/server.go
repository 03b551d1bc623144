// Package api provides the JSON API server for Drift.
package api

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/drift/internal/catalog"
	"github.com/leapstack-labs/drift/internal/comparison"
	"github.com/leapstack-labs/drift/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Server is the drift API server.
type Server struct {
	catalog   *catalog.Store
	extractor comparison.Extractor
	engine    *comparison.Engine
	opts      core.Options
	assetsDir string
	port      int
	watch     bool
	logger    *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Catalog   *catalog.Store
	Extractor comparison.Extractor
	Engine    *comparison.Engine
	Options   core.Options
	AssetsDir string
	Port      int
	Watch     bool
	Logger    *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		catalog:   cfg.Catalog,
		extractor: cfg.Extractor,
		engine:    cfg.Engine,
		opts:      cfg.Options,
		assetsDir: cfg.AssetsDir,
		port:      cfg.Port,
		watch:     cfg.Watch,
		logger:    logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
		requestLogger(s.logger),
	)

	handlers := NewHandlers(s.catalog, s.extractor, s.engine, s.opts, s.logger)
	handlers.SetupRoutes(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start definition watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchAssets(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs one line per completed request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// watchAssets watches the assets directory for definition file changes and
// re-imports them into the catalog.
func (s *Server) watchAssets(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch assets directory recursively
	if err := watchDirRecursive(watcher, s.assetsDir); err != nil {
		s.logger.Error("failed to watch assets directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("definitions changed, re-importing", "file", event.Name)

				stats, err := s.catalog.ImportDir(s.assetsDir)
				if err != nil {
					s.logger.Error("import failed", "error", err)
					return
				}
				s.logger.Info("definitions reloaded",
					"tables", stats.Tables,
					"segments", stats.Segments,
					"cards", stats.Cards,
				)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
