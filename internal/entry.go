// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/sngforge/internal/api"
	"github.com/starford/sngforge/internal/chartservice"
	"github.com/starford/sngforge/internal/index"
	"github.com/starford/sngforge/internal/mcpserver"
	"github.com/starford/sngforge/internal/sse"
	"github.com/starford/sngforge/internal/storage"
)

// runtime holds the components shared by the HTTP and MCP front ends.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	songs  *storage.FS
	db     *index.DB
	svc    *chartservice.Service
	force  bool
}

func setup(opts []Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("songs_dir", cfg.Songs.Dir),
		slog.String("output_dir", cfg.Songs.OutputDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("arrangement", cfg.Compiler.Arrangement),
		slog.String("log_level", cfg.App.LogLevel.String()))

	for _, dir := range []string{cfg.Songs.Dir, cfg.Songs.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	songs, err := storage.NewFS(cfg.Songs.Dir)
	if err != nil {
		return nil, fmt.Errorf("init songs storage: %w", err)
	}
	out, err := storage.NewFS(cfg.Songs.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svc := chartservice.New(songs, out, db, cfg.Compiler.Service(), logger)
	return &runtime{cfg: cfg, logger: logger, songs: songs, db: db, svc: svc, force: app.force}, nil
}

// initialCompile brings the catalogue up to date with the songs directory.
func (rt *runtime) initialCompile(ctx context.Context) {
	sum, err := rt.svc.CompileAll(ctx, rt.force)
	if err != nil {
		rt.logger.Warn("initial compile failed", slog.String("error", err.Error()))
		return
	}
	rt.logger.Info("Initial compile finished",
		slog.Int("compiled", sum.Compiled),
		slog.Int("failed", sum.Failed),
		slog.Int("removed", sum.Removed))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()
	cfg, logger := rt.cfg, rt.logger

	// SSE broker receives every catalogue change.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	rt.svc.OnEvent(broker.PublishChartEvent)

	rt.initialCompile(ctx)

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := rt.db.LastRun(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"compiling"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: handler,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Recompile changed documents as the songs directory changes.
	g.Go(func() error {
		if err := index.Watch(gCtx, rt.songs.Root(), index.DefaultQuiet, logger, rt.svc.Resync); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	rt.initialCompile(ctx)

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc, rt.songs).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
