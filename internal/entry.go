// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notesd/internal/api"
	"github.com/starford/notesd/internal/mcpserver"
	"github.com/starford/notesd/internal/metrics"
	"github.com/starford/notesd/internal/sse"
	"github.com/starford/notesd/internal/storage"
	"github.com/starford/notesd/internal/watch"
)

func newApplication(opts []Option, defaultOut io.Writer) (*application, error) {
	app := &application{version: "dev", logOut: defaultOut}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func openStore(cfg *Config) (*storage.FS, error) {
	store, err := storage.NewFS(cfg.Notes.Dir, storage.WithSuffix(cfg.Notes.Suffix))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("notes_suffix", cfg.Notes.Suffix),
		slog.Bool("metrics_enabled", cfg.Metrics.Enabled),
		slog.Bool("watch_enabled", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	fsStore, err := openStore(cfg)
	if err != nil {
		return err
	}

	var (
		store      storage.Store = fsStore
		routerOpts api.Options
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.NewMetrics(reg)
		store = metrics.InstrumentStore(fsStore, m)
		routerOpts.Metrics = m
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	var broker *sse.Broker
	if cfg.Watch.Enabled {
		broker = sse.NewBroker(cfg.Watch.Heartbeat)
		defer broker.Close()
		routerOpts.Events = broker
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           api.NewRouter(store, logger, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if broker != nil {
		// Event streams end only when the broker closes their channels.
		httpServer.RegisterOnShutdown(broker.Close)
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the notes directory watcher feeding the event stream.
	if broker != nil {
		g.Go(func() error {
			err := watch.Watch(gCtx, fsStore, logger, func(kind, name, sum string) {
				broker.PublishNoteEvent(kind, name, sum)
			})
			if err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		timeout := cfg.App.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
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

// errShutdown ends the group after a signal so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the note tools over MCP on stdin/stdout. Logs go to stderr
// since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	logger := app.newLogger()

	store, err := openStore(app.config)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("notes_dir", store.Root()))
	err = mcpserver.New(store, app.version).ServeStdio(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	logger.Info("MCP server stopped")
	return nil
}
