package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/tally/internal/adapters/http/api"
	"github.com/okian/tally/internal/adapters/http/swagger"
	"github.com/okian/tally/internal/adapters/repository"
	app "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/internal/snapshot"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}()

	svc, err := newService(cfg, store, log)
	if err != nil {
		return err
	}
	if cfg.SeedFile != "" {
		snap, err := snapshot.Load(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		if err := svc.Seed(ctx, snap); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startMetricsUpdater(ctx, svc, cfg.MetricsInterval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("event", cfg.Event.Name),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the configured record store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := repository.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresStore(db), db.Close, nil
	case config.StoreMemory, "":
		return repository.NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// newService builds the tabulation service from the event definition.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) (*app.Service, error) {
	book, err := cfg.Event.Book()
	if err != nil {
		return nil, err
	}
	calc, err := cfg.Event.Calculator()
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithRubrics(book),
		app.WithDeductions(calc),
		app.WithClassifications(cfg.Event.Categories, cfg.Event.Levels, cfg.Event.Mediums),
		app.WithPointsCutoff(cfg.PointsCutoff),
		app.WithFetchTimeout(cfg.FetchTimeout),
	)
}

// newRouter mounts the API docs and the business API on one router.
func newRouter(ctx context.Context, svc *app.Service) http.Handler {
	r := chi.NewRouter()
	swagger.Register(ctx, r)
	r.Mount("/", api.NewServer(svc).Routes(ctx))
	return r
}

// startMetricsUpdater refreshes store and runtime gauges until ctx ends.
func startMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateMetrics(ctx, svc)
		}
	}
}

func updateMetrics(ctx context.Context, svc *app.Service) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())

	// GetStats refreshes the store gauges.
	if _, err := svc.GetStats(ctx); err != nil {
		logger.Get().Warn(ctx, "refreshing store metrics failed", logger.Error(err))
	}
}
