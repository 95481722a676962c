package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pitchtrack/internal/adapters/http/api"
	"github.com/okian/pitchtrack/internal/adapters/http/swagger"
	app "github.com/okian/pitchtrack/internal/app"
	"github.com/okian/pitchtrack/internal/config"
	"github.com/okian/pitchtrack/pkg/logger"
	"github.com/okian/pitchtrack/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := initLogging(os.Stdout, cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	loggerInstance := logger.Get()

	initMetrics(cfg)

	svc, err := newService(ctx, cfg, loggerInstance)
	if err != nil {
		return err
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-errCh:
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
		return err
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// initLogging initializes the global logger from the loaded configuration.
func initLogging(w io.Writer, cfg *config.Config) error {
	if err := logger.Init(logger.WithWriter(w), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// initMetrics rebuilds the metrics registry from the configured namespace,
// labels and switch.
func initMetrics(cfg *config.Config) {
	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
	)
}

// newService creates and starts the service with configuration options.
func newService(ctx context.Context, cfg *config.Config, l logger.Logger) (*app.Service, error) {
	opts, err := app.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	svc := app.New(append(opts, app.WithLogger(l))...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// newMux registers the docs and business API routes.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, api.WithMaxUploadMB(cfg.MaxUploadMB))
	apiServer.Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes the gauges derived from the store.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.RefreshMetrics(ctx); err != nil {
				logger.Get().Warn(ctx, "refresh metrics failed", logger.Error(err))
			}
		}
	}
}
