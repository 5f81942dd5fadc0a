package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/skillboard/internal/adapters/http/api"
	"github.com/okian/skillboard/internal/adapters/http/site"
	"github.com/okian/skillboard/internal/adapters/http/swagger"
	"github.com/okian/skillboard/internal/adapters/platform"
	service "github.com/okian/skillboard/internal/app"
	"github.com/okian/skillboard/internal/config"
	"github.com/okian/skillboard/pkg/logger"
	"github.com/okian/skillboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
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
	// Bootstrap logger so config errors are reported consistently.
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := metrics.Configure(metricsOptions(cfg)...); err != nil {
		return fmt.Errorf("failed to configure metrics: %w", err)
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	mux, err := newMux(ctx, cfg, svc)
	if err != nil {
		return err
	}

	log.Info(ctx, "skill groups configured", logger.String("groups", strings.Join(svc.GroupKeys(), ",")))

	go metrics.StartSystemUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("graphql_url", cfg.GraphQLURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// metricsOptions maps the metrics_* keys onto the global manager.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
		metrics.WithConstLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
	}
}

// newService wires the platform client and the configured skill groups
// into the dashboard service.
func newService(cfg *config.Config) (*service.Service, error) {
	opts, err := service.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := platform.New(cfg.GraphQLURL, cfg.SigninURL, platform.WithTimeout(cfg.RequestTimeout()))
	return service.New(append(opts, service.WithPlatform(client))...), nil
}

// newMux registers the docs, JSON API and HTML pages.
func newMux(ctx context.Context, cfg *config.Config, svc *service.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	limiter := api.NewSignInLimiter(cfg.SigninRatePerMinute, cfg.SigninBurst)
	api.NewServer(svc,
		api.WithSessionCookie(cfg.SessionCookie),
		api.WithSignInLimiter(limiter),
	).Register(ctx, mux)

	pages, err := site.New(svc,
		site.WithSessionCookie(cfg.SessionCookie),
		site.WithSecureCookies(cfg.CookieSecure),
		site.WithSignInLimiter(limiter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build site: %w", err)
	}
	pages.Register(ctx, mux)
	return mux, nil
}
