// Package main provides the entry point for the paper search HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/cache"
	"github.com/helixir/paper-search-service/internal/config"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
	"github.com/helixir/paper-search-service/internal/papersources/openalex"
	"github.com/helixir/paper-search-service/internal/search"
	httpserver "github.com/helixir/paper-search-service/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(cfg.Logging)
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-search-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	var observer papersources.RequestObserver
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		observer = metrics
	}

	registry := buildRegistry(cfg, logger, observer)

	resultCache := cache.New(cfg.Cache.MaxEntries, cache.WithTTL(cfg.Cache.TTL))
	searchSvc := search.NewService(resultCache, registry.EnabledSources(), logger, metrics)
	logger.Info().
		Strs("sources", searchSvc.Sources()).
		Dur("cache_ttl", resultCache.TTL()).
		Msg("search service initialized")

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Limits: httpserver.Limits{
			DefaultLimit:   cfg.Search.DefaultLimit,
			MaxLimit:       cfg.Search.MaxLimit,
			MinQueryLength: cfg.Search.MinQueryLength,
		},
	}
	httpSrv := httpserver.NewServer(httpCfg, searchSvc, logger, metrics)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("paper-search-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down paper-search-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("paper-search-service shutdown complete")
	return nil
}

// buildRegistry registers the paper sources in the order they are tried:
// OpenAlex first, arXiv as the fallback.
func buildRegistry(cfg *config.Config, logger zerolog.Logger, observer papersources.RequestObserver) *papersources.Registry {
	registry := papersources.NewRegistry()

	oa := cfg.PaperSources.OpenAlex
	registry.Register(openalex.New(openalex.Config{
		BaseURL:   oa.BaseURL,
		Email:     oa.Email,
		Timeout:   oa.Timeout,
		RateLimit: oa.RateLimit,
		BurstSize: oa.BurstSize,
		Enabled:   oa.Enabled,
	}, logger, observer))

	ax := cfg.PaperSources.ArXiv
	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:   ax.BaseURL,
		Timeout:   ax.Timeout,
		RateLimit: ax.RateLimit,
		BurstSize: ax.BurstSize,
		Enabled:   ax.Enabled,
	}, observer))

	return registry
}
