// QuantCore - portfolio analytics, optimization and Monte Carlo service
// Entry point for the web server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/findosh/quantcore/internal/config"
	"github.com/findosh/quantcore/internal/handlers"
	"github.com/findosh/quantcore/internal/logger"
	"github.com/findosh/quantcore/internal/middleware"
	"github.com/findosh/quantcore/internal/services/analytics"
	"github.com/findosh/quantcore/internal/services/marketdata"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Environment)

	// Initialize services
	marketDataService := marketdata.NewService(marketdata.Config{
		Provider:          marketdata.ParseProvider(cfg.MarketDataProvider),
		APIKey:            cfg.MarketDataAPIKey,
		BaseURL:           cfg.MarketDataBaseURL,
		CacheTTL:          cfg.MarketDataCacheTTL,
		Timeout:           cfg.MarketDataTimeout,
		RequestsPerSecond: cfg.MarketDataRPS,
		Burst:             cfg.MarketDataBurst,
		Logger:            log,
	})
	analyticsService := analytics.NewService(marketDataService, analytics.Options{
		Conventions: analytics.Conventions{
			TradingDaysPerYear: cfg.TradingDaysPerYear,
			RiskFreeRate:       cfg.RiskFreeRate,
		},
		FetchTimeout:  cfg.MarketDataTimeout,
		MaxIterations: cfg.SolverMaxIterations,
		Simulations: analytics.SimulationLimits{
			Default: cfg.DefaultSimulations,
			Min:     cfg.MinSimulations,
			Max:     cfg.MaxSimulations,
		},
	}, log)

	h := handlers.New(cfg, analyticsService, marketDataService, log)

	// Setup routes
	mux := http.NewServeMux()
	h.Routes(mux)
	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Apply global middleware
	handler := middleware.Chain(
		mux,
		middleware.Recover(log),
		middleware.RequestID(log),
		middleware.SecurityHeaders,
		middleware.Logger(log),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Environment).
			Str("provider", cfg.MarketDataProvider).
			Msg("QuantCore server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
