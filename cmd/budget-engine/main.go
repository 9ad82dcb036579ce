package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerline/budget-engine-go/internal/config"
	"github.com/ledgerline/budget-engine-go/internal/domain"
	"github.com/ledgerline/budget-engine-go/internal/handler"
	"github.com/ledgerline/budget-engine-go/internal/infra/cache"
	"github.com/ledgerline/budget-engine-go/internal/infra/observability"
	"github.com/ledgerline/budget-engine-go/internal/infra/schedule"
	"github.com/ledgerline/budget-engine-go/internal/infra/sqlite"
	"github.com/ledgerline/budget-engine-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_path", cfg.DBPath),
		zap.Int("max_rollover_depth", cfg.MaxRolloverDepth),
		zap.Duration("view_cache_ttl", cfg.ViewCacheTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "budget-engine")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()
	logger.Info("database opened", zap.String("path", cfg.DBPath))

	// --- Services ---
	viewCache := cache.New[*domain.PeriodSummary](cfg.ViewCacheTTL)
	expander := schedule.NewExpander()

	viewSvc := service.NewViewService(store, expander, viewCache, metrics, logger)
	viewSvc.SetMaxRolloverDepth(cfg.MaxRolloverDepth)

	// --- Router ---
	router := handler.NewRouter(viewSvc, store, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
