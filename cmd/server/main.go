// Command server exposes the ingestion as an HTTP trigger for a scheduler.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/app/router"
	"stock_ingest/internal/feature/prices/adapters/twse"
	pricehandler "stock_ingest/internal/feature/prices/transport/handler"
	"stock_ingest/internal/platform/http/handler"
	"stock_ingest/internal/platform/logging"
	infraredis "stock_ingest/internal/platform/redis"
)

func main() {
	_ = godotenv.Load()

	cfg, err := di.LoadConfig()
	logger := logging.Setup(cfg.LogLevel)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warehouse (プロセス起動時に1回だけ作成し、全リクエストで共有)
	wh, err := di.NewWarehouse(ctx, cfg)
	if err != nil {
		logger.Error("failed to open warehouse", "driver", cfg.Driver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := wh.Close(); err != nil {
			logger.Error("failed to close warehouse", "error", err)
		}
	}()

	// Redis
	var rdb *redis.Client
	if tmp, err := infraredis.NewRedisClient(ctx); err != nil {
		logger.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	twseCfg := twse.LoadConfig()
	uc := di.NewIngestUsecase(cfg, di.NewMarket(twseCfg, rdb), wh.Warehouse, di.NewRateLimiter(twseCfg), logger)
	trigger := pricehandler.NewTriggerHandler(uc, cfg.StockIDs, cfg.RunTimeout)

	checks := map[string]handler.Check{"warehouse": wh.Check}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if cfg.TriggerSecret == "" {
		logger.Warn("TRIGGER_JWT_SECRET is not set. /run is unauthenticated.")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(trigger, cfg.TriggerSecret, checks),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "securities", cfg.StockIDs)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
