// Command ingest runs one ingestion pass and exits.
//
// Exit status is 1 when configuration or warehouse provisioning fails, and 0
// otherwise, including when individual securities fail to fetch or write.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/feature/prices/adapters/twse"
	"stock_ingest/internal/platform/logging"
	infraredis "stock_ingest/internal/platform/redis"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env はローカル実行用。存在しなくてもよい
	_ = godotenv.Load()

	cfg, err := di.LoadConfig()
	logger := logging.Setup(cfg.LogLevel)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	// ウェアハウスのクライアントはプロセスで1つだけ作成する
	wh, err := di.NewWarehouse(ctx, cfg)
	if err != nil {
		logger.Error("failed to open warehouse", "driver", cfg.Driver, "error", err)
		return 1
	}
	defer func() {
		if err := wh.Close(); err != nil {
			logger.Error("failed to close warehouse", "error", err)
		}
	}()

	rdb, err := infraredis.NewRedisClient(ctx)
	if err != nil {
		logger.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	twseCfg := twse.LoadConfig()
	uc := di.NewIngestUsecase(cfg, di.NewMarket(twseCfg, rdb), wh.Warehouse, di.NewRateLimiter(twseCfg), logger)

	report, err := uc.Run(ctx, cfg.StockIDs)
	if err != nil {
		logger.Error("ingest failed", "run_id", report.RunID, "error", err)
		return 1
	}
	slog.Info("ingest ok",
		"run_id", report.RunID,
		"inserted", report.Inserted,
		"fetch_failures", report.FetchFailures,
		"write_failures", report.WriteFailures,
	)
	return 0
}
