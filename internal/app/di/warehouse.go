package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stock_ingest/internal/feature/prices/adapters"
	bqadapter "stock_ingest/internal/feature/prices/adapters/bigquery"
	"stock_ingest/internal/feature/prices/domain"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/db"
	"stock_ingest/internal/platform/http/handler"
)

// Warehouse is the storage a run writes to.
type Warehouse interface {
	usecase.PriceWriter
	usecase.Provisioner
}

// WarehouseHandle bundles the warehouse with its lifecycle hooks.
// The underlying client is created once per process and shared by every run.
type WarehouseHandle struct {
	Warehouse Warehouse
	Check     handler.Check // nil when a readiness probe would be billed (BigQuery)
	Close     func() error
}

// NewWarehouse opens the warehouse selected by cfg.Driver.
// Every failure wraps domain.ErrConfigurationFailed.
func NewWarehouse(ctx context.Context, cfg Config) (*WarehouseHandle, error) {
	switch cfg.Driver {
	case DriverBigQuery:
		bqCfg := bqadapter.LoadConfig()
		if err := bqCfg.Validate(); err != nil {
			return nil, err
		}
		client, err := bqadapter.NewClient(ctx, bqCfg)
		if err != nil {
			return nil, err
		}
		w, err := bqadapter.NewWarehouse(client, bqCfg)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		slog.Info("warehouse ready", "driver", cfg.Driver, "table", bqCfg.TableRef())
		return &WarehouseHandle{Warehouse: w, Close: client.Close}, nil

	case DriverPostgres:
		dsn := db.BuildDSN(db.LoadConfigFromEnv())
		gdb, err := db.ConnectWithRetry(dsn, 60*time.Second, db.OpenPostgres)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfigurationFailed, err)
		}
		slog.Info("warehouse ready", "driver", cfg.Driver)
		return sqlHandle(adapters.NewPriceRepository(gdb), func() error { return db.Close(gdb) }, func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}), nil

	case DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("%w: sqlite %s: %w", domain.ErrConfigurationFailed, cfg.SQLitePath, err)
		}
		slog.Info("warehouse ready", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return sqlHandle(adapters.NewPriceRepository(gdb), func() error { return db.Close(gdb) }, nil), nil

	default:
		return nil, fmt.Errorf("%w: unknown warehouse driver %q", domain.ErrConfigurationFailed, cfg.Driver)
	}
}

func sqlHandle(w Warehouse, closeFn func() error, check handler.Check) *WarehouseHandle {
	return &WarehouseHandle{Warehouse: w, Check: check, Close: closeFn}
}

// NewIngestUsecase wires the orchestrator with the configured window.
func NewIngestUsecase(cfg Config, market usecase.PriceFetcher, w Warehouse, limiter usecase.RateLimiter, logger *slog.Logger) *usecase.IngestUsecase {
	return usecase.NewIngestUsecase(market, w, limiter,
		usecase.WithLogger(logger),
		usecase.WithWindow(cfg.Start, cfg.End),
		usecase.WithProvisioner(w),
	)
}
