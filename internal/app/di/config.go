package di

import (
	"fmt"
	"os"
	"strings"
	"time"

	"stock_ingest/internal/feature/prices/domain"
	jwtmw "stock_ingest/internal/platform/jwt"
)

// Warehouse drivers.
const (
	DriverBigQuery = "bigquery"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config はバイナリ共通の設定です。アダプタ固有の設定は各パッケージの LoadConfig で読み込みます。
type Config struct {
	StockIDs      []string
	Start         *time.Time // nil = 台北時間の今日
	End           *time.Time // nil = Start の日のみ
	Driver        string
	SQLitePath    string
	Port          string
	LogLevel      string
	RunTimeout    time.Duration
	TriggerSecret string
}

// LoadConfig は環境変数から Config を読み込みます。
func LoadConfig() (Config, error) {
	cfg := Config{
		StockIDs:      ParseStockIDs(envOr("STOCK_IDS", "2330,0050")),
		Driver:        strings.ToLower(envOr("WAREHOUSE_DRIVER", DriverBigQuery)),
		SQLitePath:    envOr("SQLITE_PATH", "stock_ingest.db"),
		Port:          envOr("PORT", "8080"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		RunTimeout:    10 * time.Minute,
		TriggerSecret: os.Getenv(jwtmw.EnvKeyTriggerSecret),
	}

	if len(cfg.StockIDs) == 0 {
		return cfg, fmt.Errorf("%w: STOCK_IDS is empty", domain.ErrConfigurationFailed)
	}
	switch cfg.Driver {
	case DriverBigQuery, DriverPostgres, DriverSQLite:
	default:
		return cfg, fmt.Errorf("%w: unknown WAREHOUSE_DRIVER %q", domain.ErrConfigurationFailed, cfg.Driver)
	}

	if v := os.Getenv("RUN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: RUN_TIMEOUT: %w", domain.ErrConfigurationFailed, err)
		}
		cfg.RunTimeout = d
	}

	var err error
	if cfg.Start, err = envDate("INGEST_START_DATE"); err != nil {
		return cfg, err
	}
	if cfg.End, err = envDate("INGEST_END_DATE"); err != nil {
		return cfg, err
	}
	if cfg.End != nil && cfg.Start == nil {
		return cfg, fmt.Errorf("%w: INGEST_END_DATE requires INGEST_START_DATE", domain.ErrConfigurationFailed)
	}
	return cfg, nil
}

// ParseStockIDs はカンマ区切りの銘柄コードを分割します。空要素と重複は除きます。
func ParseStockIDs(s string) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func envDate(key string) (*time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigurationFailed, key, err)
	}
	return &t, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
