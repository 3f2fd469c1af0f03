// Package usecase implements the ingestion pipeline for end-of-day prices.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stock_ingest/internal/feature/prices/domain"
	"stock_ingest/internal/feature/prices/domain/daterange"
	"stock_ingest/internal/feature/prices/domain/entity"
)

// PriceFetcher retrieves one close price for a security and target date.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceFetcher interface {
	FetchClose(ctx context.Context, stockID string, date time.Time) (entity.PriceRecord, error)
}

// PriceWriter persists records that are not already stored under (date, stock_id, source).
type PriceWriter interface {
	InsertIfNotExists(ctx context.Context, records []entity.PriceRecord) (int64, error)
}

// Provisioner makes sure the destination storage exists before a run.
type Provisioner interface {
	EnsureStorage(ctx context.Context) error
}

// RateLimiter spaces out calls to the upstream API.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Report summarizes one run. Per-security failures are counted, not returned.
type Report struct {
	RunID         string
	Securities    int
	Fetched       int
	FetchFailures int
	WriteFailures int
	Inserted      int64
}

// IngestUsecase fetches prices for a list of securities and writes them with dedup.
// It is not safe for concurrent Runs against the same table: the writer's existence
// check and insert are only race-free when runs are serialized.
type IngestUsecase struct {
	market      PriceFetcher
	writer      PriceWriter
	rateLimiter RateLimiter
	provisioner Provisioner
	logger      *slog.Logger
	now         func() time.Time
	start       *time.Time
	end         *time.Time
}

// Option configures an IngestUsecase.
type Option func(*IngestUsecase)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(iu *IngestUsecase) {
		if l != nil {
			iu.logger = l
		}
	}
}

// WithClock overrides the clock used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(iu *IngestUsecase) {
		if now != nil {
			iu.now = now
		}
	}
}

// WithWindow sets an explicit fetch window. A nil start means today; a nil end
// means only the start day is fetched.
func WithWindow(start, end *time.Time) Option {
	return func(iu *IngestUsecase) {
		iu.start = start
		iu.end = end
	}
}

// WithProvisioner makes Run ensure storage exists before processing securities.
func WithProvisioner(p Provisioner) Option {
	return func(iu *IngestUsecase) {
		iu.provisioner = p
	}
}

// NewIngestUsecase creates a new IngestUsecase.
func NewIngestUsecase(market PriceFetcher, writer PriceWriter, rateLimiter RateLimiter, opts ...Option) *IngestUsecase {
	iu := &IngestUsecase{
		market:      market,
		writer:      writer,
		rateLimiter: rateLimiter,
		logger:      slog.Default(),
		now:         taipeiNow,
	}
	for _, opt := range opts {
		opt(iu)
	}
	return iu
}

// Run processes each security in order. Fetch and write failures are logged and
// counted; only provisioning failures and context cancellation are returned.
func (iu *IngestUsecase) Run(ctx context.Context, stockIDs []string) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	logger := iu.logger.With("run_id", report.RunID)

	if iu.provisioner != nil {
		if err := iu.provisioner.EnsureStorage(ctx); err != nil {
			logger.Error("failed to prepare warehouse", "error", err)
			return report, fmt.Errorf("%w: %w", domain.ErrConfigurationFailed, err)
		}
	}

	targets := iu.targets()
	logger.Info("ingest started", "securities", len(stockIDs), "targets", len(targets))

	for _, id := range stockIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Securities++

		records, failures, err := iu.fetchAll(ctx, logger, id, targets)
		report.Fetched += len(records)
		report.FetchFailures += failures
		if err != nil {
			return report, err
		}

		inserted, err := iu.writer.InsertIfNotExists(ctx, records)
		if err != nil {
			// 1つの銘柄で失敗しても処理を止めずに次の銘柄へ
			report.WriteFailures++
			logger.Error("failed to write prices", "stock_id", id, "records", len(records), "error", err)
			continue
		}
		report.Inserted += inserted
		logger.Info("prices written", "stock_id", id, "records", len(records), "inserted", inserted)
	}

	logger.Info("ingest finished",
		"securities", report.Securities,
		"fetched", report.Fetched,
		"fetch_failures", report.FetchFailures,
		"write_failures", report.WriteFailures,
		"inserted", report.Inserted,
	)
	return report, nil
}

// fetchAll fetches every target date for one security, skipping failed dates.
// The returned error is non-nil only when ctx is done.
func (iu *IngestUsecase) fetchAll(ctx context.Context, logger *slog.Logger, stockID string, targets []time.Time) ([]entity.PriceRecord, int, error) {
	records := make([]entity.PriceRecord, 0, len(targets))
	failures := 0
	for _, d := range targets {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return records, failures, err
		}
		rec, err := iu.market.FetchClose(ctx, stockID, d)
		if err != nil {
			if ctx.Err() != nil {
				return records, failures, ctx.Err()
			}
			failures++
			logger.Warn("failed to fetch price", "stock_id", stockID, "date", d.Format("2006-01-02"), "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, failures, nil
}

// targets resolves the configured window into query dates.
func (iu *IngestUsecase) targets() []time.Time {
	start := iu.now()
	if iu.start != nil {
		start = *iu.start
	}
	return daterange.Generate(start, iu.end)
}

var taipei = loadTaipei()

func loadTaipei() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// taipeiNow is the exchange-local current time; "today" follows the TWSE calendar.
func taipeiNow() time.Time {
	return time.Now().In(taipei)
}
