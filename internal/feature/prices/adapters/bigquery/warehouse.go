package bigquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"stock_ingest/internal/feature/prices/domain"
	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

// Warehouse writes daily prices to a BigQuery table with dedup-on-insert.
// It owns no client lifecycle: the client is created once by the caller and
// closed by the caller.
type Warehouse struct {
	client *bigquery.Client
	cfg    Config
}

var (
	_ usecase.PriceWriter = (*Warehouse)(nil)
	_ usecase.Provisioner = (*Warehouse)(nil)
)

// NewClient creates a BigQuery client, preferring a service account key file
// when one is configured and present.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*bigquery.Client, error) {
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err == nil {
			slog.Info("using service account credentials", "path", cfg.CredentialsFile)
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		} else {
			slog.Info("credentials file not found; using default credentials", "path", cfg.CredentialsFile)
		}
	}
	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: bigquery client: %w", domain.ErrConfigurationFailed, err)
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}
	return client, nil
}

// NewWarehouse validates cfg and wraps client.
func NewWarehouse(client *bigquery.Client, cfg Config) (*Warehouse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Warehouse{client: client, cfg: cfg}, nil
}

// Schema is the daily price table layout.
func Schema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "date", Type: bigquery.DateFieldType, Required: true},
		{Name: "stock_id", Type: bigquery.StringFieldType, Required: true},
		{Name: "close_price", Type: bigquery.FloatFieldType},
		{Name: "source", Type: bigquery.StringFieldType},
	}
}

// DatasetExists reports whether the dataset exists. Not found is not an error.
func (w *Warehouse) DatasetExists(ctx context.Context) (bool, error) {
	_, err := w.client.Dataset(w.cfg.Dataset).Metadata(ctx)
	return existence(err)
}

// TableExists reports whether the table exists. Not found is not an error.
func (w *Warehouse) TableExists(ctx context.Context) (bool, error) {
	_, err := w.client.Dataset(w.cfg.Dataset).Table(w.cfg.Table).Metadata(ctx)
	return existence(err)
}

// EnsureStorage creates the dataset and table when they are missing.
func (w *Warehouse) EnsureStorage(ctx context.Context) error {
	ok, err := w.DatasetExists(ctx)
	if err != nil {
		return fmt.Errorf("check dataset %s: %w", w.cfg.Dataset, err)
	}
	if ok {
		slog.Info("dataset already exists", "dataset", w.cfg.Dataset)
	} else {
		md := &bigquery.DatasetMetadata{Location: w.cfg.Location}
		if err := w.client.Dataset(w.cfg.Dataset).Create(ctx, md); err != nil {
			return fmt.Errorf("create dataset %s: %w", w.cfg.Dataset, err)
		}
		slog.Info("created dataset", "dataset", w.cfg.Dataset, "location", w.cfg.Location)
	}

	ok, err = w.TableExists(ctx)
	if err != nil {
		return fmt.Errorf("check table %s: %w", w.cfg.TableRef(), err)
	}
	if ok {
		slog.Info("table already exists", "table", w.cfg.TableRef())
		return nil
	}
	md := &bigquery.TableMetadata{Schema: Schema()}
	if err := w.client.Dataset(w.cfg.Dataset).Table(w.cfg.Table).Create(ctx, md); err != nil {
		return fmt.Errorf("create table %s: %w", w.cfg.TableRef(), err)
	}
	slog.Info("created table", "table", w.cfg.TableRef())
	return nil
}

// row is one element of the @rows ARRAY<STRUCT> query parameter.
type row struct {
	Date       civil.Date `bigquery:"date"`
	StockID    string     `bigquery:"stock_id"`
	ClosePrice float64    `bigquery:"close_price"`
	Source     string     `bigquery:"source"`
}

func toRows(batch []entity.PriceRecord) []row {
	rows := make([]row, 0, len(batch))
	for _, r := range batch {
		rows = append(rows, row{
			Date:       civil.DateOf(r.Date),
			StockID:    r.StockID,
			ClosePrice: r.ClosePrice,
			Source:     r.Source,
		})
	}
	return rows
}

// insertQuery renders the anti-join insert for a validated table reference.
// Record values are passed only through the @rows parameter.
func insertQuery(tableRef string) string {
	return fmt.Sprintf("INSERT INTO `%[1]s` (date, stock_id, close_price, source)\n"+
		"SELECT new_data.date, new_data.stock_id, new_data.close_price, new_data.source\n"+
		"FROM UNNEST(@rows) AS new_data\n"+
		"WHERE NOT EXISTS (\n"+
		"  SELECT 1 FROM `%[1]s` AS existing\n"+
		"  WHERE existing.date = new_data.date\n"+
		"    AND existing.stock_id = new_data.stock_id\n"+
		"    AND existing.source = new_data.source\n"+
		")", tableRef)
}

// InsertIfNotExists submits the whole batch as one DML job and returns the
// number of rows the job inserted.
func (w *Warehouse) InsertIfNotExists(ctx context.Context, records []entity.PriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batch, err := domain.PrepareBatch(records)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
	}

	q := w.client.Query(insertQuery(w.cfg.TableRef()))
	q.Parameters = []bigquery.QueryParameter{{Name: "rows", Value: toRows(batch)}}

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: start job: %w", domain.ErrWriteFailed, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: wait job %s: %w", domain.ErrWriteFailed, job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("%w: job %s: %w", domain.ErrWriteFailed, job.ID(), err)
	}

	var inserted int64
	if status.Statistics != nil {
		if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			inserted = qs.NumDMLAffectedRows
		}
	}
	return inserted, nil
}

// existence maps a metadata lookup error to (exists, err); 404 is (false, nil).
func existence(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}
