// Package adapters はpricesフィーチャーのSQLウェアハウス実装を提供します。
package adapters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"stock_ingest/internal/feature/prices/domain"
	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

// priceSQL はPriceWriterとProvisionerのgorm実装です（PostgreSQL / SQLite）。
type priceSQL struct {
	db *gorm.DB
}

var (
	_ usecase.PriceWriter = (*priceSQL)(nil)
	_ usecase.Provisioner = (*priceSQL)(nil)
)

// NewPriceRepository は指定されたDB接続でpriceSQLを生成します。
func NewPriceRepository(db *gorm.DB) *priceSQL {
	return &priceSQL{db: db}
}

// PriceModel is the daily_stock_price row. It has no unique constraint;
// InsertIfNotExists keeps (date, stock_id, source) unique.
type PriceModel struct {
	Date       time.Time `gorm:"column:date;type:date;not null;index:idx_daily_stock_price_key,priority:1"`
	StockID    string    `gorm:"column:stock_id;size:32;not null;index:idx_daily_stock_price_key,priority:2"`
	ClosePrice float64   `gorm:"column:close_price"`
	Source     string    `gorm:"column:source;size:32;index:idx_daily_stock_price_key,priority:3"`
}

func (PriceModel) TableName() string {
	return "daily_stock_price"
}

// DatasetExists reports whether the database is reachable. A SQL warehouse has
// no dataset level, so an open connection is the whole answer.
func (r *priceSQL) DatasetExists(ctx context.Context) (bool, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return false, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// TableExists reports whether the price table exists.
func (r *priceSQL) TableExists(ctx context.Context) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(&PriceModel{}), nil
}

// EnsureStorage creates the price table when it is missing.
func (r *priceSQL) EnsureStorage(ctx context.Context) error {
	if _, err := r.DatasetExists(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	ok, err := r.TableExists(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := r.db.WithContext(ctx).Migrator().CreateTable(&PriceModel{}); err != nil {
		return fmt.Errorf("create table %s: %w", PriceModel{}.TableName(), err)
	}
	return nil
}

// placeholders are the typed bind expressions for one batch row.
type placeholders struct {
	date, text, price string
}

func placeholdersFor(dialect string) placeholders {
	if dialect == "postgres" {
		return placeholders{date: "CAST(? AS DATE)", text: "CAST(? AS TEXT)", price: "CAST(? AS DOUBLE PRECISION)"}
	}
	// SQLite: CAST(... AS DATE) has NUMERIC affinity and would turn "2024-05-20" into 2024
	return placeholders{date: "?", text: "CAST(? AS TEXT)", price: "CAST(? AS REAL)"}
}

// InsertIfNotExists は(date, stock_id, source)が未登録のレコードのみを1文で挿入し、挿入件数を返します。
func (r *priceSQL) InsertIfNotExists(ctx context.Context, records []entity.PriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batch, err := domain.PrepareBatch(records)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
	}

	query, args := buildInsertSQL(PriceModel{}.TableName(), placeholdersFor(r.db.Dialector.Name()), batch)
	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrWriteFailed, res.Error)
	}
	return res.RowsAffected, nil
}

// buildInsertSQL renders the anti-join insert. Record values only ever appear in args.
func buildInsertSQL(table string, ph placeholders, batch []entity.PriceRecord) (string, []any) {
	rowSQL := fmt.Sprintf(`SELECT %s AS "date", %s AS stock_id, %s AS close_price, %s AS source`,
		ph.date, ph.text, ph.price, ph.text)

	rows := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*4)
	for _, rec := range batch {
		rows = append(rows, rowSQL)
		args = append(args, rec.Date.Format("2006-01-02"), rec.StockID, rec.ClosePrice, rec.Source)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `INSERT INTO %s ("date", stock_id, close_price, source) `, table)
	b.WriteString(`SELECT new_data."date", new_data.stock_id, new_data.close_price, new_data.source FROM (`)
	b.WriteString(strings.Join(rows, " UNION ALL "))
	b.WriteString(`) AS new_data WHERE NOT EXISTS (`)
	fmt.Fprintf(&b, `SELECT 1 FROM %s AS existing `, table)
	b.WriteString(`WHERE existing."date" = new_data."date" `)
	b.WriteString(`AND existing.stock_id = new_data.stock_id `)
	b.WriteString(`AND existing.source = new_data.source)`)
	return b.String(), args
}
