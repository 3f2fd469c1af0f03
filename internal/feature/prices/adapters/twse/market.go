package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock_ingest/internal/feature/prices/adapters/twse/dto"
	"stock_ingest/internal/feature/prices/domain"
	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

const stockDayPath = "/exchangeReport/STOCK_DAY"

// TWSEMarket はTWSEのSTOCK_DAYエンドポイントから終値を取得するPriceFetcher実装です。
type TWSEMarket struct {
	cfg    Config
	client *http.Client
}

// TWSEMarketがPriceFetcherを実装していることをコンパイル時に検証します。
var _ usecase.PriceFetcher = (*TWSEMarket)(nil)

// NewTWSEMarket は指定された設定とHTTPクライアントでTWSEMarketを生成します。
func NewTWSEMarket(cfg Config, client *http.Client) *TWSEMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Source == "" {
		cfg.Source = defaultSource
	}
	return &TWSEMarket{cfg: cfg, client: client}
}

// Source returns the label attached to every record from this market.
func (m *TWSEMarket) Source() string {
	return m.cfg.Source
}

// FetchClose はdateを含む月の日次データを取得し、最終行（直近の取引日）の終値を返します。
func (m *TWSEMarket) FetchClose(ctx context.Context, stockID string, date time.Time) (entity.PriceRecord, error) {
	q := url.Values{}
	q.Set("response", "json")
	q.Set("date", date.Format("20060102"))
	q.Set("stockNo", stockID)

	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(m.cfg.BaseURL, "/"), stockDayPath, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.PriceRecord{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return entity.PriceRecord{}, fmt.Errorf("twse request: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.PriceRecord{}, &domain.StatusError{HTTPStatus: res.StatusCode}
	}

	var body dto.StockDayResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.PriceRecord{}, fmt.Errorf("twse decode: %v: %w", err, domain.ErrFetchFailed)
	}
	if body.Stat != dto.StatOK {
		return entity.PriceRecord{}, &domain.StatusError{Stat: body.Stat}
	}

	return m.latestRecord(stockID, body.Data)
}

// latestRecord converts the last row of a month's data into a PriceRecord.
func (m *TWSEMarket) latestRecord(stockID string, rows [][]string) (entity.PriceRecord, error) {
	if len(rows) == 0 {
		return entity.PriceRecord{}, fmt.Errorf("twse: no rows: %w", domain.ErrFetchFailed)
	}
	row := rows[len(rows)-1]
	if len(row) <= dto.ColClose {
		return entity.PriceRecord{}, fmt.Errorf("twse: row has %d columns: %w", len(row), domain.ErrFetchFailed)
	}

	d, err := ParseROCDate(row[dto.ColDate])
	if err != nil {
		return entity.PriceRecord{}, err
	}
	closePrice, err := ParseClosePrice(row[dto.ColClose])
	if err != nil {
		return entity.PriceRecord{}, err
	}

	return entity.PriceRecord{
		Date:       d,
		StockID:    stockID,
		ClosePrice: closePrice,
		Source:     m.cfg.Source,
	}, nil
}
