// Package dto defines data transfer objects for the TWSE API responses.
package dto

// StockDayResponse represents the JSON response of the exchangeReport/STOCK_DAY endpoint.
// Each data row is
// [date(ROC), volume, turnover, open, high, low, close, change, transactions].
type StockDayResponse struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date,omitempty"`
	Title  string     `json:"title,omitempty"`
	Fields []string   `json:"fields,omitempty"`
	Data   [][]string `json:"data"`
}

// Column indexes within a STOCK_DAY row.
const (
	ColDate  = 0
	ColClose = 6
)

// StatOK is the stat value of a successful response.
const StatOK = "OK"
