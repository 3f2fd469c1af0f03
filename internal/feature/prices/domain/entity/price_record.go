// Package entity defines the domain models for the prices feature.
package entity

import "time"

// PriceRecord is one end-of-day close price for a security from a single feed.
// (Date, StockID, Source) identifies a row in the warehouse.
type PriceRecord struct {
	Date       time.Time // Trading day the close applies to (UTC midnight)
	StockID    string    // Security code (e.g., "2330", "0050")
	ClosePrice float64   // Closing price, never negative
	Source     string    // Feed label (e.g., "TWSE")
}

// RecordKey identifies a row in the warehouse. It is comparable and usable as a map key.
type RecordKey struct {
	Date    string // YYYY-MM-DD
	StockID string
	Source  string
}

// Key returns the uniqueness key of the record.
func (r PriceRecord) Key() RecordKey {
	return RecordKey{Date: r.Date.Format("2006-01-02"), StockID: r.StockID, Source: r.Source}
}
