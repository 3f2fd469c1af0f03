package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"stock_ingest/internal/feature/prices/domain/entity"
)

// forbiddenRunes are delimiters that have no business in a security code or source tag.
const forbiddenRunes = "'\"`;\\"

// ValidateRecord rejects records that cannot be written safely.
func ValidateRecord(r entity.PriceRecord) error {
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if err := validateField("stock_id", r.StockID); err != nil {
		return err
	}
	if err := validateField("source", r.Source); err != nil {
		return err
	}
	if math.IsNaN(r.ClosePrice) || math.IsInf(r.ClosePrice, 0) || r.ClosePrice < 0 {
		return fmt.Errorf("%w: close_price %v", ErrInvalidRecord, r.ClosePrice)
	}
	return nil
}

func validateField(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidRecord, name)
	}
	if strings.ContainsAny(v, forbiddenRunes) {
		return fmt.Errorf("%w: %s %q contains a delimiter", ErrInvalidRecord, name, v)
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s %q contains a control character", ErrInvalidRecord, name, v)
		}
	}
	return nil
}

// PrepareBatch validates every record and drops repeated (date, stock_id, source)
// triples, keeping the first. Any invalid record rejects the whole batch.
func PrepareBatch(records []entity.PriceRecord) ([]entity.PriceRecord, error) {
	seen := make(map[entity.RecordKey]struct{}, len(records))
	out := make([]entity.PriceRecord, 0, len(records))
	for i, r := range records {
		if err := ValidateRecord(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}
