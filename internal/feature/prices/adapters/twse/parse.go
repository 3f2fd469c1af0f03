package twse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock_ingest/internal/feature/prices/domain"
)

// rocEraOffset is the difference between Gregorian and Republic of China (Minguo) years.
const rocEraOffset = 1911

// ParseROCDate converts a "YYY/MM/DD" Minguo date (e.g. "113/05/20") into a UTC date.
func ParseROCDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, domain.ErrParseFailed)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("parse date %q: %w", s, domain.ErrParseFailed)
		}
		nums[i] = n
	}

	year, month, day := nums[0]+rocEraOffset, time.Month(nums[1]), nums[2]
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date silently normalizes 02/30 into March
	if t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("parse date %q: out of range: %w", s, domain.ErrParseFailed)
	}
	return t, nil
}

// ParseClosePrice parses a thousands-separated price such as "1,234.50".
func ParseClosePrice(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, fmt.Errorf("parse close %q: empty: %w", s, domain.ErrParseFailed)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse close %q: %w", s, domain.ErrParseFailed)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse close %q: negative: %w", s, domain.ErrParseFailed)
	}
	f, _ := d.Float64()
	return f, nil
}
