package twse

import (
	"errors"
	"testing"
	"time"

	"stock_ingest/internal/feature/prices/domain"
)

func TestParseROCDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"113/05/20", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), false},
		{"112/12/29", time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), false},
		{" 113/01/02 ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"113/02/29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), false},
		{"112/02/29", time.Time{}, true},
		{"113/02/30", time.Time{}, true},
		{"113/13/01", time.Time{}, true},
		{"113-05-20", time.Time{}, true},
		{"113/05", time.Time{}, true},
		{"abc/05/20", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseROCDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrParseFailed) {
					t.Fatalf("expected ErrParseFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseROCDate(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseClosePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1,234.50", 1234.50, false},
		{"580.00", 580.00, false},
		{"12,345,678.9", 12345678.9, false},
		{" 99.1 ", 99.1, false},
		{"0", 0, false},
		{"--", 0, true},
		{"", 0, true},
		{"-1.00", 0, true},
		{"N/A", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseClosePrice(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrParseFailed) {
					t.Fatalf("expected ErrParseFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseClosePrice(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}
