// Package bigquery provides the BigQuery warehouse for daily prices.
package bigquery

import (
	"fmt"
	"os"
	"regexp"

	"stock_ingest/internal/feature/prices/domain"
)

// Config holds configuration for the BigQuery warehouse.
type Config struct {
	ProjectID       string // GCP project hosting the dataset
	Dataset         string // Dataset name (e.g., "tw_stock")
	Table           string // Table name (e.g., "daily_stock_price")
	Location        string // Dataset location used on creation and for query jobs
	CredentialsFile string // Optional service account key; ADC is used when empty or missing
}

// LoadConfig loads BigQuery configuration from environment variables.
func LoadConfig() Config {
	return Config{
		ProjectID:       os.Getenv("PROJECT_ID"),
		Dataset:         envOr("BQ_DATASET", "tw_stock"),
		Table:           envOr("BQ_TABLE", "daily_stock_price"),
		Location:        envOr("REGION", "asia-east1"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

var (
	projectIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
	namePattern      = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// maxNameLen は BigQuery のデータセット名・テーブル名の上限です。
const maxNameLen = 1024

func validName(s string) bool {
	return len(s) <= maxNameLen && namePattern.MatchString(s)
}

// Validate checks the identifiers that end up inside query text.
func (c Config) Validate() error {
	if !projectIDPattern.MatchString(c.ProjectID) {
		return fmt.Errorf("%w: invalid project id %q", domain.ErrConfigurationFailed, c.ProjectID)
	}
	if !validName(c.Dataset) {
		return fmt.Errorf("%w: invalid dataset %q", domain.ErrConfigurationFailed, c.Dataset)
	}
	if !validName(c.Table) {
		return fmt.Errorf("%w: invalid table %q", domain.ErrConfigurationFailed, c.Table)
	}
	return nil
}

// TableRef returns the fully qualified "project.dataset.table" name.
func (c Config) TableRef() string {
	return c.ProjectID + "." + c.Dataset + "." + c.Table
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
