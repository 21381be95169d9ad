// Package pipeline implements the extraction-filter-join-enrich core of the
// sales/products export. It is a pure function of one Config plus injected
// loader and exporter collaborators; no global state survives a run.
package pipeline

import (
	"errors"

	"cloud.google.com/go/civil"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/export"
)

// Static errors for configuration validation
var (
	ErrProjectIDRequired = errors.New("project ID is required")
	ErrRefDateRequired   = errors.New("reference date is required")
)

// Config fully determines one pipeline execution.
type Config struct {
	ProjectID string `yaml:"projectId"`

	// RefDate anchors the period whose data is exported.
	RefDate     civil.Date           `yaml:"refDate"`
	Granularity calendar.Granularity `yaml:"granularity"`

	// Warehouse identity for the products catalog
	Dataset string `yaml:"dataset"`
	Table   string `yaml:"table"`

	// Object-store bucket holding the daily sales files
	Bucket string `yaml:"bucket"`

	// Optional allow-list filters, AND-combined when both are set
	Brands     []string `yaml:"brands,omitempty"`
	ProductIDs []string `yaml:"productIds,omitempty"`

	OutputDir string        `yaml:"outputDir"`
	Format    export.Format `yaml:"outputFormat"`

	// MaxSalesFiles bounds the number of per-day files fetched in one run.
	MaxSalesFiles int `yaml:"maxSalesFiles"`
}

// Validate checks that the configuration names a runnable export.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return ErrProjectIDRequired
	}

	if !c.RefDate.IsValid() {
		return ErrRefDateRequired
	}

	if _, err := calendar.Parse(string(c.Granularity)); err != nil {
		return err
	}

	if _, err := export.ParseFormat(string(c.Format)); err != nil {
		return err
	}

	return nil
}

// SetDefaults fills unset fields with the standard run defaults.
func (c *Config) SetDefaults() {
	if c.Granularity == "" {
		c.Granularity = calendar.GranularityDay
	}

	if c.Dataset == "" {
		c.Dataset = "bm_mock_data"
	}

	if c.Table == "" {
		c.Table = "products"
	}

	if c.Bucket == "" {
		c.Bucket = "bm_mock_sales"
	}

	if c.OutputDir == "" {
		c.OutputDir = "data/export"
	}

	if c.Format == "" {
		c.Format = export.FormatParquet
	}

	if c.MaxSalesFiles == 0 {
		c.MaxSalesFiles = 500
	}
}
