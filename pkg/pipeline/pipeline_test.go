package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-sre/salespipe/internal/testutil"
	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/export"
	"github.com/dataops-sre/salespipe/pkg/models"
)

type fakeProductSource struct {
	products []models.Product
	err      error
	calls    int
}

func (f *fakeProductSource) LoadProducts(_ context.Context) ([]models.Product, error) {
	f.calls++

	return f.products, f.err
}

type fakeSalesSource struct {
	sales []models.Sale
	err   error
	calls int
	start civil.Date
	end   civil.Date
}

func (f *fakeSalesSource) LoadSales(_ context.Context, start, end civil.Date) ([]models.Sale, error) {
	f.calls++
	f.start = start
	f.end = end

	return f.sales, f.err
}

type fakeExporter struct {
	rows  []models.ExportRow
	calls int
	err   error
}

func (f *fakeExporter) Export(rows []models.ExportRow, _ civil.Date, _ calendar.Granularity) (string, error) {
	f.calls++
	f.rows = rows

	if f.err != nil {
		return "", f.err
	}

	return "data/export/sales_products_test.parquet", nil
}

func testConfig() Config {
	return Config{
		ProjectID:   "test-project",
		RefDate:     civil.Date{Year: 2025, Month: time.January, Day: 10},
		Granularity: calendar.GranularityMonth,
		Format:      export.FormatParquet,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return logger
}

func TestRunner_Run_EndToEnd(t *testing.T) {
	products := &fakeProductSource{products: []models.Product{
		testutil.Product("P1", "Widget", "tools", "BrandX", "new"),
		testutil.Product("P2", "Gadget", "tools", "BrandY", "used"),
	}}
	sales := &fakeSalesSource{sales: []models.Sale{
		testutil.Sale("P1", "O1", "2025-01-10T10:00:00Z", 9.99, 1),
		testutil.Sale("P2", "O2", "2025-01-31T23:59:00Z", 4.99, 2),
		testutil.Sale("P1", "O3", "2025-02-01T00:00:00Z", 9.99, 1), // outside january
	}}
	exporter := &fakeExporter{}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	path, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	// The loader was asked for the whole reference month.
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 1}, sales.start)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 31}, sales.end)

	require.Equal(t, 1, exporter.calls)
	require.Len(t, exporter.rows, 2)
	assert.Equal(t, "O1", *exporter.rows[0].OrderID)
	assert.Equal(t, "O2", *exporter.rows[1].OrderID)
	assert.Equal(t, "Widget", *exporter.rows[0].ProductName)

	// One shared processed_at stamp across the run.
	assert.Equal(t, exporter.rows[0].ProcessedAt, exporter.rows[1].ProcessedAt)
}

func TestRunner_Run_EmptySalesExportsEmptyDataset(t *testing.T) {
	products := &fakeProductSource{products: []models.Product{
		testutil.Product("P1", "Widget", "tools", "BrandX", "new"),
	}}
	sales := &fakeSalesSource{sales: []models.Sale{}}
	exporter := &fakeExporter{}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, exporter.calls)
	assert.NotNil(t, exporter.rows)
	assert.Empty(t, exporter.rows)
}

func TestRunner_Run_NoRowsMatchPeriodExportsEmptyDataset(t *testing.T) {
	products := &fakeProductSource{}
	sales := &fakeSalesSource{sales: []models.Sale{
		testutil.Sale("P1", "O1", "2024-06-01T10:00:00Z", 9.99, 1),
	}}
	exporter := &fakeExporter{}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, exporter.calls)
	assert.Empty(t, exporter.rows)
}

func TestRunner_Run_ProductLoadFailureAborts(t *testing.T) {
	products := &fakeProductSource{err: fmt.Errorf("%w: boom", ErrDataLoad)}
	sales := &fakeSalesSource{}
	exporter := &fakeExporter{}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrDataLoad)
	assert.Zero(t, sales.calls)
	assert.Zero(t, exporter.calls)
}

func TestRunner_Run_SalesLoadFailureAborts(t *testing.T) {
	products := &fakeProductSource{}
	sales := &fakeSalesSource{err: fmt.Errorf("%w: range too wide", ErrTooManyFiles)}
	exporter := &fakeExporter{}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrTooManyFiles)
	assert.ErrorIs(t, err, ErrDataLoad)
	assert.Zero(t, exporter.calls)
}

func TestRunner_Run_ExportFailurePropagates(t *testing.T) {
	products := &fakeProductSource{}
	sales := &fakeSalesSource{}
	exporter := &fakeExporter{err: errors.New("disk full")}

	runner, err := NewRunner(testLogger(), testConfig(), products, sales, exporter)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ProjectID = ""

	_, err := NewRunner(testLogger(), cfg, &fakeProductSource{}, &fakeSalesSource{}, &fakeExporter{})
	assert.ErrorIs(t, err, ErrProjectIDRequired)
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{
		ProjectID: "test-project",
		RefDate:   civil.Date{Year: 2025, Month: time.January, Day: 10},
	}

	cfg.SetDefaults()

	assert.Equal(t, calendar.GranularityDay, cfg.Granularity)
	assert.Equal(t, "bm_mock_data", cfg.Dataset)
	assert.Equal(t, "products", cfg.Table)
	assert.Equal(t, "bm_mock_sales", cfg.Bucket)
	assert.Equal(t, "data/export", cfg.OutputDir)
	assert.Equal(t, export.FormatParquet, cfg.Format)
	assert.Equal(t, 500, cfg.MaxSalesFiles)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing project",
			mutate:  func(c *Config) { c.ProjectID = "" },
			wantErr: ErrProjectIDRequired,
		},
		{
			name:    "missing ref date",
			mutate:  func(c *Config) { c.RefDate = civil.Date{} },
			wantErr: ErrRefDateRequired,
		},
		{
			name:    "bad granularity",
			mutate:  func(c *Config) { c.Granularity = "week" },
			wantErr: calendar.ErrUnsupportedGranularity,
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Format = "xlsx" },
			wantErr: export.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SetDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
