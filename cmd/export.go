package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/creasty/defaults"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/catalog"
	"github.com/dataops-sre/salespipe/pkg/export"
	"github.com/dataops-sre/salespipe/pkg/pipeline"
	"github.com/dataops-sre/salespipe/pkg/sales"
)

var (
	// ErrCredentialsNotSet is returned when GOOGLE_APPLICATION_CREDENTIALS is missing
	ErrCredentialsNotSet = errors.New("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set; it must point to a service account JSON file")
	// ErrCredentialsNotFound is returned when the credentials file does not exist
	ErrCredentialsNotFound = errors.New("credentials file specified by GOOGLE_APPLICATION_CREDENTIALS does not exist")
)

//nolint:gochecknoglobals // Cobra flags are typically global
var (
	exportCfgFile       string
	exportDate          string
	exportGranularity   string
	exportProjectID     string
	exportDataset       string
	exportTable         string
	exportBucket        string
	exportBrands        []string
	exportProductIDs    []string
	exportOutputDir     string
	exportOutputFormat  string
	exportMaxSalesFiles int
)

//nolint:gochecknoglobals // Cobra commands are typically global
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Join products (BigQuery) and sales (GCS) for a period and export as parquet/csv",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	f := exportCmd.Flags()
	f.StringVar(&exportCfgFile, "config", "", "optional YAML config file (default salespipe.yaml if present)")
	f.StringVar(&exportDate, "date", "", "reference date in YYYY-MM-DD format (required)")
	f.StringVar(&exportGranularity, "granularity", "", "time granularity: day, month, quarter, year (default day)")
	f.StringVar(&exportProjectID, "project-id", "", "GCP project ID")
	f.StringVar(&exportDataset, "bq-dataset", "", "BigQuery dataset containing the products table")
	f.StringVar(&exportTable, "bq-table", "", "products table name")
	f.StringVar(&exportBucket, "gcs-bucket", "", "GCS bucket containing the daily sales files")
	f.StringArrayVar(&exportBrands, "brand", nil, "filter on one or more brands (repeatable, AND-combined with other filters)")
	f.StringArrayVar(&exportProductIDs, "product-id", nil, "filter on one or more product_id values (repeatable, AND-combined with other filters)")
	f.StringVar(&exportOutputDir, "output-dir", "", "output directory for exports")
	f.StringVar(&exportOutputFormat, "output-format", "", "export file format: parquet or csv")
	f.IntVar(&exportMaxSalesFiles, "max-sales-files", 0, "maximum number of daily sales files to read before failing")

	_ = exportCmd.MarkFlagRequired("date")
}

// fileConfig is the optional YAML config file. Flags override it; it
// overrides the built-in defaults.
type fileConfig struct {
	ProjectID   string `yaml:"projectId"`
	Granularity string `yaml:"granularity"`

	BigQuery struct {
		Dataset string `yaml:"dataset"`
		Table   string `yaml:"table"`
	} `yaml:"bigquery"`

	GCS struct {
		Bucket string `yaml:"bucket"`
	} `yaml:"gcs"`

	Output struct {
		Dir    string `yaml:"dir"`
		Format string `yaml:"format"`
	} `yaml:"output"`

	MaxSalesFiles int `yaml:"maxSalesFiles" default:"500"`
}

// loadFileConfig loads the YAML config file. The file is allowed to not
// exist; defaults and flags cover everything it could set.
func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		path = "salespipe.yaml"
	}

	config := &fileConfig{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}

// checkCredentialsEnv ensures GOOGLE_APPLICATION_CREDENTIALS points to an
// existing service account file before any remote client is constructed.
func checkCredentialsEnv() error {
	credsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credsPath == "" {
		return ErrCredentialsNotSet
	}

	info, err := os.Stat(credsPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrCredentialsNotFound, credsPath)
	}

	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fileCfg, err := loadFileConfig(exportCfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if err := checkCredentialsEnv(); err != nil {
		return err
	}

	refDate, err := civil.ParseDate(exportDate)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", exportDate, err)
	}

	maxFiles := exportMaxSalesFiles
	if maxFiles == 0 {
		maxFiles = fileCfg.MaxSalesFiles
	}

	cfg := pipeline.Config{
		ProjectID:     firstNonEmpty(exportProjectID, fileCfg.ProjectID),
		RefDate:       refDate,
		Granularity:   calendar.Granularity(firstNonEmpty(exportGranularity, fileCfg.Granularity)),
		Dataset:       firstNonEmpty(exportDataset, fileCfg.BigQuery.Dataset),
		Table:         firstNonEmpty(exportTable, fileCfg.BigQuery.Table),
		Bucket:        firstNonEmpty(exportBucket, fileCfg.GCS.Bucket),
		Brands:        exportBrands,
		ProductIDs:    exportProductIDs,
		OutputDir:     firstNonEmpty(exportOutputDir, fileCfg.Output.Dir),
		Format:        export.Format(firstNonEmpty(exportOutputFormat, fileCfg.Output.Format)),
		MaxSalesFiles: maxFiles,
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	bqClient, err := catalog.NewBigQueryClient(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := bqClient.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close BigQuery client")
		}
	}()

	gcsStore, err := sales.NewGCSStore(ctx, cfg.Bucket)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := gcsStore.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close storage client")
		}
	}()

	writer, err := export.NewWriter(logger, cfg.OutputDir, cfg.Format)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(
		logger,
		cfg,
		catalog.NewLoader(logger, bqClient, cfg.ProjectID, cfg.Dataset, cfg.Table),
		sales.NewLoader(logger, gcsStore, cfg.MaxSalesFiles),
		writer,
	)
	if err != nil {
		return err
	}

	path, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Export written to: %s\n", path)

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
