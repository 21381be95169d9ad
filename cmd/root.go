// Package cmd contains the CLI commands for salespipe
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dataops-sre/salespipe/pkg/pipeline"
)

// Exit codes reported to the caller, one per failure kind.
const (
	exitCodeTooManyFiles = 2
	exitCodeDataError    = 1
	exitCodeGeneric      = 99
)

//nolint:gochecknoglobals // Global vars needed for cobra CLI
var logger *logrus.Logger

// rootCmd represents the base command
//
//nolint:gochecknoglobals // Cobra commands are typically global
var rootCmd = &cobra.Command{
	Use:   "salespipe",
	Short: "Export joined product/sales data for a reporting period",
	Long: `salespipe joins the products catalog (BigQuery) with daily sales files
(GCS) for a reference date and granularity, and exports the result as a
parquet or CSV file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps the failure taxonomy to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrTooManyFiles):
		return exitCodeTooManyFiles
	case errors.Is(err, pipeline.ErrDataLoad), errors.Is(err, pipeline.ErrDataQuality):
		return exitCodeDataError
	default:
		return exitCodeGeneric
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error, fatal, panic)")

	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initLogging() {
	logLevel, err := rootCmd.PersistentFlags().GetString("log-level")
	if err != nil {
		logLevel = "info" // Default to info if error
	}

	level, parseErr := logrus.ParseLevel(logLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, defaulting to info")

		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
}
