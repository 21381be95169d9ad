// Package export serializes the final table to a parquet or CSV file at a
// deterministic, suffix-based path.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/models"
)

// ErrUnsupportedFormat is returned for an output format outside the
// enumerated set. It is a fatal configuration error.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format is the export file format.
type Format string

// Supported formats
const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ParseFormat converts a string tag to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatParquet, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Writer writes export files under a fixed output directory.
type Writer struct {
	log       logrus.FieldLogger
	outputDir string
	format    Format
}

// NewWriter creates a writer for the given directory and format.
func NewWriter(log logrus.FieldLogger, outputDir string, format Format) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	return &Writer{
		log:       log.WithField("component", "export"),
		outputDir: outputDir,
		format:    format,
	}, nil
}

// OutputPath returns the deterministic export path
// {outputDir}/sales_products_{granularity}_{suffix}.{format}.
func (w *Writer) OutputPath(ref civil.Date, g calendar.Granularity) (string, error) {
	suffix, err := calendar.BuildSuffix(ref, g)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("sales_products_%s_%s.%s", g, suffix, w.format)

	return filepath.Join(w.outputDir, filename), nil
}

// Export writes rows in the configured format, creating the directory tree
// if absent, and returns the written path. A zero-row input still produces a
// file carrying the full export column set.
func (w *Writer) Export(rows []models.ExportRow, ref civil.Date, g calendar.Granularity) (string, error) {
	path, err := w.OutputPath(ref, g)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	switch w.format {
	case FormatParquet:
		err = writeParquet(path, rows)
	case FormatCSV:
		err = writeCSV(path, rows)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, w.format)
	}

	if err != nil {
		return "", err
	}

	w.log.WithField("path", path).
		WithField("rows", len(rows)).
		WithField("format", w.format).
		Info("Wrote export file")

	return path, nil
}
