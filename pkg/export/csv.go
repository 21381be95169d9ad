package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dataops-sre/salespipe/pkg/models"
)

func writeCSV(path string, rows []models.ExportRow) error {
	f, err := os.Create(path) //nolint:gosec // Path is derived from run configuration
	if err != nil {
		return fmt.Errorf("failed to create csv file %s: %w", path, err)
	}

	cw := csv.NewWriter(f)

	if err := cw.Write(models.ExportColumns()); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range rows {
		if err := cw.Write(csvRecord(&rows[i])); err != nil {
			_ = f.Close()

			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to flush csv file %s: %w", path, err)
	}

	return f.Close()
}

// csvRecord renders one row in ExportColumns order. Null values become
// empty fields.
func csvRecord(r *models.ExportRow) []string {
	return []string{
		strOrEmpty(r.ProductID),
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		strconv.FormatInt(r.Quantity, 10),
		microsOrEmpty(r.SoldAt),
		strOrEmpty(r.OrderID),
		strOrEmpty(r.ProductName),
		strOrEmpty(r.Category),
		strOrEmpty(r.Brand),
		strOrEmpty(r.Condition),
		strOrEmpty(r.SaleDate),
		int32OrEmpty(r.Year),
		int32OrEmpty(r.Month),
		strOrEmpty(r.Quarter),
		time.UnixMilli(r.ProcessedAt).UTC().Format(time.RFC3339),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func int32OrEmpty(v *int32) string {
	if v == nil {
		return ""
	}

	return strconv.FormatInt(int64(*v), 10)
}

func microsOrEmpty(v *int64) string {
	if v == nil {
		return ""
	}

	return time.UnixMicro(*v).UTC().Format(time.RFC3339)
}
