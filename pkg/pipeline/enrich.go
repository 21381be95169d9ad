package pipeline

import (
	"fmt"
	"sort"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/models"
)

// Enrich converts merged rows to export rows: sold_at is normalized to UTC,
// the sale_date/year/month/quarter reporting columns are derived from it
// (nil when sold_at is unusable), every row is stamped with one shared
// processed_at timestamp, and the result is sorted by (sale_date, order_id)
// ascending. An empty input yields an empty slice carrying the full export
// schema by type.
func (e *Engine) Enrich(rows []Merged) []models.ExportRow {
	processedAt := e.now().UTC()
	out := make([]models.ExportRow, 0, len(rows))

	for _, m := range rows {
		row := models.ExportRow{
			ProductID:   m.Sale.ProductID,
			Price:       m.Sale.Price.InexactFloat64(),
			Quantity:    m.Sale.Quantity,
			OrderID:     m.Sale.OrderID,
			ProcessedAt: processedAt.UnixMilli(),
		}

		if m.Product != nil {
			row.ProductName = m.Product.ProductName
			row.Category = m.Product.Category
			row.Brand = m.Product.Brand
			row.Condition = m.Product.Condition
		}

		if m.Sale.SoldAt != nil {
			soldAt := m.Sale.SoldAt.UTC()
			micros := soldAt.UnixMicro()
			saleDate := soldAt.Format("2006-01-02")
			year := int32(soldAt.Year())  //nolint:gosec // Calendar year fits int32
			month := int32(soldAt.Month()) //nolint:gosec // 1-12
			quarter := fmt.Sprintf("Q%d", calendar.Quarter(soldAt.Month()))

			row.SoldAt = &micros
			row.SaleDate = &saleDate
			row.Year = &year
			row.Month = &month
			row.Quarter = &quarter
		}

		out = append(out, row)
	}

	sortExportRows(out)

	return out
}

// sortExportRows orders rows by (sale_date, order_id) ascending, nil values
// after non-nil. The sort is stable so the join order breaks remaining ties.
func sortExportRows(rows []models.ExportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareNullable(rows[i].SaleDate, rows[j].SaleDate); c != 0 {
			return c < 0
		}

		return compareNullable(rows[i].OrderID, rows[j].OrderID) < 0
	})
}

func compareNullable(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}
