package pipeline

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/models"
)

// FilterByDate keeps only sales whose sold_at timestamp falls in the same
// day/month/quarter/year as ref. Timestamps are compared in UTC; rows with
// no usable sold_at never match. Relative order of matches is preserved, so
// the operation is idempotent.
func FilterByDate(sales []models.Sale, ref civil.Date, g calendar.Granularity) ([]models.Sale, error) {
	if len(sales) == 0 {
		return sales, nil
	}

	out := make([]models.Sale, 0, len(sales))

	for _, sale := range sales {
		if sale.SoldAt == nil {
			continue
		}

		soldAt := sale.SoldAt.UTC()

		match, err := matchesPeriod(soldAt.Year(), int(soldAt.Month()), soldAt.Day(), ref, g)
		if err != nil {
			return nil, err
		}

		if match {
			sale.SoldAt = &soldAt
			out = append(out, sale)
		}
	}

	return out, nil
}

func matchesPeriod(year, month, day int, ref civil.Date, g calendar.Granularity) (bool, error) {
	switch g {
	case calendar.GranularityDay:
		return year == ref.Year && month == int(ref.Month) && day == ref.Day, nil
	case calendar.GranularityMonth:
		return year == ref.Year && month == int(ref.Month), nil
	case calendar.GranularityQuarter:
		return year == ref.Year && (month-1)/3 == (int(ref.Month)-1)/3, nil
	case calendar.GranularityYear:
		return year == ref.Year, nil
	default:
		return false, fmt.Errorf("%w: %q", calendar.ErrUnsupportedGranularity, g)
	}
}
