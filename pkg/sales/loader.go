package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/models"
	"github.com/dataops-sre/salespipe/pkg/observability"
	"github.com/dataops-sre/salespipe/pkg/pipeline"
)

const (
	// salesFilePrefix is the shared key prefix of all daily sales files.
	salesFilePrefix = "sales_"

	// diagnosticListLimit bounds the missing-day diagnostic listing.
	diagnosticListLimit = 10
)

// Loader fetches one parquet file per calendar day from an ObjectStore and
// concatenates them in ascending date order.
type Loader struct {
	log      logrus.FieldLogger
	store    ObjectStore
	maxFiles int
}

// NewLoader creates a sales loader. maxFiles bounds the number of per-day
// fetches one run may attempt.
func NewLoader(log logrus.FieldLogger, store ObjectStore, maxFiles int) *Loader {
	return &Loader{
		log:      log.WithField("component", "sales"),
		store:    store,
		maxFiles: maxFiles,
	}
}

// LoadSales fetches sales_YYYY-MM-DD.parquet for each day of the inclusive
// [start, end] range. The max-files bound is enforced from range arithmetic
// before any fetch. A missing day file is skipped; any other remote error
// aborts the load. Zero retrieved files yield an empty table, not an error.
func (l *Loader) LoadSales(ctx context.Context, start, end civil.Date) ([]models.Sale, error) {
	numDays, err := calendar.Days(start, end)
	if err != nil {
		return nil, err
	}

	if numDays > l.maxFiles {
		l.log.WithField("start", start.String()).
			WithField("end", end.String()).
			WithField("days", numDays).
			WithField("max_files", l.maxFiles).
			Error("Requested date range exceeds the sales file safety bound")

		return nil, fmt.Errorf("%w: range %s to %s spans %d days which exceeds max_files=%d",
			pipeline.ErrTooManyFiles, start, end, numDays, l.maxFiles)
	}

	l.log.WithField("start", start.String()).
		WithField("end", end.String()).
		WithField("max_files", l.maxFiles).
		Info("Loading sales from object storage")

	var (
		rows  []models.Sale
		files int
	)

	for i := 0; i < numDays; i++ {
		day := start.AddDays(i)
		key := fmt.Sprintf("%s%s.parquet", salesFilePrefix, day)

		data, err := l.store.Download(ctx, key)
		if errors.Is(err, ErrObjectNotFound) {
			observability.SalesFilesFetched.WithLabelValues("missing").Inc()
			l.log.WithField("date", day.String()).
				WithField("key", key).
				Warn("Sales file not found, skipping day")
			l.listAvailableFiles(ctx)

			continue
		}

		if err != nil {
			l.log.WithError(err).WithField("key", key).Error("Failed to download sales file")

			return nil, fmt.Errorf("%w: sales file %s: %w", pipeline.ErrDataLoad, key, err)
		}

		dayRows, err := decodeSales(data)
		if err != nil {
			l.log.WithError(err).WithField("key", key).Error("Failed to parse sales file")

			return nil, fmt.Errorf("%w: sales file %s: %w", pipeline.ErrDataLoad, key, err)
		}

		observability.SalesFilesFetched.WithLabelValues("loaded").Inc()

		rows = append(rows, dayRows...)
		files++
	}

	if files == 0 {
		l.log.WithField("start", start.String()).
			WithField("end", end.String()).
			Warn("No sales data found in range")

		return []models.Sale{}, nil
	}

	observability.SalesRowsLoaded.Add(float64(len(rows)))
	l.log.WithField("rows", len(rows)).
		WithField("files", files).
		Info("Loaded sales rows from object storage")

	return rows, nil
}

// listAvailableFiles logs which sales files exist in the bucket to help
// operators diagnose a missing day. Best effort only: its own failures are
// logged and swallowed.
func (l *Loader) listAvailableFiles(ctx context.Context) {
	names, err := l.store.List(ctx, salesFilePrefix)
	if err != nil {
		l.log.WithError(err).Warn("Failed to list available sales files")

		return
	}

	if len(names) == 0 {
		l.log.WithField("prefix", salesFilePrefix).Info("No sales files found in bucket")

		return
	}

	// Latest-looking names first
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if len(names) > diagnosticListLimit {
		names = names[:diagnosticListLimit]
	}

	l.log.WithField("files", names).
		WithField("limit", diagnosticListLimit).
		Info("Available sales files in bucket")
}
