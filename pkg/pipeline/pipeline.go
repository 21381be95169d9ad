package pipeline

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dataops-sre/salespipe/pkg/calendar"
	"github.com/dataops-sre/salespipe/pkg/models"
	"github.com/dataops-sre/salespipe/pkg/observability"
)

// ProductSource loads the product catalog from the warehouse.
type ProductSource interface {
	LoadProducts(ctx context.Context) ([]models.Product, error)
}

// SalesSource loads sales rows for an inclusive date range from object
// storage.
type SalesSource interface {
	LoadSales(ctx context.Context, start, end civil.Date) ([]models.Sale, error)
}

// Exporter serializes the final table and returns the written path.
type Exporter interface {
	Export(rows []models.ExportRow, ref civil.Date, g calendar.Granularity) (string, error)
}

// Runner executes one export run end to end.
type Runner struct {
	cfg      Config
	log      logrus.FieldLogger
	products ProductSource
	sales    SalesSource
	exporter Exporter
	engine   *Engine
}

// NewRunner validates the configuration and wires the collaborators.
func NewRunner(log logrus.FieldLogger, cfg Config, products ProductSource, sales SalesSource, exporter Exporter) (*Runner, error) {
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Runner{
		cfg:      cfg,
		log:      log.WithField("component", "pipeline"),
		products: products,
		sales:    sales,
		exporter: exporter,
		engine:   NewEngine(log),
	}, nil
}

// Run executes the pipeline and returns the path of the export file. Each
// stage produces a new table; nothing is mutated in place and no state
// survives the run.
func (r *Runner) Run(ctx context.Context) (string, error) {
	started := time.Now()
	log := r.log.WithField("run_id", uuid.New().String())

	log.WithField("ref_date", r.cfg.RefDate.String()).
		WithField("granularity", r.cfg.Granularity).
		Info("Starting export pipeline")

	path, err := r.run(ctx, log)

	observability.RecordRun(time.Since(started), err == nil)

	if err != nil {
		log.WithError(err).Error("Pipeline failed")

		return "", err
	}

	log.WithField("path", path).
		WithField("duration", time.Since(started).String()).
		Info("Pipeline finished successfully")

	return path, nil
}

func (r *Runner) run(ctx context.Context, log logrus.FieldLogger) (string, error) {
	products, err := r.products.LoadProducts(ctx)
	if err != nil {
		return "", err
	}

	products = r.engine.DropInvalidProducts(products)

	start, end, err := calendar.ComputeDateRange(r.cfg.RefDate, r.cfg.Granularity)
	if err != nil {
		return "", err
	}

	log.WithField("start", start.String()).
		WithField("end", end.String()).
		WithField("granularity", r.cfg.Granularity).
		Info("Computed date range")

	sales, err := r.sales.LoadSales(ctx, start, end)
	if err != nil {
		return "", err
	}

	var merged []Merged

	if len(sales) == 0 {
		log.WithField("start", start.String()).
			WithField("end", end.String()).
			Warn("No sales data loaded, exporting an empty dataset")
	} else {
		filtered, ferr := FilterByDate(sales, r.cfg.RefDate, r.cfg.Granularity)
		if ferr != nil {
			return "", ferr
		}

		if len(filtered) == 0 {
			log.Warn("Sales data loaded but no rows match the requested period, exporting an empty dataset")
		} else {
			merged, err = r.engine.Merge(filtered, products, r.cfg.Brands, r.cfg.ProductIDs)
			if err != nil {
				return "", err
			}
		}
	}

	rows := r.engine.Enrich(merged)

	path, err := r.exporter.Export(rows, r.cfg.RefDate, r.cfg.Granularity)
	if err != nil {
		return "", err
	}

	observability.RowsExported.WithLabelValues(string(r.cfg.Format)).Add(float64(len(rows)))

	return path, nil
}
