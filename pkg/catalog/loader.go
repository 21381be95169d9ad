package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dataops-sre/salespipe/pkg/models"
	"github.com/dataops-sre/salespipe/pkg/observability"
	"github.com/dataops-sre/salespipe/pkg/pipeline"
)

// Loader fetches the product catalog through a QueryClient and validates
// that all required columns came back.
type Loader struct {
	log       logrus.FieldLogger
	client    QueryClient
	projectID string
	dataset   string
	table     string
}

// NewLoader creates a catalog loader for the given warehouse table.
func NewLoader(log logrus.FieldLogger, client QueryClient, projectID, dataset, table string) *Loader {
	return &Loader{
		log:       log.WithField("component", "catalog"),
		client:    client,
		projectID: projectID,
		dataset:   dataset,
		table:     table,
	}
}

// LoadProducts fetches all catalog rows. A transport failure is an
// ErrDataLoad; a result missing any required column is an ErrDataQuality.
func (l *Loader) LoadProducts(ctx context.Context) ([]models.Product, error) {
	tableName := fmt.Sprintf("%s.%s.%s", l.projectID, l.dataset, l.table)
	log := l.log.WithField("table", tableName)

	log.Info("Loading products from warehouse")

	rows, columns, err := l.client.QueryProducts(ctx, tableName)
	if err != nil {
		log.WithError(err).Error("Failed to load products")

		return nil, fmt.Errorf("%w: products table %s: %w", pipeline.ErrDataLoad, tableName, err)
	}

	if missing := missingColumns(columns); len(missing) > 0 {
		log.WithField("missing", missing).Error("Products table is missing required columns")

		return nil, fmt.Errorf("%w: products table %s is missing required columns: %s",
			pipeline.ErrDataQuality, tableName, strings.Join(missing, ", "))
	}

	observability.ProductRowsLoaded.Add(float64(len(rows)))
	log.WithField("rows", len(rows)).Info("Loaded product rows from warehouse")

	return rows, nil
}

// missingColumns returns the sorted set difference between the required
// column set and the columns actually returned.
func missingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string

	for _, c := range models.ProductColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}

	sort.Strings(missing)

	return missing
}
