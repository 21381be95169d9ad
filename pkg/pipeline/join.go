package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dataops-sre/salespipe/pkg/models"
)

// dedupSampleSize bounds how many offending product ids are logged when the
// catalog contains duplicates.
const dedupSampleSize = 5

// Merged pairs one sale with its catalog match, if any. Product stays nil
// for sales with no catalog row (left join keeps them).
type Merged struct {
	Sale    models.Sale
	Product *models.Product
}

// Engine performs the join-and-enrich stage of one run.
type Engine struct {
	log logrus.FieldLogger

	// now is the clock used for the run's processed_at stamp.
	now func() time.Time
}

// NewEngine creates a join-and-enrich engine.
func NewEngine(log logrus.FieldLogger) *Engine {
	return &Engine{
		log: log.WithField("component", "engine"),
		now: time.Now,
	}
}

// DropInvalidProducts removes catalog rows whose product_id is null; such
// rows are not join-eligible. The dropped count is logged.
func (e *Engine) DropInvalidProducts(products []models.Product) []models.Product {
	kept := make([]models.Product, 0, len(products))

	for _, p := range products {
		if p.ProductID != nil {
			kept = append(kept, p)
		}
	}

	if dropped := len(products) - len(kept); dropped > 0 {
		e.log.WithField("dropped", dropped).Warn("Dropping product rows with null product_id before joining")
	}

	return kept
}

// Merge deduplicates the catalog, left-joins sales to products on product_id
// with validated many-to-one cardinality, and applies the optional brand and
// product-id allow-list filters in sequence.
func (e *Engine) Merge(sales []models.Sale, products []models.Product, brands, productIDs []string) ([]Merged, error) {
	sales = e.dropInvalidSales(sales)
	products = e.deduplicateProducts(products)

	index := make(map[string]*models.Product, len(products))

	for i := range products {
		id := *products[i].ProductID
		if _, exists := index[id]; exists {
			// Unreachable after dedup, but a silent collision here would
			// corrupt the join.
			return nil, fmt.Errorf("%w: product_id %q maps to multiple catalog rows", ErrJoinIntegrity, id)
		}

		index[id] = &products[i]
	}

	merged := make([]Merged, 0, len(sales))

	for _, sale := range sales {
		merged = append(merged, Merged{Sale: sale, Product: index[*sale.ProductID]})
	}

	if len(brands) > 0 {
		e.log.WithField("brands", brands).Info("Applying brand filter")
		merged = filterRows(merged, brands, func(m Merged) *string {
			if m.Product == nil {
				return nil
			}
			return m.Product.Brand
		})
	}

	if len(productIDs) > 0 {
		e.log.WithField("product_ids", productIDs).Info("Applying product_id filter")
		merged = filterRows(merged, productIDs, func(m Merged) *string {
			return m.Sale.ProductID
		})
	}

	return merged, nil
}

func (e *Engine) dropInvalidSales(sales []models.Sale) []models.Sale {
	kept := make([]models.Sale, 0, len(sales))

	for _, s := range sales {
		if s.ProductID != nil {
			kept = append(kept, s)
		}
	}

	if dropped := len(sales) - len(kept); dropped > 0 {
		e.log.WithField("dropped", dropped).Warn("Dropping sales rows with null product_id before joining")
	}

	return kept
}

// deduplicateProducts enforces a unique product_id: the catalog is sorted
// ascending by id and the last row per id wins. The tie-break is
// deterministic but order-sensitive; it intentionally matches the historical
// behavior of the export rather than keep-most-recently-loaded.
func (e *Engine) deduplicateProducts(products []models.Product) []models.Product {
	byID := make(map[string]int, len(products))
	duplicates := []string{}

	for _, p := range products {
		byID[*p.ProductID]++
	}

	for id, n := range byID {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}

	if len(duplicates) == 0 {
		return products
	}

	sort.Strings(duplicates)

	sample := duplicates
	if len(sample) > dedupSampleSize {
		sample = sample[:dedupSampleSize]
	}

	e.log.WithField("duplicate_ids", len(duplicates)).
		WithField("examples", strings.Join(sample, ", ")).
		Warn("Found non-unique product_id values in catalog, keeping the last row per id")

	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return *sorted[i].ProductID < *sorted[j].ProductID
	})

	deduped := make([]models.Product, 0, len(byID))

	for i, p := range sorted {
		if i+1 < len(sorted) && *sorted[i+1].ProductID == *p.ProductID {
			continue
		}

		deduped = append(deduped, p)
	}

	return deduped
}

func filterRows(rows []Merged, allow []string, field func(Merged) *string) []Merged {
	allowed := make(map[string]bool, len(allow))
	for _, v := range allow {
		allowed[v] = true
	}

	kept := make([]Merged, 0, len(rows))

	for _, row := range rows {
		if v := field(row); v != nil && allowed[*v] {
			kept = append(kept, row)
		}
	}

	return kept
}
