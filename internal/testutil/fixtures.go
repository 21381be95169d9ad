// Package testutil provides shared row builders for unit tests.
package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dataops-sre/salespipe/pkg/models"
)

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

// TS returns a pointer to a UTC timestamp parsed from RFC3339. It panics on
// malformed input; fixtures are hardcoded in tests.
func TS(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}

	t = t.UTC()

	return &t
}

// Product builds a catalog row with all fields populated.
func Product(id, name, category, brand, condition string) models.Product {
	return models.Product{
		ProductID:   Str(id),
		ProductName: Str(name),
		Category:    Str(category),
		Brand:       Str(brand),
		Condition:   Str(condition),
	}
}

// Sale builds a sales row. soldAt is RFC3339 or empty for a null timestamp.
func Sale(productID, orderID, soldAt string, price float64, quantity int64) models.Sale {
	sale := models.Sale{
		ProductID: Str(productID),
		Price:     decimal.NewFromFloat(price),
		Quantity:  quantity,
		OrderID:   Str(orderID),
	}

	if soldAt != "" {
		sale.SoldAt = TS(soldAt)
	}

	return sale
}
