// Package models defines the row types that flow through the export pipeline.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductColumns is the required column set of the warehouse products table.
//
//nolint:gochecknoglobals // Shared schema definition
var ProductColumns = []string{"product_id", "product_name", "category", "brand", "condition"}

// Product is one catalog row. Every field is nullable in the warehouse; rows
// with a nil ProductID are not join-eligible and are dropped by the pipeline.
type Product struct {
	ProductID   *string
	ProductName *string
	Category    *string
	Brand       *string
	Condition   *string
}

// Sale is one sales row decoded from a daily parquet file.
type Sale struct {
	ProductID *string
	Price     decimal.Decimal
	Quantity  int64
	// SoldAt is normalized to UTC. It is nil when the source value was
	// absent or unreadable, in which case the derived date columns stay nil.
	SoldAt  *time.Time
	OrderID *string
}

// ExportRow is one row of the final export. The parquet tags define the
// export schema; an empty run still writes a file carrying all of these
// columns. ProcessedAt is shared by every row of one pipeline run.
type ExportRow struct {
	ProductID   *string `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Price       float64 `parquet:"name=price, type=DOUBLE"`
	Quantity    int64   `parquet:"name=quantity, type=INT64"`
	SoldAt      *int64  `parquet:"name=sold_at, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	OrderID     *string `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProductName *string `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Category    *string `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Brand       *string `parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Condition   *string `parquet:"name=condition, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SaleDate    *string `parquet:"name=sale_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Year        *int32  `parquet:"name=year, type=INT32, repetitiontype=OPTIONAL"`
	Month       *int32  `parquet:"name=month, type=INT32, repetitiontype=OPTIONAL"`
	Quarter     *string `parquet:"name=quarter, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ProcessedAt int64   `parquet:"name=processed_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// ExportColumns returns the full export column set in output order: sale
// columns, then product columns, then the derived reporting columns.
func ExportColumns() []string {
	return []string{
		"product_id",
		"price",
		"quantity",
		"sold_at",
		"order_id",
		"product_name",
		"category",
		"brand",
		"condition",
		"sale_date",
		"year",
		"month",
		"quarter",
		"processed_at",
	}
}
