package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/dataops-sre/salespipe/pkg/models"
)

// salesFileRow mirrors the schema of one daily sales parquet file.
type salesFileRow struct {
	ProductID *string `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Price     float64 `parquet:"name=price, type=DOUBLE"`
	Quantity  int64   `parquet:"name=quantity, type=INT64"`
	SoldAt    *int64  `parquet:"name=sold_at, type=INT64, convertedtype=TIMESTAMP_MICROS, repetitiontype=OPTIONAL"`
	OrderID   *string `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// decodeSales parses one day file into domain rows, preserving file order.
func decodeSales(data []byte) ([]models.Sale, error) {
	fr := buffer.NewBufferFileFromBytes(data)

	pr, err := reader.NewParquetReader(fr, new(salesFileRow), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet data: %w", err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	fileRows := make([]salesFileRow, num)

	if num > 0 {
		if err := pr.Read(&fileRows); err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	rows := make([]models.Sale, 0, num)

	for _, fr := range fileRows {
		sale := models.Sale{
			ProductID: fr.ProductID,
			Price:     decimal.NewFromFloat(fr.Price),
			Quantity:  fr.Quantity,
			OrderID:   fr.OrderID,
		}

		if fr.SoldAt != nil {
			soldAt := time.UnixMicro(*fr.SoldAt).UTC()
			sale.SoldAt = &soldAt
		}

		rows = append(rows, sale)
	}

	return rows, nil
}
