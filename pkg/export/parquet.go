package export

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/dataops-sre/salespipe/pkg/models"
)

const parquetRowGroupSize = 128 * 1024 * 1024 // 128 MB

func writeParquet(path string, rows []models.ExportRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file %s: %w", path, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(models.ExportRow), 1)
	if err != nil {
		_ = fw.Close()

		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	pw.RowGroupSize = parquetRowGroupSize
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			_ = fw.Close()

			return fmt.Errorf("failed to write parquet row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()

		return fmt.Errorf("failed to finalize parquet file %s: %w", path, err)
	}

	return fw.Close()
}
