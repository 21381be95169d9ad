// Package catalog loads the product catalog from the warehouse.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dataops-sre/salespipe/pkg/models"
)

// QueryClient is the warehouse collaborator: it fetches product rows and the
// column set actually returned by the source. Transport failures surface as
// plain errors; schema judgment belongs to the Loader.
type QueryClient interface {
	QueryProducts(ctx context.Context, table string) (rows []models.Product, columns []string, err error)
}

// BigQueryClient implements QueryClient over the BigQuery API.
type BigQueryClient struct {
	client *bigquery.Client
}

// NewBigQueryClient creates a BigQuery-backed query client for the project.
func NewBigQueryClient(ctx context.Context, projectID string) (*BigQueryClient, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	return &BigQueryClient{client: client}, nil
}

// Close releases the underlying client.
func (c *BigQueryClient) Close() error {
	return c.client.Close()
}

// QueryProducts fetches all rows of the products table.
func (c *BigQueryClient) QueryProducts(ctx context.Context, table string) ([]models.Product, []string, error) {
	query := fmt.Sprintf(
		"SELECT product_id, product_name, category, brand, condition FROM `%s`",
		table,
	)

	it, err := c.client.Query(query).Read(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}

	var (
		rows    []models.Product
		columns []string
	)

	for {
		var vals []bigquery.Value

		err := it.Next(&vals)
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}

		if columns == nil {
			columns = schemaColumns(it.Schema)
		}

		rows = append(rows, productFromValues(it.Schema, vals))
	}

	if columns == nil {
		// Zero-row result; the schema is still known from the iterator.
		columns = schemaColumns(it.Schema)
	}

	return rows, columns, nil
}

func schemaColumns(schema bigquery.Schema) []string {
	columns := make([]string, 0, len(schema))
	for _, field := range schema {
		columns = append(columns, field.Name)
	}

	return columns
}

func productFromValues(schema bigquery.Schema, vals []bigquery.Value) models.Product {
	var p models.Product

	for i, field := range schema {
		if i >= len(vals) {
			break
		}

		s, ok := vals[i].(string)
		if !ok {
			continue // NULL or unexpected type stays nil
		}

		v := s

		switch field.Name {
		case "product_id":
			p.ProductID = &v
		case "product_name":
			p.ProductName = &v
		case "category":
			p.Category = &v
		case "brand":
			p.Brand = &v
		case "condition":
			p.Condition = &v
		}
	}

	return p
}
