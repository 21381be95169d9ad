package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-sre/salespipe/pkg/pipeline"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "too many files",
			err:  fmt.Errorf("load: %w", pipeline.ErrTooManyFiles),
			want: exitCodeTooManyFiles,
		},
		{
			name: "data load",
			err:  fmt.Errorf("load: %w", pipeline.ErrDataLoad),
			want: exitCodeDataError,
		},
		{
			name: "data quality",
			err:  fmt.Errorf("check: %w", pipeline.ErrDataQuality),
			want: exitCodeDataError,
		},
		{
			name: "generic",
			err:  errors.New("something else"),
			want: exitCodeGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestLoadFileConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MaxSalesFiles)
	assert.Empty(t, cfg.ProjectID)
}

func TestLoadFileConfig_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salespipe.yaml")
	content := `
projectId: my-project
granularity: month
bigquery:
  dataset: analytics
  table: catalog
gcs:
  bucket: sales-archive
output:
  dir: /tmp/exports
  format: csv
maxSalesFiles: 31
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, "month", cfg.Granularity)
	assert.Equal(t, "analytics", cfg.BigQuery.Dataset)
	assert.Equal(t, "catalog", cfg.BigQuery.Table)
	assert.Equal(t, "sales-archive", cfg.GCS.Bucket)
	assert.Equal(t, "/tmp/exports", cfg.Output.Dir)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, 31, cfg.MaxSalesFiles)
}

func TestLoadFileConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projectId: [unclosed"), 0o600))

	_, err := loadFileConfig(path)
	assert.Error(t, err)
}

func TestCheckCredentialsEnv(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

		assert.ErrorIs(t, checkCredentialsEnv(), ErrCredentialsNotSet)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "absent.json"))

		assert.ErrorIs(t, checkCredentialsEnv(), ErrCredentialsNotFound)
	})

	t.Run("directory rejected", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", t.TempDir())

		assert.ErrorIs(t, checkCredentialsEnv(), ErrCredentialsNotFound)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)

		assert.NoError(t, checkCredentialsEnv())
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
