package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

func chartFixture() pipeline.Table {
	return pipeline.Table{
		Columns: pipeline.RequiredColumns,
		Records: []pipeline.Record{
			{
				pipeline.FieldTPIScore:     130,
				pipeline.FieldASIN:         "B001",
				pipeline.FieldTitle:        "Collapsible Colander With Extending Handles",
				pipeline.FieldPrice:        25.99,
				pipeline.FieldMonthlySales: 1200.0,
				pipeline.FieldSalesGrowth:  72.0,
			},
			{
				pipeline.FieldTPIScore:     60,
				pipeline.FieldASIN:         "B005",
				pipeline.FieldTitle:        "Herb Scissors",
				pipeline.FieldPrice:        12.99,
				pipeline.FieldMonthlySales: 600.0,
				pipeline.FieldSalesGrowth:  65.0,
			},
		},
	}
}

func TestRender_ContainsBothCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, chartFixture()))

	html := buf.String()
	assert.Contains(t, html, "30-day sales growth")
	assert.Contains(t, html, "Price vs monthly sales")
	assert.Contains(t, html, "Herb Scissors")
}

func TestWriteHTML_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "tpi_charts.html")

	require.NoError(t, WriteHTML(path, chartFixture()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteHTML_EmptyTableNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpi_charts.html")

	require.NoError(t, WriteHTML(path, pipeline.Table{Columns: pipeline.RequiredColumns}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "Herb Scissors", truncateTitle("Herb Scissors"))
	assert.Equal(t, "Collapsible Col...", truncateTitle("Collapsible Colander With Extending Handles"))
}

func TestSymbolSize_Bounds(t *testing.T) {
	assert.Equal(t, 10, symbolSize(60, 60, 130))
	assert.Equal(t, 40, symbolSize(130, 60, 130))
	// Uniform scores collapse to the midpoint.
	assert.Equal(t, 25, symbolSize(80, 80, 80))
}
