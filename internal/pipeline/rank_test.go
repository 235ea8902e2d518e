package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_SortsByScoreDescending(t *testing.T) {
	records := []Record{
		{FieldASIN: "A", FieldTPIScore: 60},
		{FieldASIN: "B", FieldTPIScore: 130},
		{FieldASIN: "C", FieldTPIScore: 90},
	}

	table := Rank(records, Options{}.withDefaults())

	require.Len(t, table.Records, 3)
	assert.Equal(t, "B", table.Records[0].Str(FieldASIN))
	assert.Equal(t, "C", table.Records[1].Str(FieldASIN))
	assert.Equal(t, "A", table.Records[2].Str(FieldASIN))
}

func TestRank_StableTies(t *testing.T) {
	records := []Record{
		{FieldASIN: "first", FieldTPIScore: 80},
		{FieldASIN: "second", FieldTPIScore: 80},
	}

	table := Rank(records, Options{}.withDefaults())

	assert.Equal(t, "first", table.Records[0].Str(FieldASIN))
	assert.Equal(t, "second", table.Records[1].Str(FieldASIN))
}

func TestRank_TruncatesToTopN(t *testing.T) {
	records := make([]Record, 45)
	for i := range records {
		records[i] = Record{FieldASIN: fmt.Sprintf("B%04d", i), FieldTPIScore: 100 - i}
	}

	table := Rank(records, Options{TopN: 30}.withDefaults())

	assert.Len(t, table.Records, 30)
	assert.Equal(t, "B0000", table.Records[0].Str(FieldASIN))
}

func TestRank_FewerThanTopNKeepsAll(t *testing.T) {
	records := make([]Record, 12)
	for i := range records {
		records[i] = Record{FieldASIN: fmt.Sprintf("B%04d", i), FieldTPIScore: 50}
	}

	table := Rank(records, Options{TopN: 30}.withDefaults())
	assert.Len(t, table.Records, 12)
}

func TestRank_DerivesAmazonURL(t *testing.T) {
	records := []Record{{FieldASIN: "B0TEST0001", FieldTPIScore: 50}}

	table := Rank(records, Options{}.withDefaults())

	assert.Equal(t, "https://www.amazon.com/dp/B0TEST0001", table.Records[0].Str(FieldAmazonURL))
}

func TestRank_ColumnsRequiredPlusPresentOptionals(t *testing.T) {
	records := []Record{
		{FieldASIN: "A", FieldTPIScore: 50, FieldImageURL: "https://img.example/a.jpg"},
	}

	table := Rank(records, Options{}.withDefaults())

	assert.Equal(t, RequiredColumns, table.Columns[:len(RequiredColumns)])
	assert.Contains(t, table.Columns, FieldImageURL)
	assert.NotContains(t, table.Columns, FieldSKU)
	assert.NotContains(t, table.Columns, FieldBrand)
}

func TestRank_EmptyInputWellFormed(t *testing.T) {
	table := Rank(nil, Options{}.withDefaults())

	assert.True(t, table.Empty())
	assert.Equal(t, RequiredColumns, table.Columns)
}

func TestRank_ProjectionDropsNonOutputFields(t *testing.T) {
	records := []Record{
		{FieldASIN: "A", FieldTPIScore: 50, FieldBrand: "Acme", FieldWeight: "500"},
	}

	table := Rank(records, Options{}.withDefaults())

	assert.False(t, table.Records[0].Has(FieldBrand))
	assert.False(t, table.Records[0].Has(FieldWeight))
}
