package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultWeights() ScoreWeights {
	return Options{}.withDefaults().Scoring
}

func TestScore_BaseOnly(t *testing.T) {
	rec := Record{FieldPrice: 18.0, FieldMonthlySales: 100.0, FieldSalesGrowth: 10.0}
	assert.Equal(t, 50, Score(rec, 1, defaultWeights()))
}

func TestScore_AllBonuses(t *testing.T) {
	// overlap 3 (+50), sales 600 (+10), price 25 in band (+10), growth 60 (+10)
	rec := Record{FieldPrice: 25.0, FieldMonthlySales: 600.0, FieldSalesGrowth: 60.0}
	assert.Equal(t, 130, Score(rec, 3, defaultWeights()))
}

func TestScore_PairOverlap(t *testing.T) {
	rec := Record{FieldPrice: 18.0}
	assert.Equal(t, 80, Score(rec, 2, defaultWeights()))
}

func TestScore_LowPricePenalty(t *testing.T) {
	rec := Record{FieldPrice: 12.0}
	assert.Equal(t, 40, Score(rec, 1, defaultWeights()))
}

func TestScore_MidPriceNeitherBonusNorPenalty(t *testing.T) {
	// 15 <= price < 20 earns nothing and loses nothing.
	rec := Record{FieldPrice: 17.0}
	assert.Equal(t, 50, Score(rec, 1, defaultWeights()))
}

func TestScore_BandEdgesInclusive(t *testing.T) {
	w := defaultWeights()
	assert.Equal(t, 60, Score(Record{FieldPrice: 20.0}, 1, w))
	assert.Equal(t, 60, Score(Record{FieldPrice: 40.0}, 1, w))
	assert.Equal(t, 50, Score(Record{FieldPrice: 40.01}, 1, w))
}

func TestScore_ThresholdsExclusive(t *testing.T) {
	w := defaultWeights()
	// Exactly at the sales and growth thresholds earns no bonus.
	rec := Record{FieldPrice: 18.0, FieldMonthlySales: 500.0, FieldSalesGrowth: 50.0}
	assert.Equal(t, 50, Score(rec, 1, w))
}

func TestScore_ZeroOverlapTreatedAsSingle(t *testing.T) {
	rec := Record{FieldPrice: 18.0}
	assert.Equal(t, Score(rec, 1, defaultWeights()), Score(rec, 0, defaultWeights()))
}

func TestScore_Deterministic(t *testing.T) {
	rec := Record{FieldPrice: 25.0, FieldMonthlySales: 600.0, FieldSalesGrowth: 60.0}
	first := Score(rec, 2, defaultWeights())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(rec, 2, defaultWeights()))
	}
}

func TestScoreAll_DoesNotMutateInput(t *testing.T) {
	records := []Record{{FieldASIN: "B001", FieldPrice: 25.0}}
	overlap := map[string]int{"B001": 2}

	scored := ScoreAll(records, overlap, defaultWeights())

	require.Len(t, scored, 1)
	assert.False(t, records[0].Has(FieldTPIScore))
	assert.Equal(t, 90, scored[0][FieldTPIScore])
}

func TestScoreAll_UnknownIdentifierScoredAsSingle(t *testing.T) {
	records := []Record{{FieldASIN: "B999", FieldPrice: 18.0}}

	scored := ScoreAll(records, map[string]int{}, defaultWeights())

	assert.Equal(t, 50, scored[0][FieldTPIScore])
}
