package pipeline

// ScoreWeights holds the TPI scoring constants. The zero value is not useful;
// Options.withDefaults fills in the stock weights.
type ScoreWeights struct {
	Base               int
	PairOverlapBonus   int     // overlap count == 2
	TripleOverlapBonus int     // overlap count >= 3
	SalesThreshold     float64 // monthly sales above this earn SalesBonus
	SalesBonus         int
	PriceBandLow       float64 // inclusive band edges for PriceBandBonus
	PriceBandHigh      float64
	PriceBandBonus     int
	LowPriceCutoff     float64 // below this, LowPricePenalty is subtracted
	LowPricePenalty    int
	GrowthThreshold    float64 // percentage points, not a fraction
	GrowthBonus        int
}

// Score computes the TPI score for one record. It is a pure function of the
// record and its overlap count: all cross-record interaction happens through
// the precomputed overlap table, so records can be scored independently.
//
// The adjustments are additive on the base score, in a fixed order: overlap,
// sales, price band, growth. The price band bonus and the low-price penalty
// cannot both fire because the bands do not overlap.
func Score(rec Record, overlap int, w ScoreWeights) int {
	score := w.Base

	// An identifier missing from the overlap table counts as appearing once.
	if overlap < 1 {
		overlap = 1
	}
	switch {
	case overlap == 2:
		score += w.PairOverlapBonus
	case overlap >= 3:
		score += w.TripleOverlapBonus
	}

	if sales, _ := rec.Num(FieldMonthlySales); sales > w.SalesThreshold {
		score += w.SalesBonus
	}

	price, _ := rec.Num(FieldPrice)
	switch {
	case price >= w.PriceBandLow && price <= w.PriceBandHigh:
		score += w.PriceBandBonus
	case price < w.LowPriceCutoff:
		score -= w.LowPricePenalty
	}

	if growth, _ := rec.Num(FieldSalesGrowth); growth > w.GrowthThreshold {
		score += w.GrowthBonus
	}

	return score
}

// ScoreAll scores every record against the overlap table and returns new
// records carrying TPI_Score. Inputs are not mutated; scored records are
// created here and never change afterwards.
func ScoreAll(records []Record, overlap map[string]int, w ScoreWeights) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		count, ok := overlap[rec.Str(FieldASIN)]
		if !ok {
			count = 1
		}
		scored := rec.Clone()
		scored[FieldTPIScore] = Score(rec, count, w)
		out = append(out, scored)
	}
	return out
}
