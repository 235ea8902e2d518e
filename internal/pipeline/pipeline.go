package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/observability"
)

// Options configures one pipeline run. Pass it explicitly; there is no
// process-wide state, so concurrent runs with different configurations are
// fine.
type Options struct {
	Aliases       map[string]string
	BlockBrands   []string
	PriceFloor    float64
	WeightCeiling float64
	TopN          int
	AmazonBaseURL string
	Scoring       ScoreWeights
}

// withDefaults fills unset options with the stock selection constants.
func (o Options) withDefaults() Options {
	if o.Aliases == nil {
		o.Aliases = map[string]string{FieldASIN: FieldASIN}
	}
	if o.PriceFloor == 0 {
		o.PriceFloor = 8
	}
	if o.WeightCeiling == 0 {
		o.WeightCeiling = 1000
	}
	if o.TopN == 0 {
		o.TopN = 30
	}
	if o.AmazonBaseURL == "" {
		o.AmazonBaseURL = "https://www.amazon.com/dp/"
	}
	if o.Scoring == (ScoreWeights{}) {
		o.Scoring = ScoreWeights{
			Base:               50,
			PairOverlapBonus:   30,
			TripleOverlapBonus: 50,
			SalesThreshold:     500,
			SalesBonus:         10,
			PriceBandLow:       20,
			PriceBandHigh:      40,
			PriceBandBonus:     10,
			LowPriceCutoff:     15,
			LowPricePenalty:    10,
			GrowthThreshold:    50,
			GrowthBonus:        10,
		}
	}
	return o
}

// Stats summarizes one run for reporting. CoercedCells counts values that
// degraded to zero during numeric coercion.
type Stats struct {
	Sources      int
	RawRows      int
	UniqueRows   int
	FilteredRows int
	CoercedCells int
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
}

// Result is the outcome of a successful run: the ranked shortlist, the
// overlap side table it was scored against, and run stats.
type Result struct {
	RunID   uuid.UUID
	Table   Table
	Overlap map[string]int
	Stats   Stats
}

// Pipeline wires the stages together: normalize, coerce, merge, filter,
// score, rank. Data flows strictly forward; each run owns its records so no
// locking is needed.
type Pipeline struct {
	logger *observability.Logger
	opts   Options
}

// New creates a pipeline. Zero option fields fall back to the stock
// defaults.
func New(logger *observability.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	return &Pipeline{logger: logger, opts: opts.withDefaults()}
}

// Run executes the whole batch over the parsed source tables. Fatal errors
// (missing identifier column) abort with no table; data-quality problems in
// cells never do.
func (p *Pipeline) Run(ctx context.Context, tables []SourceTable) (*Result, error) {
	runID := uuid.New()
	started := time.Now()
	logger := p.logger.WithRun(runID.String())

	rawRows := 0
	for _, t := range tables {
		rawRows += len(t.Rows)
	}
	logger.Info().
		Int("sources", len(tables)).
		Int("raw_rows", rawRows).
		Msg("Starting selection run")

	records, err := Normalize(tables, p.opts.Aliases)
	if err != nil {
		logger.WithStage("normalize").Error().Err(err).Msg("Normalization failed")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coerced := Coerce(records, NumericFields)
	if coerced > 0 {
		logger.WithStage("coerce").Warn().Int("cells", coerced).Msg("Defaulted unparseable numeric cells to zero")
	}

	overlap := CountOverlap(records)
	unique := Dedupe(records)
	logger.WithStage("merge").Debug().
		Int("unique", len(unique)).
		Int("identifiers", len(overlap)).
		Msg("Merged and deduplicated")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered := Filter(unique, p.opts)
	scored := ScoreAll(filtered, overlap, p.opts.Scoring)
	table := Rank(scored, p.opts)

	completed := time.Now()
	result := &Result{
		RunID:   runID,
		Table:   table,
		Overlap: overlap,
		Stats: Stats{
			Sources:      len(tables),
			RawRows:      rawRows,
			UniqueRows:   len(unique),
			FilteredRows: len(filtered),
			CoercedCells: coerced,
			StartedAt:    started,
			CompletedAt:  completed,
			Duration:     completed.Sub(started),
		},
	}

	logger.Info().
		Int("survivors", len(filtered)).
		Int("shortlist", len(table.Records)).
		Dur("duration", result.Stats.Duration).
		Msg("Selection run completed")

	return result, nil
}
