// Package charts renders the descriptive charts for a ranked shortlist: a
// growth bar chart and a price-versus-sales scatter sized by score. It only
// consumes the final output table; no selection logic lives here.
package charts

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

const titleRunes = 15

// WriteHTML renders both charts into a single HTML page at path. An empty
// table renders nothing and is not an error; the caller decides whether that
// is worth mentioning.
func WriteHTML(path string, table pipeline.Table) error {
	if table.Empty() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Render(f, table)
}

// Render writes the chart page to w.
func Render(w io.Writer, table pipeline.Table) error {
	page := components.NewPage()
	page.AddCharts(growthBar(table), priceSalesScatter(table))
	return page.Render(w)
}

// growthBar is the ranked bar chart of sales growth keyed by truncated title.
func growthBar(table pipeline.Table) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Top picks: 30-day sales growth (%)",
			Subtitle: "Bar length is Sales_Growth in percentage points",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	titles := make([]string, 0, len(table.Records))
	values := make([]opts.BarData, 0, len(table.Records))
	// Reverse so the highest-ranked record renders at the top of the axis.
	for i := len(table.Records) - 1; i >= 0; i-- {
		rec := table.Records[i]
		titles = append(titles, truncateTitle(rec.Str(pipeline.FieldTitle)))
		growth, _ := rec.Num(pipeline.FieldSalesGrowth)
		values = append(values, opts.BarData{Value: growth})
	}

	bar.SetXAxis(titles).AddSeries("Sales_Growth", values)
	bar.XYReversal()
	return bar
}

// priceSalesScatter is the price-versus-monthly-sales chart, with symbol size
// and color both driven by the TPI score.
func priceSalesScatter(table pipeline.Table) *charts.Scatter {
	scatter := charts.NewScatter()

	minScore, maxScore := scoreRange(table)
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Price vs monthly sales",
			Subtitle: "Bubble size and color follow the TPI score",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(minScore),
			Max:        float32(maxScore),
			InRange:    &opts.VisualMapInRange{Color: []string{"#50a3ba", "#eac736", "#d94e5d"}},
		}),
	)

	points := make([]opts.ScatterData, 0, len(table.Records))
	for _, rec := range table.Records {
		price, _ := rec.Num(pipeline.FieldPrice)
		sales, _ := rec.Num(pipeline.FieldMonthlySales)
		score, _ := rec.Num(pipeline.FieldTPIScore)
		points = append(points, opts.ScatterData{
			Name:       rec.Str(pipeline.FieldTitle),
			Value:      []any{price, sales, score},
			SymbolSize: symbolSize(score, minScore, maxScore),
		})
	}

	scatter.AddSeries("products", points)
	return scatter
}

// truncateTitle shortens a product title for the bar axis: first 15
// characters plus an ellipsis.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= titleRunes {
		return title
	}
	return string(runes[:titleRunes]) + "..."
}

// scoreRange returns the min and max TPI scores in the table.
func scoreRange(table pipeline.Table) (float64, float64) {
	minScore, maxScore := 0.0, 0.0
	for i, rec := range table.Records {
		score, _ := rec.Num(pipeline.FieldTPIScore)
		if i == 0 || score < minScore {
			minScore = score
		}
		if i == 0 || score > maxScore {
			maxScore = score
		}
	}
	return minScore, maxScore
}

// symbolSize maps a score onto a bubble diameter between 10 and 40 pixels.
func symbolSize(score, minScore, maxScore float64) int {
	const smallest, largest = 10.0, 40.0
	if maxScore <= minScore {
		return int((smallest + largest) / 2)
	}
	frac := (score - minScore) / (maxScore - minScore)
	return int(smallest + frac*(largest-smallest))
}
