package pipeline

import "sort"

// Rank sorts the scored records by TPI score descending and truncates to the
// configured shortlist size. The sort is stable, so ties keep their merge
// order and reruns over the same input produce the same table. Fewer
// survivors than the limit is fine; an empty input yields an empty but
// well-formed table.
//
// Each kept record gets its canonical product URL, then the set is projected
// onto the output columns: the required set always, the optional set only for
// fields any record actually carries.
func Rank(records []Record, opts Options) Table {
	ranked := make([]Record, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, _ := ranked[i].Num(FieldTPIScore)
		sj, _ := ranked[j].Num(FieldTPIScore)
		return si > sj
	})

	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}

	columns := make([]string, 0, len(RequiredColumns)+len(OptionalColumns))
	columns = append(columns, RequiredColumns...)
	for _, col := range OptionalColumns {
		if anyHasField(records, col) {
			columns = append(columns, col)
		}
	}

	projected := make([]Record, 0, len(ranked))
	for _, rec := range ranked {
		row := make(Record, len(columns))
		for _, col := range columns {
			if col == FieldAmazonURL {
				row[col] = opts.AmazonBaseURL + rec.Str(FieldASIN)
				continue
			}
			if v, ok := rec[col]; ok {
				row[col] = v
			}
		}
		projected = append(projected, row)
	}

	return Table{Columns: columns, Records: projected}
}
