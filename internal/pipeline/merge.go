package pipeline

// CountOverlap builds the overlap side table: for each identifier, the number
// of records across all sources sharing it, counted before deduplication.
// Overlap is the cross-validation signal scoring rewards, so this must run on
// the full concatenation and survive the dedup step.
func CountOverlap(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Str(FieldASIN)]++
	}
	return counts
}

// Dedupe collapses the record set to one record per identifier. First
// occurrence in concatenation order wins; no field-level merge of conflicting
// duplicates is attempted.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		key := rec.Str(FieldASIN)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
