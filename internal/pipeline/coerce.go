package pipeline

// Coerce converts the designated fields to numbers across the whole record
// set. A field is coerced only when at least one source carried it; it is then
// materialized on every record so later stages can compare uniformly. String
// values lose percent signs and thousands separators before parsing, so
// "45%" becomes 45 and "1,250" becomes 1250.
//
// Coercion is total: values that fail to parse, and cells missing from their
// source, become 0. The number of such defaulted cells is returned as an
// aggregate data-quality signal; it is never an error.
func Coerce(records []Record, fields []string) (defaulted int) {
	for _, field := range fields {
		if !anyHasField(records, field) {
			continue
		}
		for _, rec := range records {
			n, ok := rec.Num(field)
			if !ok {
				n = 0
				defaulted++
			}
			rec[field] = n
		}
	}
	return defaulted
}
