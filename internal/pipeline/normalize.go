package pipeline

import "strings"

// Normalize maps source-specific headers onto the canonical field set and
// concatenates all sources into one record set in input order. Headers are
// trimmed before alias matching; headers with no alias keep their original
// name and are dropped later at projection, not here. Every record is tagged
// with its originating source list.
//
// Returns a ConfigurationError when the identifier column is absent from the
// combined set: without it the merge has no key, so the run cannot proceed.
func Normalize(tables []SourceTable, aliases map[string]string) ([]Record, error) {
	// Invert canonical -> header into header -> canonical. The contract
	// allows a future multi-alias table; today each field has one header.
	rename := make(map[string]string, len(aliases))
	for canonical, header := range aliases {
		header = strings.TrimSpace(header)
		if header != "" {
			rename[header] = canonical
		}
	}

	var records []Record
	identifierSeen := false

	for _, tbl := range tables {
		fields := make([]string, len(tbl.Headers))
		for i, h := range tbl.Headers {
			h = strings.TrimSpace(h)
			if canonical, ok := rename[h]; ok {
				h = canonical
			}
			fields[i] = h
			if h == FieldASIN {
				identifierSeen = true
			}
		}

		for _, row := range tbl.Rows {
			rec := make(Record, len(fields)+1)
			for i, field := range fields {
				if field == "" {
					continue
				}
				if i < len(row) {
					rec[field] = row[i]
				} else {
					rec[field] = ""
				}
			}
			rec[FieldSourceList] = tbl.Tag
			records = append(records, rec)
		}
	}

	if !identifierSeen {
		return nil, &ConfigurationError{Field: FieldASIN}
	}

	return records, nil
}
