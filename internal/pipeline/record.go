// Package pipeline implements the merge-normalize-score pipeline that turns
// ranked product-listing exports into a single scored shortlist.
package pipeline

import (
	"strconv"
	"strings"
)

// Canonical field names. Every source header is mapped onto this set by the
// normalizer; downstream stages only ever see these names.
const (
	FieldASIN          = "ASIN"
	FieldTitle         = "Title"
	FieldPrice         = "Price"
	FieldMonthlySales  = "Monthly_Sales"
	FieldSalesGrowth   = "Sales_Growth"
	FieldRevenueChange = "Revenue_Change"
	FieldPriceChange   = "Price_Change"
	FieldRatings       = "Ratings"
	FieldLaunchDate    = "Launch_Date"
	FieldBrand         = "Brand"
	FieldWeight        = "Weight"
	FieldImageURL      = "Image_URL"
	FieldSKU           = "SKU"
	FieldSourceList    = "Source_List"
	FieldTPIScore      = "TPI_Score"
	FieldAmazonURL     = "Amazon_URL"
)

// NumericFields are coerced to numbers before merging; unparseable values
// degrade to zero rather than failing the run.
var NumericFields = []string{FieldPrice, FieldMonthlySales, FieldRatings, FieldSalesGrowth}

// RequiredColumns always appear in the final output table, in this order.
var RequiredColumns = []string{
	FieldTPIScore,
	FieldASIN,
	FieldAmazonURL,
	FieldTitle,
	FieldPrice,
	FieldMonthlySales,
	FieldSalesGrowth,
	FieldRatings,
}

// OptionalColumns are appended to the output only when present in the input.
var OptionalColumns = []string{
	FieldRevenueChange,
	FieldPriceChange,
	FieldImageURL,
	FieldSKU,
}

// SourceTable is the reader contract: one parsed tabular source plus the tag
// identifying which ranking list it came from. The pipeline never reads files
// itself; it only consumes this structure.
type SourceTable struct {
	Tag     string
	Headers []string
	Rows    [][]string
}

// Record is a single product row keyed by canonical field name. A field is
// absent from the map when the originating source had no such column.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Str returns the field rendered as a string, or "" when absent.
func (r Record) Str(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// Num returns the field as a float64. The second return is false when the
// field is absent or not parseable as a number.
func (r Record) Num(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	return numericValue(v)
}

// Has reports whether the field exists on this record.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Table is the final ranked output: an ordered column list plus the records
// projected onto it.
type Table struct {
	Columns []string
	Records []Record
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Records) == 0
}

// CellStrings renders the table rows as strings in column order, for export
// writers and console previews.
func (t Table) CellStrings() [][]string {
	out := make([][]string, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = rec.Str(col)
		}
		out = append(out, row)
	}
	return out
}

// numericValue converts raw cell values to float64. Strings tolerate percent
// signs and thousands separators, matching the coercer's cleanup rules.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		s = strings.ReplaceAll(s, "%", "")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// anyHasField reports whether the field exists on any record in the set.
func anyHasField(records []Record, field string) bool {
	for _, r := range records {
		if r.Has(field) {
			return true
		}
	}
	return false
}
