package pipeline

import "strings"

// Filter applies the exclusion rules and returns the surviving records in
// their merge order. The three rules combine by AND, and each is gated on its
// column existing somewhere in the record set:
//
//   - Brand: excluded when the brand contains any blocked keyword,
//     case-insensitively. A record with no brand is never excluded here.
//   - Price: excluded when Price <= the floor. The coercer has already
//     defaulted missing prices to 0, so those records fall out too.
//   - Weight: excluded when the weight is missing, unparseable, or >= the
//     ceiling. Weight is not coerced, so once any source carries a weight
//     column, a record without a verifiable weight drops out. Note the
//     asymmetry with the brand rule.
func Filter(records []Record, opts Options) []Record {
	blocked := make([]string, 0, len(opts.BlockBrands))
	for _, b := range opts.BlockBrands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			blocked = append(blocked, b)
		}
	}

	priceApplies := anyHasField(records, FieldPrice)
	weightApplies := anyHasField(records, FieldWeight)

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if brandBlocked(rec.Str(FieldBrand), blocked) {
			continue
		}
		if priceApplies {
			price, _ := rec.Num(FieldPrice)
			if price <= opts.PriceFloor {
				continue
			}
		}
		if weightApplies {
			weight, ok := rec.Num(FieldWeight)
			if !ok || weight >= opts.WeightCeiling {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func brandBlocked(brand string, blocked []string) bool {
	if brand == "" {
		return false
	}
	brand = strings.ToLower(brand)
	for _, kw := range blocked {
		if strings.Contains(brand, kw) {
			return true
		}
	}
	return false
}
