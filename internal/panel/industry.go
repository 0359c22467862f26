package panel

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"firmpanel/internal/errors"
	"firmpanel/pkg/contracts/domain"
)

// IndustryRange is a closed interval of numeric industry codes
type IndustryRange struct {
	Name string
	Low  decimal.Decimal
	High decimal.Decimal
}

// Contains reports whether code lies within the range, bounds included
func (r IndustryRange) Contains(code decimal.Decimal) bool {
	return code.GreaterThanOrEqual(r.Low) && code.LessThanOrEqual(r.High)
}

// ExcludedIndustries are the sectors removed from the panel
var ExcludedIndustries = []IndustryRange{
	{Name: "financial", Low: decimal.NewFromInt(6000), High: decimal.NewFromInt(6999)},
	{Name: "utility", Low: decimal.NewFromInt(4900), High: decimal.NewFromInt(4999)},
}

// CoerceIndustryCode converts a raw industry code to a number. Anything that
// does not parse, including the empty string, yields an invalid value.
func CoerceIndustryCode(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// CoercionReport summarizes industry codes that could not be coerced
type CoercionReport struct {
	// Failed counts non-empty values that were not numeric.
	Failed int
	// Values maps each failing raw value to its number of occurrences.
	Values map[string]int
}

// Warnings returns one coercion warning per distinct failing value, sorted by value.
func (c CoercionReport) Warnings() []*errors.AppError {
	values := make([]string, 0, len(c.Values))
	for v := range c.Values {
		values = append(values, v)
	}
	sort.Strings(values)

	warnings := make([]*errors.AppError, 0, len(values))
	for _, v := range values {
		warnings = append(warnings, errors.NewCoercionWarning(domain.ColumnSIC, v).
			WithContext("count", c.Values[v]))
	}
	return warnings
}

// CoerceIndustryCodes sets IndustryCode on every row and reports the values
// that failed coercion. Empty codes become missing without a warning.
func CoerceIndustryCodes(t domain.FilingTable) (domain.FilingTable, CoercionReport) {
	report := CoercionReport{Values: make(map[string]int)}
	rows := make([]domain.Filing, len(t.Rows))
	for i, r := range t.Rows {
		r.IndustryCode = CoerceIndustryCode(r.IndustryRaw)
		if !r.IndustryCode.Valid && strings.TrimSpace(r.IndustryRaw) != "" {
			report.Failed++
			report.Values[r.IndustryRaw]++
		}
		rows[i] = r
	}
	return t.WithRows(rows), report
}

// ExcludedIndustry returns the excluded range containing the filing's code.
// Filings without a numeric code are never excluded.
func ExcludedIndustry(f domain.Filing) (IndustryRange, bool) {
	if !f.IndustryCode.Valid {
		return IndustryRange{}, false
	}
	for _, r := range ExcludedIndustries {
		if r.Contains(f.IndustryCode.Decimal) {
			return r, true
		}
	}
	return IndustryRange{}, false
}

// ExcludeIndustries drops financial and utility filings
func ExcludeIndustries(t domain.FilingTable) domain.FilingTable {
	return filterRows(t, func(f domain.Filing) bool {
		_, excluded := ExcludedIndustry(f)
		return !excluded
	})
}
