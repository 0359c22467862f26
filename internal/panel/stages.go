package panel

import (
	"firmpanel/pkg/contracts/domain"
)

// annualReportForms is the closed set of 10-K style form types kept in the panel
var annualReportForms = map[string]struct{}{
	"10-K":    {},
	"10-K405": {},
	"10KSB":   {},
	"10-KSB":  {},
	"10KSB40": {},
}

// AnnualReportForms returns the accepted form types
func AnnualReportForms() []string {
	return []string{"10-K", "10-K405", "10KSB", "10-KSB", "10KSB40"}
}

// IsAnnualReportForm reports whether formType is accepted. Matching is exact
// and case-sensitive.
func IsAnnualReportForm(formType string) bool {
	_, ok := annualReportForms[formType]
	return ok
}

// YearFromDate derives the fiscal year of a YYYYMMDD-encoded date using floor
// division.
func YearFromDate(filingDate int64) int {
	q := filingDate / 10000
	if filingDate%10000 != 0 && filingDate < 0 {
		q--
	}
	return int(q)
}

// DeriveYear sets Year on every row
func DeriveYear(t domain.FilingTable) domain.FilingTable {
	rows := make([]domain.Filing, len(t.Rows))
	for i, r := range t.Rows {
		r.Year = YearFromDate(r.FilingDate)
		rows[i] = r
	}
	return t.WithRows(rows)
}

// YearRange is a closed interval of fiscal years
type YearRange struct {
	Start int `json:"start_year"`
	End   int `json:"end_year"`
}

// Contains reports whether year lies within the range, bounds included
func (r YearRange) Contains(year int) bool {
	return r.Start <= year && year <= r.End
}

// Filter keeps rows whose derived year lies within the range
func (r YearRange) Filter(t domain.FilingTable) domain.FilingTable {
	return filterRows(t, func(f domain.Filing) bool { return r.Contains(f.Year) })
}

// FilterFormTypes keeps rows whose form type is an annual report form
func FilterFormTypes(t domain.FilingTable) domain.FilingTable {
	return filterRows(t, func(f domain.Filing) bool { return IsAnnualReportForm(f.FormType) })
}

// filterRows returns a new table holding the rows for which keep is true, in
// their original order.
func filterRows(t domain.FilingTable, keep func(domain.Filing) bool) domain.FilingTable {
	rows := make([]domain.Filing, 0, len(t.Rows))
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.WithRows(rows)
}
