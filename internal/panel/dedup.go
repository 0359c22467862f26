package panel

import (
	"cmp"
	"slices"

	"firmpanel/pkg/contracts/domain"
)

// Deduplicate keeps one filing per (entity, year): the one with the latest
// filing date. Rows are stable-sorted by entity, year and filing date and the
// last row of each group is kept, so among equal dates the row that came later
// in t wins. The result is ordered by entity and year.
func Deduplicate(t domain.FilingTable) domain.FilingTable {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, compareFilings)

	out := make([]domain.Filing, 0, len(rows))
	for i, r := range rows {
		if i+1 < len(rows) && rows[i+1].Key() == r.Key() {
			continue
		}
		out = append(out, r)
	}
	return t.WithRows(out)
}

// compareFilings orders by entity, year, then filing date. Filing dates are
// always present once loaded; a zero date sorts first and so never wins a
// group that has a real date.
func compareFilings(a, b domain.Filing) int {
	if c := cmp.Compare(a.EntityID, b.EntityID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	return cmp.Compare(a.FilingDate, b.FilingDate)
}
