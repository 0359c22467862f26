package panel

import (
	"log/slog"

	"firmpanel/pkg/contracts/domain"
)

// Diagnostics describes the shape of a filing table
type Diagnostics struct {
	Filings   int `json:"filings"`
	Entities  int `json:"entities"`
	FirmYears int `json:"firm_years"`
	// DuplicateGroups counts firm-years with more than one filing.
	DuplicateGroups int `json:"duplicate_groups"`
	// DuplicatesWithNextYear counts duplicate groups whose entity also has a
	// filing in the following year.
	DuplicatesWithNextYear int `json:"duplicates_with_next_year"`
}

// Summarize computes diagnostics for t without modifying it
func Summarize(t domain.FilingTable) Diagnostics {
	groups := make(map[domain.FirmYear]int, len(t.Rows))
	entities := make(map[int64]struct{})
	for _, r := range t.Rows {
		groups[r.Key()]++
		entities[r.EntityID] = struct{}{}
	}

	d := Diagnostics{
		Filings:   len(t.Rows),
		Entities:  len(entities),
		FirmYears: len(groups),
	}
	for key, n := range groups {
		if n < 2 {
			continue
		}
		d.DuplicateGroups++
		if _, ok := groups[domain.FirmYear{EntityID: key.EntityID, Year: key.Year + 1}]; ok {
			d.DuplicatesWithNextYear++
		}
	}
	return d
}

// LogValue renders the diagnostics as a log group
func (d Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("filings", d.Filings),
		slog.Int("entities", d.Entities),
		slog.Int("firm_years", d.FirmYears),
		slog.Int("duplicate_groups", d.DuplicateGroups),
		slog.Int("duplicates_with_next_year", d.DuplicatesWithNextYear),
	)
}

// Head returns the first n rows of t, or all of them when t is shorter
func Head(t domain.FilingTable, n int) []domain.Filing {
	if n <= 0 {
		return nil
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n:n]
}
