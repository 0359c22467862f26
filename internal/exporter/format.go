package exporter

import (
	"strconv"

	"firmpanel/pkg/contracts/domain"
)

// formatInt formats an integer for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// panelLayout maps a table's input columns to output positions. Derived
// columns that already exist in the input are overwritten in place, the rest
// are appended.
type panelLayout struct {
	headers  []string
	width    int
	sic      int
	year     int
	perfYear int
	entityID int
}

func newPanelLayout(columns []string) panelLayout {
	headers := make([]string, 0, len(columns)+3)
	headers = append(headers, columns...)

	position := func(name string) int {
		for i, c := range headers {
			if c == name {
				return i
			}
		}
		headers = append(headers, name)
		return len(headers) - 1
	}

	l := panelLayout{width: len(columns), sic: -1}
	for i, c := range columns {
		if c == domain.ColumnSIC {
			l.sic = i
			break
		}
	}
	l.year = position(domain.ColumnYear)
	l.perfYear = position(domain.ColumnPerfYear)
	l.entityID = position(domain.ColumnEntityIDStr)
	l.headers = headers
	return l
}

// record renders one filing in header order. The industry column carries
// the coerced code, empty when missing.
func (l panelLayout) record(f domain.Filing) []string {
	record := make([]string, len(l.headers))
	n := len(f.Values)
	if n > l.width {
		n = l.width
	}
	copy(record, f.Values[:n])
	if l.sic >= 0 {
		record[l.sic] = f.IndustryCodeString()
	}
	record[l.year] = formatInt(f.Year)
	record[l.perfYear] = formatInt(f.PerfYear())
	record[l.entityID] = f.EntityIDString()
	return record
}

// panelHeaders returns the output column names of t
func panelHeaders(t domain.FilingTable) []string {
	return newPanelLayout(t.Columns).headers
}

// panelRecords renders every row of t
func panelRecords(t domain.FilingTable) [][]string {
	layout := newPanelLayout(t.Columns)
	records := make([][]string, len(t.Rows))
	for i, f := range t.Rows {
		records[i] = layout.record(f)
	}
	return records
}
