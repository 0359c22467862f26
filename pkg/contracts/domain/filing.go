package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Required input column names.
const (
	ColumnCIK        = "CIK"
	ColumnFilingDate = "FILING_DATE"
	ColumnFormType   = "FORM_TYPE"
	ColumnSIC        = "SIC"
)

// Derived output column names.
const (
	ColumnYear        = "year"
	ColumnPerfYear    = "perf_year"
	ColumnEntityIDStr = "entity_id_str"
)

// RequiredColumns lists the columns every input table must carry.
var RequiredColumns = []string{ColumnCIK, ColumnFilingDate, ColumnFormType, ColumnSIC}

// Filing is one submitted regulatory document as read from the metadata table.
type Filing struct {
	// Ordinal is the 0-based position of the row in the loaded input.
	Ordinal int `json:"ordinal"`

	EntityID   int64  `json:"entity_id"`
	FilingDate int64  `json:"filing_date"`
	FormType   string `json:"form_type"`

	// IndustryRaw is the industry code exactly as it appeared in the input.
	IndustryRaw string `json:"industry_raw"`
	// IndustryCode is the numeric industry code; Valid is false when the raw
	// value could not be coerced or has not been coerced yet.
	IndustryCode decimal.NullDecimal `json:"industry_code"`

	// Year is derived from FilingDate; zero until derived.
	Year int `json:"year"`

	// Values holds every input column for this row in Columns order.
	Values []string `json:"-"`
}

// Key returns the firm-year grouping key of the filing.
func (f Filing) Key() FirmYear {
	return FirmYear{EntityID: f.EntityID, Year: f.Year}
}

// PerfYear is the year whose outcomes the filing's text is matched against.
func (f Filing) PerfYear() int {
	return f.Year + 1
}

// EntityIDString renders the entity identifier zero-padded to 10 digits.
func (f Filing) EntityIDString() string {
	return fmt.Sprintf("%010d", f.EntityID)
}

// IndustryCodeString renders the coerced industry code, empty when missing.
func (f Filing) IndustryCodeString() string {
	if !f.IndustryCode.Valid {
		return ""
	}
	return f.IndustryCode.Decimal.String()
}

// FirmYear identifies one entity in one fiscal year.
type FirmYear struct {
	EntityID int64 `json:"entity_id"`
	Year     int   `json:"year"`
}

// FilingTable is an ordered collection of filings sharing one column layout.
// Stages treat a table as a value: they return a new table and never modify
// the rows of the one they were given.
type FilingTable struct {
	Columns []string `json:"columns"`
	Rows    []Filing `json:"rows"`
}

// Len returns the number of rows in the table.
func (t FilingTable) Len() int {
	return len(t.Rows)
}

// WithRows returns a table sharing t's columns with the given rows.
func (t FilingTable) WithRows(rows []Filing) FilingTable {
	return FilingTable{Columns: t.Columns, Rows: rows}
}

// ColumnIndex returns the position of the named column, or -1.
func (t FilingTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// EntityIDs returns the set of distinct entity identifiers in the table.
func (t FilingTable) EntityIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		ids[r.EntityID] = struct{}{}
	}
	return ids
}
