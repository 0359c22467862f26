package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFilingDerivedValues(t *testing.T) {
	tests := []struct {
		name       string
		filing     Filing
		wantPerf   int
		wantEntity string
		wantSIC    string
	}{
		{
			name:       "small CIK is zero padded",
			filing:     Filing{EntityID: 1, Year: 2020, IndustryCode: decimal.NewNullDecimal(decimal.NewFromInt(7000))},
			wantPerf:   2021,
			wantEntity: "0000000001",
			wantSIC:    "7000",
		},
		{
			name:       "ten digit CIK is unchanged",
			filing:     Filing{EntityID: 1234567890, Year: 2023},
			wantPerf:   2024,
			wantEntity: "1234567890",
			wantSIC:    "",
		},
		{
			name:       "fractional industry code",
			filing:     Filing{EntityID: 320193, Year: 2019, IndustryCode: decimal.NewNullDecimal(decimal.RequireFromString("3571.50"))},
			wantPerf:   2020,
			wantEntity: "0000320193",
			wantSIC:    "3571.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPerf, tt.filing.PerfYear())
			assert.Equal(t, tt.wantEntity, tt.filing.EntityIDString())
			assert.Equal(t, tt.wantSIC, tt.filing.IndustryCodeString())
			assert.Equal(t, FirmYear{EntityID: tt.filing.EntityID, Year: tt.filing.Year}, tt.filing.Key())
		})
	}
}

func TestFilingTable(t *testing.T) {
	table := FilingTable{
		Columns: []string{ColumnCIK, ColumnFilingDate, ColumnFormType, ColumnSIC, "N_WORDS"},
		Rows: []Filing{
			{EntityID: 1},
			{EntityID: 2},
			{EntityID: 1},
		},
	}

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 4, table.ColumnIndex("N_WORDS"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}}, table.EntityIDs())

	sub := table.WithRows(table.Rows[:1])
	assert.Equal(t, 1, sub.Len())
	assert.Equal(t, table.Columns, sub.Columns)
}
