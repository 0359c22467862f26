package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"firmpanel/internal/errors"
	"firmpanel/internal/shared/testutil"
	"firmpanel/pkg/contracts/domain"
)

func samplePanel() domain.FilingTable {
	a := testutil.Filing(1, 20200615, "10-K", "7000.0")
	a.Year = 2020
	a.IndustryCode = decimal.NewNullDecimal(decimal.RequireFromString("7000.0"))

	b := testutil.Filing(320193, 20210301, "10-K405", "N/A")
	b.Year = 2021

	table := testutil.Table(a, b)
	table.Columns = append(table.Columns, "N_WORDS")
	table.Rows[0].Values = append(table.Rows[0].Values, "1234")
	table.Rows[1].Values = append(table.Rows[1].Values, "")
	return table
}

func TestPanelExporter_HeadersAndRecords(t *testing.T) {
	exp := NewPanelExporter(nil)
	table := samplePanel()

	assert.Equal(t,
		[]string{"CIK", "FILING_DATE", "FORM_TYPE", "SIC", "N_WORDS", "year", "perf_year", "entity_id_str"},
		exp.Headers(table))

	assert.Equal(t, [][]string{
		{"1", "20200615", "10-K", "7000", "1234", "2020", "2021", "0000000001"},
		{"320193", "20210301", "10-K405", "", "", "2021", "2022", "0000320193"},
	}, exp.Records(table))

	// rendering does not touch the table
	assert.Equal(t, "7000.0", table.Rows[0].Values[3])
}

func TestPanelExporter_ExportCSVAndXLSX(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	exp := NewPanelExporter(logger)
	dir := t.TempDir()
	targets := Targets{
		CSV:  filepath.Join(dir, "panel.csv"),
		XLSX: filepath.Join(dir, "panel.xlsx"),
	}

	require.NoError(t, exp.Export(context.Background(), samplePanel(), targets))

	records := readCSV(t, targets.CSV)
	require.Len(t, records, 3)
	assert.Equal(t, "entity_id_str", records[0][7])
	assert.Equal(t, "0000320193", records[2][7])

	f, err := excelize.OpenFile(targets.XLSX)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PanelSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, records[0], rows[0])
	assert.Equal(t, "2021", rows[1][6])
	assert.Equal(t, "0000000001", rows[1][7])

	assert.True(t, handler.ContainsMessage("Panel exported"))
	assert.True(t, handler.ContainsAttr("component", "exporter"))
}

func TestPanelExporter_SkipsEmptyTargets(t *testing.T) {
	exp := NewPanelExporter(nil)
	dir := t.TempDir()

	require.NoError(t, exp.Export(context.Background(), samplePanel(), Targets{CSV: filepath.Join(dir, "only.csv")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "only.csv", entries[0].Name())
}

func TestPanelExporter_StorageError(t *testing.T) {
	exp := NewPanelExporter(nil)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := exp.Export(context.Background(), samplePanel(), Targets{CSV: filepath.Join(blocker, "panel.csv")})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStorage)
}

func TestPanelExporter_FailedSinkLeavesNoOutput(t *testing.T) {
	exp := NewPanelExporter(nil)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "panel.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("previous\n"), 0o644))
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := exp.Export(context.Background(), samplePanel(), Targets{
		CSV:  csvPath,
		XLSX: filepath.Join(blocker, "panel.xlsx"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStorage)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data), "existing output is untouched")
	assert.ElementsMatch(t, []string{"panel.csv", "file"}, listDir(t, dir))
}

func TestPanelExporter_FailedCommitRemovesCommittedOutput(t *testing.T) {
	exp := NewPanelExporter(nil)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "panel.csv")

	// a non-empty directory at the XLSX path makes the final rename fail
	xlsxPath := filepath.Join(dir, "panel.xlsx")
	require.NoError(t, os.MkdirAll(xlsxPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xlsxPath, "keep"), []byte("x"), 0o644))

	err := exp.Export(context.Background(), samplePanel(), Targets{CSV: csvPath, XLSX: xlsxPath})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStorage)
	assert.Contains(t, err.Error(), "failed to commit panel output")
	assert.NoFileExists(t, csvPath)
	assert.Equal(t, []string{"panel.xlsx"}, listDir(t, dir))
}

func TestPanelExporter_InputYearColumnIsReplaced(t *testing.T) {
	exp := NewPanelExporter(nil)
	f := testutil.Filing(9, 20220301, "10-K", "")
	f.Year = 2022
	table := testutil.Table(f)
	table.Columns = append(table.Columns, domain.ColumnYear)
	table.Rows[0].Values = append(table.Rows[0].Values, "1999")

	path := filepath.Join(t.TempDir(), "panel.csv")
	require.NoError(t, exp.Export(context.Background(), table, Targets{CSV: path}))

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"CIK", "FILING_DATE", "FORM_TYPE", "SIC", "year", "perf_year", "entity_id_str"}, records[0])
	assert.Equal(t, []string{"9", "20220301", "10-K", "", "2022", "2023", "0000000009"}, records[1])
}
