package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"firmpanel/internal/errors"
	"firmpanel/pkg/contracts/domain"
)

const utf8BOM = "\uFEFF"

// LoaderOptions configures how raw rows are parsed
type LoaderOptions struct {
	// StrictDates rejects FILING_DATE values that are not valid YYYYMMDD
	// calendar dates. When false any integral value is accepted as is.
	StrictDates bool
}

// Loader reads filing metadata tables from CSV or XLSX sources
type Loader struct {
	logger  *slog.Logger
	options LoaderOptions
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger, options LoaderOptions) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger.With(slog.String("component", "loader")),
		options: options,
	}
}

// LoadFile reads the table at path. Files ending in .xlsx are read from their
// first worksheet, everything else is parsed as CSV.
func (l *Loader) LoadFile(ctx context.Context, path string) (domain.FilingTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err := readXLSX(path)
		if err != nil {
			return domain.FilingTable{}, err
		}
		return l.parse(ctx, path, records)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.FilingTable{}, errors.NewStorageError("failed to open input", err).
			WithContext("path", path)
	}
	defer f.Close()

	return l.Load(ctx, path, f)
}

// Load parses CSV data from r. name is only used in logs and errors.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) (domain.FilingTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return domain.FilingTable{}, errors.NewDataFormatError("failed to parse CSV", err).
			WithContext("path", name)
	}
	return l.parse(ctx, name, records)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewDataFormatError("workbook has no worksheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewDataFormatError("failed to read worksheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	return rows, nil
}

// parse converts raw records (header first) into a filing table
func (l *Loader) parse(ctx context.Context, name string, records [][]string) (domain.FilingTable, error) {
	start := time.Now()

	if len(records) == 0 || len(records[0]) == 0 {
		return domain.FilingTable{}, errors.NewDataFormatError("input has no header row", nil).
			WithContext("path", name)
	}

	header := make([]string, len(records[0]))
	copy(header, records[0])
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	table := domain.FilingTable{Columns: header}

	idx := make(map[string]int, len(domain.RequiredColumns))
	var missing []string
	for _, col := range domain.RequiredColumns {
		i := table.ColumnIndex(col)
		if i < 0 {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return domain.FilingTable{}, errors.NewDataFormatError("missing required columns", nil).
			WithContext("path", name).
			WithContext("columns", strings.Join(missing, ","))
	}

	rows := make([]domain.Filing, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return domain.FilingTable{}, errors.NewDataFormatError("row has more fields than the header", nil).
				WithContext("path", name).
				WithContext("line", line)
		}
		values := make([]string, len(header))
		copy(values, rec)

		filing, err := l.parseFiling(values, idx)
		if err != nil {
			return domain.FilingTable{}, err.WithContext("path", name).WithContext("line", line)
		}
		filing.Ordinal = len(rows)
		rows = append(rows, filing)
	}
	table.Rows = rows

	l.logger.InfoContext(ctx, "Loaded filings",
		slog.String("source", name),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(header)),
		slog.Duration("elapsed", time.Since(start)))

	return table, nil
}

func (l *Loader) parseFiling(values []string, idx map[string]int) (domain.Filing, *errors.AppError) {
	cikRaw := values[idx[domain.ColumnCIK]]
	cik, ok := parseIntegral(cikRaw, true)
	if !ok {
		return domain.Filing{}, errors.NewDataFormatError("CIK is not an integer", nil).
			WithContext("column", domain.ColumnCIK).
			WithContext("value", cikRaw)
	}

	dateRaw := values[idx[domain.ColumnFilingDate]]
	date, err := ParseFilingDate(dateRaw, l.options.StrictDates)
	if err != nil {
		return domain.Filing{}, errors.NewDataFormatError("FILING_DATE is not a usable date", err).
			WithContext("column", domain.ColumnFilingDate).
			WithContext("value", dateRaw)
	}

	return domain.Filing{
		EntityID:    cik,
		FilingDate:  date,
		FormType:    values[idx[domain.ColumnFormType]],
		IndustryRaw: values[idx[domain.ColumnSIC]],
		Values:      values,
	}, nil
}

// ParseFilingDate parses a YYYYMMDD-encoded filing date. In lenient mode any
// integer is accepted and integral-looking decimals such as "20200301.0" are
// truncated; strict mode additionally requires an 8-digit calendar date.
func ParseFilingDate(raw string, strict bool) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	if strict {
		if len(s) != 8 {
			return 0, fmt.Errorf("expected 8 digits, got %q", s)
		}
		if _, err := time.Parse("20060102", s); err != nil {
			return 0, fmt.Errorf("invalid calendar date %q", s)
		}
		return strconv.ParseInt(s, 10, 64)
	}

	v, ok := parseIntegral(s, false)
	if !ok {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	return v, nil
}

// parseIntegral parses an integer, falling back to a finite float. With exact
// set the float must have no fractional part; otherwise it is floored.
func parseIntegral(raw string, exact bool) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return 0, false
	}
	if exact && f != math.Trunc(f) {
		return 0, false
	}
	return int64(math.Floor(f)), true
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
