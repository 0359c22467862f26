package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// PanelSheetName is the worksheet the XLSX export writes to
const PanelSheetName = "panel"

// XLSXWriter writes tabular records to a single-sheet workbook
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new XLSX writer instance
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// StageXLSX writes headers and records to a staged workbook for filePath.
// Columns listed in numeric are stored as numbers when they parse as integers.
func (w *XLSXWriter) StageXLSX(filePath string, headers []string, records [][]string, numeric map[string]bool) (*StagedFile, error) {
	w.logger.Info("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(records)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PanelSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(PanelSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet writer: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
			if j < len(headers) && numeric[headers[j]] {
				if n, err := strconv.ParseInt(v, 10, 64); err == nil {
					row[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	file, err := createTemp(filePath)
	if err != nil {
		return nil, err
	}
	if _, err := f.WriteTo(file); err != nil {
		discardTemp(file)
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return stageTemp(file, filePath)
}
