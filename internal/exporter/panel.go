package exporter

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"firmpanel/internal/errors"
	"firmpanel/pkg/contracts/domain"
)

// Targets names the files a panel is written to. An empty path disables
// that sink.
type Targets struct {
	CSV  string
	XLSX string
}

// PanelExporter writes a finished firm-year panel to its configured sinks
type PanelExporter struct {
	csvWriter  *CSVWriter
	xlsxWriter *XLSXWriter
	logger     *slog.Logger
}

// NewPanelExporter creates a new panel exporter
func NewPanelExporter(logger *slog.Logger) *PanelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &PanelExporter{
		csvWriter:  NewCSVWriter(logger),
		xlsxWriter: NewXLSXWriter(logger),
		logger:     logger,
	}
}

// Headers returns the output column names for t
func (e *PanelExporter) Headers(t domain.FilingTable) []string {
	return panelHeaders(t)
}

// Records returns the output rows for t in panel order
func (e *PanelExporter) Records(t domain.FilingTable) [][]string {
	return panelRecords(t)
}

// Export writes t to every non-empty target. Sinks stage their files
// concurrently and only read t. Files are moved into place once every sink
// has staged successfully; if a move fails, outputs already moved by this
// call are removed, so a failed export leaves no new panel behind.
func (e *PanelExporter) Export(ctx context.Context, t domain.FilingTable, targets Targets) error {
	headers := panelHeaders(t)
	records := panelRecords(t)

	// staged[0] is the CSV sink, staged[1] the XLSX sink
	staged := make([]*StagedFile, 2)
	g, gctx := errgroup.WithContext(ctx)

	if targets.CSV != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := e.csvWriter.StageCSV(targets.CSV, headers, records)
			if err != nil {
				return errors.NewStorageError("failed to write panel CSV", err).
					WithContext("path", targets.CSV)
			}
			staged[0] = file
			return nil
		})
	}

	if targets.XLSX != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			numeric := map[string]bool{domain.ColumnYear: true, domain.ColumnPerfYear: true}
			file, err := e.xlsxWriter.StageXLSX(targets.XLSX, headers, records, numeric)
			if err != nil {
				return errors.NewStorageError("failed to write panel XLSX", err).
					WithContext("path", targets.XLSX)
			}
			staged[1] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		discardStaged(staged)
		return err
	}

	if err := e.commit(ctx, staged); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Panel exported",
		slog.Int("rows", t.Len()),
		slog.String("csv", targets.CSV),
		slog.String("xlsx", targets.XLSX))
	return nil
}

func (e *PanelExporter) commit(ctx context.Context, staged []*StagedFile) error {
	var committed []string
	for i, file := range staged {
		if file == nil {
			continue
		}
		if err := file.Commit(); err != nil {
			discardStaged(staged[i+1:])
			for _, path := range committed {
				if rmErr := os.Remove(path); rmErr != nil {
					e.logger.WarnContext(ctx, "Failed to remove partial export",
						slog.String("path", path),
						slog.String("error", rmErr.Error()))
				}
			}
			return errors.NewStorageError("failed to commit panel output", err).
				WithContext("path", file.Path())
		}
		committed = append(committed, file.Path())
	}
	return nil
}

func discardStaged(staged []*StagedFile) {
	for _, file := range staged {
		if file != nil {
			file.Discard()
		}
	}
}
