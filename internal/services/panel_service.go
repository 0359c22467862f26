package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"firmpanel/internal/config"
	"firmpanel/internal/dataprocessing"
	"firmpanel/internal/exporter"
	"firmpanel/internal/infrastructure"
	"firmpanel/internal/panel"
	"firmpanel/internal/validation"
)

// RunSummary describes one completed panel build
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Input      string        `json:"input"`
	Output     string        `json:"output"`
	XLSXOutput string        `json:"xlsx_output,omitempty"`
	Loaded     int           `json:"loaded"`
	Result     *panel.Result `json:"result"`
	Elapsed    time.Duration `json:"elapsed"`
}

// PanelService runs the load, build and export steps for one configuration
type PanelService struct {
	config    *config.Config
	telemetry *infrastructure.Telemetry
	files     *validation.FileValidator
	exporter  *exporter.PanelExporter
	logger    *slog.Logger
}

// NewPanelService creates a panel service. telemetry may be nil.
func NewPanelService(cfg *config.Config, telemetry *infrastructure.Telemetry, logger *slog.Logger) *PanelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelService{
		config:    cfg,
		telemetry: telemetry,
		files:     validation.NewFileValidator(logger),
		exporter:  exporter.NewPanelExporter(logger),
		logger:    logger.With(slog.String("component", "panel_service")),
	}
}

// Run builds the panel and writes it to the configured outputs. Nothing is
// written when loading or building fails.
func (s *PanelService) Run(ctx context.Context) (*RunSummary, error) {
	start := time.Now()
	ctx = infrastructure.EnsureRunID(ctx)

	s.config.ResolveOutputPaths()
	if err := validation.NewConfigValidator(s.logger).Validate(s.config); err != nil {
		return nil, err
	}

	files := s.config.Files
	summary := &RunSummary{
		RunID:      infrastructure.GetRunID(ctx),
		Input:      files.Input,
		Output:     files.Output,
		XLSXOutput: files.XLSXOutput,
	}

	s.logger.InfoContext(ctx, "Building firm-year panel",
		slog.String("input", files.Input),
		slog.String("output", files.Output),
		slog.Int("start_year", s.config.Sample.StartYear),
		slog.Int("end_year", s.config.Sample.EndYear),
		slog.String("date_mode", s.config.Sample.DateMode))

	if err := s.files.ValidateInputFile(files.Input); err != nil {
		return nil, err
	}
	for _, out := range []string{files.Output, files.XLSXOutput} {
		if out == "" {
			continue
		}
		if err := s.files.ValidateOutputDirectory(out); err != nil {
			return nil, err
		}
	}

	loader := dataprocessing.NewLoader(s.logger, dataprocessing.LoaderOptions{
		StrictDates: s.config.Sample.StrictDates(),
	})
	table, err := loader.LoadFile(ctx, files.Input)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load filings", slog.String("error", err.Error()))
		return nil, err
	}
	summary.Loaded = table.Len()

	builder := panel.NewBuilder(panel.Options{
		Years:      panel.YearRange{Start: s.config.Sample.StartYear, End: s.config.Sample.EndYear},
		SampleRows: s.config.Sample.SampleRows,
	}, s.logger, s.tracer(), s.recorder())

	result, err := builder.Build(ctx, table)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build panel", slog.String("error", err.Error()))
		return nil, err
	}
	summary.Result = result

	if err := s.exporter.Export(ctx, result.Panel, exporter.Targets{
		CSV:  files.Output,
		XLSX: files.XLSXOutput,
	}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write panel", slog.String("error", err.Error()))
		return nil, err
	}

	if path := s.config.Metrics.TextfilePath; path != "" && s.telemetry != nil {
		if err := s.telemetry.WriteMetricsTextfile(path); err != nil {
			// the panel is already written; a missing snapshot does not fail the run
			s.logger.WarnContext(ctx, "Failed to write metrics textfile", slog.String("error", err.Error()))
		}
	}

	summary.Elapsed = time.Since(start)
	s.logger.InfoContext(ctx, "Panel build completed",
		slog.Int("loaded", summary.Loaded),
		slog.Int("panel_rows", result.Panel.Len()),
		slog.Duration("elapsed", summary.Elapsed))

	return summary, nil
}

func (s *PanelService) tracer() trace.Tracer {
	if s.telemetry == nil {
		return nil
	}
	return s.telemetry.Tracer
}

func (s *PanelService) recorder() panel.Recorder {
	if s.telemetry == nil || s.telemetry.Metrics == nil {
		return nil
	}
	return s.telemetry.Metrics
}
