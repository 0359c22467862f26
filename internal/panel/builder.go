package panel

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"firmpanel/internal/errors"
	"firmpanel/pkg/contracts/domain"
)

// Stage names, used in logs, spans and metrics
const (
	StageDeriveYear      = "derive_year"
	StageYearRange       = "year_range"
	StageFormType        = "form_type"
	StageIndustryCoerce  = "industry_coerce"
	StageIndustryExclude = "industry_exclude"
	StageDeduplicate     = "deduplicate"
)

// Default sample year range
const (
	DefaultStartYear  = 2019
	DefaultEndYear    = 2023
	DefaultSampleRows = 5
)

// Recorder receives run measurements. infrastructure.PanelMetrics implements it.
type Recorder interface {
	RecordStage(ctx context.Context, stage string, rowsIn, rowsOut int, elapsed time.Duration)
	RecordCoercionWarnings(ctx context.Context, n int)
	RecordPanel(ctx context.Context, rows, duplicatesBefore, duplicatesAfter int)
}

// Options configures a Builder
type Options struct {
	Years      YearRange
	SampleRows int
}

// DefaultOptions returns the 2019-2023 sample with five sample rows
func DefaultOptions() Options {
	return Options{
		Years:      YearRange{Start: DefaultStartYear, End: DefaultEndYear},
		SampleRows: DefaultSampleRows,
	}
}

// StageResult records the row flow through one stage
type StageResult struct {
	Name     string        `json:"name"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Duration time.Duration `json:"duration"`
}

// Dropped returns the number of rows the stage removed
func (s StageResult) Dropped() int {
	return s.RowsIn - s.RowsOut
}

// Result is the outcome of one Build
type Result struct {
	Panel  domain.FilingTable `json:"-"`
	Stages []StageResult      `json:"stages"`
	// Before and After describe the table entering and leaving deduplication.
	Before   Diagnostics     `json:"before_dedup"`
	After    Diagnostics     `json:"after_dedup"`
	Coercion CoercionReport  `json:"-"`
	Sample   []domain.Filing `json:"-"`
	Years    YearRange       `json:"years"`
}

// Builder runs the panel stages over a loaded filing table
type Builder struct {
	options  Options
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// NewBuilder creates a builder. tracer and recorder may be nil.
func NewBuilder(options Options, logger *slog.Logger, tracer trace.Tracer, recorder Recorder) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("firmpanel")
	}
	return &Builder{
		options:  options,
		logger:   logger.With(slog.String("component", "panel")),
		tracer:   tracer,
		recorder: recorder,
	}
}

// Build filters and deduplicates table into a firm-year panel
func (b *Builder) Build(ctx context.Context, table domain.FilingTable) (*Result, error) {
	years := b.options.Years
	if years.Start > years.End {
		return nil, errors.NewValidationError("start year is after end year", nil).
			WithContext("start_year", years.Start).
			WithContext("end_year", years.End)
	}

	ctx, span := b.tracer.Start(ctx, "panel.build", trace.WithAttributes(
		attribute.Int("filings", table.Len()),
		attribute.Int("start_year", years.Start),
		attribute.Int("end_year", years.End),
	))
	defer span.End()

	result := &Result{Years: years}

	var coercion CoercionReport
	pipeline := []struct {
		name string
		run  func(domain.FilingTable) domain.FilingTable
	}{
		{StageDeriveYear, DeriveYear},
		{StageYearRange, years.Filter},
		{StageFormType, FilterFormTypes},
		{StageIndustryCoerce, func(t domain.FilingTable) domain.FilingTable {
			out, report := CoerceIndustryCodes(t)
			coercion = report
			return out
		}},
		{StageIndustryExclude, ExcludeIndustries},
	}

	current := table
	for _, stage := range pipeline {
		current = b.runStage(ctx, result, stage.name, current, stage.run)
	}

	result.Coercion = coercion
	b.reportCoercion(ctx, coercion)

	result.Before = Summarize(current)
	b.logger.InfoContext(ctx, "Filings before deduplication", slog.Any("diagnostics", result.Before))

	current = b.runStage(ctx, result, StageDeduplicate, current, Deduplicate)

	result.After = Summarize(current)
	b.logger.InfoContext(ctx, "Filings after deduplication", slog.Any("diagnostics", result.After))

	if b.recorder != nil {
		b.recorder.RecordPanel(ctx, current.Len(), result.Before.DuplicateGroups, result.After.DuplicateGroups)
	}

	if result.After.DuplicateGroups != 0 {
		err := errors.NewInvariantError("firm-year groups still duplicated after deduplication").
			WithContext("duplicate_groups", result.After.DuplicateGroups)
		span.RecordError(err)
		span.SetStatus(codes.Error, "duplicate firm-years")
		return nil, err
	}

	result.Panel = current
	result.Sample = Head(current, b.options.SampleRows)
	span.SetAttributes(attribute.Int("panel_rows", current.Len()))

	b.logger.InfoContext(ctx, "Sample built",
		slog.Int("rows", current.Len()),
		slog.Int("entities", result.After.Entities),
		slog.Int("start_year", years.Start),
		slog.Int("end_year", years.End))

	return result, nil
}

func (b *Builder) runStage(ctx context.Context, result *Result, name string, in domain.FilingTable, run func(domain.FilingTable) domain.FilingTable) domain.FilingTable {
	ctx, span := b.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	out := run(in)
	elapsed := time.Since(start)

	stage := StageResult{Name: name, RowsIn: in.Len(), RowsOut: out.Len(), Duration: elapsed}
	result.Stages = append(result.Stages, stage)

	span.SetAttributes(
		attribute.Int("rows_in", stage.RowsIn),
		attribute.Int("rows_out", stage.RowsOut),
	)
	if b.recorder != nil {
		b.recorder.RecordStage(ctx, name, stage.RowsIn, stage.RowsOut, elapsed)
	}

	b.logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Int("rows_in", stage.RowsIn),
		slog.Int("rows_out", stage.RowsOut),
		slog.Int("dropped", stage.Dropped()),
		slog.Duration("duration", elapsed))

	return out
}

func (b *Builder) reportCoercion(ctx context.Context, report CoercionReport) {
	if report.Failed == 0 {
		return
	}
	if b.recorder != nil {
		b.recorder.RecordCoercionWarnings(ctx, report.Failed)
	}
	for _, w := range report.Warnings() {
		b.logger.DebugContext(ctx, "Industry code coercion failed", slog.String("warning", w.Error()))
	}
	b.logger.WarnContext(ctx, "Industry codes could not be coerced to numbers",
		slog.Int("count", report.Failed),
		slog.Int("distinct_values", len(report.Values)))
}
