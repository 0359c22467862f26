package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PanelMetrics records per-run pipeline measurements
type PanelMetrics struct {
	stageRows        metric.Int64Gauge
	stageDropped     metric.Int64Gauge
	stageDuration    metric.Float64Histogram
	coercionWarnings metric.Int64Counter
	panelRows        metric.Int64Gauge
	duplicateGroups  metric.Int64Gauge
}

// NewPanelMetrics creates the instruments on meter
func NewPanelMetrics(meter metric.Meter) (*PanelMetrics, error) {
	stageRows, err := meter.Int64Gauge(
		"firmpanel_stage_rows",
		metric.WithDescription("Rows remaining after each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	stageDropped, err := meter.Int64Gauge(
		"firmpanel_stage_dropped_rows",
		metric.WithDescription("Rows removed by each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"firmpanel_stage_duration",
		metric.WithDescription("Pipeline stage duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	coercionWarnings, err := meter.Int64Counter(
		"firmpanel_coercion_warnings",
		metric.WithDescription("Industry codes that failed numeric coercion"),
	)
	if err != nil {
		return nil, err
	}

	panelRows, err := meter.Int64Gauge(
		"firmpanel_panel_rows",
		metric.WithDescription("Firm-year rows in the final panel"),
	)
	if err != nil {
		return nil, err
	}

	duplicateGroups, err := meter.Int64Gauge(
		"firmpanel_duplicate_groups",
		metric.WithDescription("Firm-year groups with more than one filing, by phase"),
	)
	if err != nil {
		return nil, err
	}

	return &PanelMetrics{
		stageRows:        stageRows,
		stageDropped:     stageDropped,
		stageDuration:    stageDuration,
		coercionWarnings: coercionWarnings,
		panelRows:        panelRows,
		duplicateGroups:  duplicateGroups,
	}, nil
}

// RecordStage records the row counts and duration of one stage
func (m *PanelMetrics) RecordStage(ctx context.Context, stage string, rowsIn, rowsOut int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.stageRows.Record(ctx, int64(rowsOut), attrs)
	m.stageDropped.Record(ctx, int64(rowsIn-rowsOut), attrs)
	m.stageDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordCoercionWarnings adds n failed industry-code coercions
func (m *PanelMetrics) RecordCoercionWarnings(ctx context.Context, n int) {
	if n > 0 {
		m.coercionWarnings.Add(ctx, int64(n))
	}
}

// RecordPanel records the final panel size and duplicate-group counts
func (m *PanelMetrics) RecordPanel(ctx context.Context, rows, duplicatesBefore, duplicatesAfter int) {
	m.panelRows.Record(ctx, int64(rows))
	m.duplicateGroups.Record(ctx, int64(duplicatesBefore), metric.WithAttributes(attribute.String("phase", "before_dedup")))
	m.duplicateGroups.Record(ctx, int64(duplicatesAfter), metric.WithAttributes(attribute.String("phase", "after_dedup")))
}
