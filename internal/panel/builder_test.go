package panel

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"firmpanel/internal/errors"
	"firmpanel/internal/shared/testutil"
	"firmpanel/pkg/contracts/domain"
)

type recordedStage struct {
	name            string
	rowsIn, rowsOut int
}

type fakeRecorder struct {
	mu        sync.Mutex
	stages    []recordedStage
	coercions int
	panelRows int
	dupBefore int
	dupAfter  int
}

func (f *fakeRecorder) RecordStage(_ context.Context, stage string, rowsIn, rowsOut int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, recordedStage{stage, rowsIn, rowsOut})
}

func (f *fakeRecorder) RecordCoercionWarnings(_ context.Context, n int) {
	f.coercions += n
}

func (f *fakeRecorder) RecordPanel(_ context.Context, rows, before, after int) {
	f.panelRows, f.dupBefore, f.dupAfter = rows, before, after
}

func buildPanel(t *testing.T, filings ...domain.Filing) *Result {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	result, err := NewBuilder(DefaultOptions(), logger, nil, nil).Build(context.Background(), testutil.Table(filings...))
	require.NoError(t, err)
	return result
}

func TestBuildScenarios(t *testing.T) {
	t.Run("two filings in one year keep the latest", func(t *testing.T) {
		result := buildPanel(t,
			testutil.Filing(1, 20200301, "10-K", "7000"),
			testutil.Filing(1, 20200615, "10-K", "7000"),
		)

		require.Equal(t, 1, result.Panel.Len())
		row := result.Panel.Rows[0]
		assert.Equal(t, int64(20200615), row.FilingDate)
		assert.Equal(t, 2020, row.Year)
		assert.Equal(t, 2021, row.PerfYear())
	})

	t.Run("non-annual form is dropped", func(t *testing.T) {
		result := buildPanel(t,
			testutil.Filing(2, 20210301, "8-K", "7000"),
		)
		assert.Zero(t, result.Panel.Len())
	})

	t.Run("financial code dropped and unparseable code kept", func(t *testing.T) {
		result := buildPanel(t,
			testutil.Filing(3, 20210301, "10-K", "6500"),
			testutil.Filing(4, 20210301, "10-K", "N/A"),
		)

		require.Equal(t, 1, result.Panel.Len())
		row := result.Panel.Rows[0]
		assert.Equal(t, int64(4), row.EntityID)
		assert.False(t, row.IndustryCode.Valid)
		assert.Equal(t, 1, result.Coercion.Failed)
	})

	t.Run("filing before the start year is dropped", func(t *testing.T) {
		result := buildPanel(t,
			testutil.Filing(5, 20180101, "10-K", "7000"),
		)
		assert.Zero(t, result.Panel.Len())
	})
}

func TestBuildStagesAndDiagnostics(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	recorder := &fakeRecorder{}
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))

	table := testutil.Table(
		testutil.Filing(1, 20200301, "10-K", "7000"),
		testutil.Filing(1, 20200615, "10-K", "7000"),
		testutil.Filing(1, 20210615, "10-K", "7000"),
		testutil.Filing(2, 20210301, "8-K", "7000"),
		testutil.Filing(3, 20210301, "10-K", "6500"),
		testutil.Filing(4, 20210301, "10-K", "N/A"),
		testutil.Filing(5, 20180101, "10-K", "7000"),
	)

	builder := NewBuilder(Options{Years: YearRange{Start: 2019, End: 2023}, SampleRows: 2}, logger, provider.Tracer("test"), recorder)
	result, err := builder.Build(context.Background(), table)
	require.NoError(t, err)

	wantStages := []recordedStage{
		{StageDeriveYear, 7, 7},
		{StageYearRange, 7, 6},
		{StageFormType, 6, 5},
		{StageIndustryCoerce, 5, 5},
		{StageIndustryExclude, 5, 4},
		{StageDeduplicate, 4, 3},
	}
	assert.Equal(t, wantStages, recorder.stages)
	require.Len(t, result.Stages, len(wantStages))
	for i, s := range result.Stages {
		assert.Equal(t, wantStages[i].name, s.Name)
		assert.Equal(t, wantStages[i].rowsIn-wantStages[i].rowsOut, s.Dropped())
	}

	assert.Equal(t, Diagnostics{Filings: 4, Entities: 2, FirmYears: 3, DuplicateGroups: 1, DuplicatesWithNextYear: 1}, result.Before)
	assert.Equal(t, Diagnostics{Filings: 3, Entities: 2, FirmYears: 3}, result.After)

	assert.Equal(t, 1, recorder.coercions)
	assert.Equal(t, 3, recorder.panelRows)
	assert.Equal(t, 1, recorder.dupBefore)
	assert.Zero(t, recorder.dupAfter)

	require.Len(t, result.Sample, 2)
	assert.Equal(t, int64(1), result.Sample[0].EntityID)
	assert.Equal(t, 2020, result.Sample[0].Year)

	spans := exporter.GetSpans()
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "panel.build")
	assert.Contains(t, names, StageDeduplicate)
	assert.Len(t, names, len(wantStages)+1)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "could not be coerced")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Sample built")
	assert.True(t, handler.ContainsAttr("component", "panel"))
	testutil.AssertNoErrors(t, handler)

	// input table is untouched
	assert.Equal(t, 7, table.Len())
	assert.Zero(t, table.Rows[0].Year)
}

func TestBuildRejectsInvertedYearRange(t *testing.T) {
	builder := NewBuilder(Options{Years: YearRange{Start: 2023, End: 2019}}, nil, nil, nil)

	_, err := builder.Build(context.Background(), testutil.Table())

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestBuildEmptyTable(t *testing.T) {
	result := buildPanel(t)

	assert.Zero(t, result.Panel.Len())
	assert.Equal(t, Diagnostics{}, result.After)
	assert.Empty(t, result.Sample)
}
