package operations

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyreport/internal/errors"
	"energyreport/internal/infrastructure"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, cfg *Config, steps ...Step) *Manager {
	t.Helper()
	m := NewManager(nil, cfg, nil, quietLogger())
	for _, s := range steps {
		require.NoError(t, m.RegisterStage(s))
	}
	return m
}

func statuses(resp *OperationResponse) map[string]StepStatus {
	out := make(map[string]StepStatus, len(resp.Steps))
	for id, s := range resp.Steps {
		out[id] = s.GetStatus()
	}
	return out
}

func TestManager_ExecuteSuccess(t *testing.T) {
	var order []string
	record := func(id string) func(context.Context, *OperationState) error {
		return func(_ context.Context, state *OperationState) error {
			order = append(order, id)
			state.SetContext(id, true)
			return nil
		}
	}

	a := newFakeStep("a")
	a.run = record("a")
	b := &fakeStep{BaseStage: NewBaseStage("b", "Step b", []string{"a"}, "a")}
	b.run = record("b")

	m := newTestManager(t, nil, b, a)
	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1", Parameters: map[string]interface{}{"dir": "."}})
	require.NoError(t, err)

	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, map[string]StepStatus{"a": StepStatusCompleted, "b": StepStatusCompleted}, statuses(resp))
	assert.Equal(t, float64(100), resp.Steps["b"].Progress)

	dir, ok := resp.State.GetConfig("dir")
	require.True(t, ok)
	assert.Equal(t, ".", dir)
}

func TestManager_ExecuteUsesTraceID(t *testing.T) {
	m := newTestManager(t, nil, newFakeStep("a"))

	ctx := infrastructure.WithTraceID(context.Background(), "trace-123")
	resp, err := m.Execute(ctx, OperationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "trace-123", resp.ID)

	resp, err = m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
}

func TestManager_FailureSkipsRemainingSteps(t *testing.T) {
	cause := errors.NewMissingColumnError("co2", "Country Code")

	load := newFakeStep("load")
	clean := newFakeStep("clean", "load")
	clean.run = func(context.Context, *OperationState) error { return cause }
	plot := newFakeStep("plot", "clean")
	other := newFakeStep("other")

	m := newTestManager(t, nil, load, clean, plot, other)
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrMissingColumn)
	assert.Equal(t, errors.ExitInput, errors.ExitCode(err))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "clean", opErr.Step)

	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Contains(t, resp.Error, "Country Code")
	assert.Equal(t, map[string]StepStatus{
		"load":  StepStatusCompleted,
		"clean": StepStatusFailed,
		"plot":  StepStatusSkipped,
		"other": StepStatusSkipped,
	}, statuses(resp))
	assert.Equal(t, 0, plot.calls)
	assert.Equal(t, 0, other.calls)
}

func TestManager_ContinueOnError(t *testing.T) {
	plot := newFakeStep("plot")
	plot.run = func(context.Context, *OperationState) error { return errors.NewRenderError("co2", stderrors.New("boom")) }
	merge := newFakeStep("merge")
	correlate := newFakeStep("correlate", "merge")
	export := newFakeStep("export", "plot")
	failing := newFakeStep("failing")
	failing.run = func(context.Context, *OperationState) error { return stderrors.New("second") }

	m := newTestManager(t, &Config{ContinueOnError: true}, plot, merge, correlate, export, failing)
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	var list *ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list.Errors, 2)
	assert.Len(t, list.GetByStage("plot"), 1)
	assert.ErrorIs(t, err, errors.ErrRender)

	assert.Equal(t, map[string]StepStatus{
		"plot":      StepStatusFailed,
		"merge":     StepStatusCompleted,
		"correlate": StepStatusCompleted,
		"export":    StepStatusSkipped,
		"failing":   StepStatusFailed,
	}, statuses(resp))
	assert.Equal(t, 1, correlate.calls)
	assert.Len(t, resp.State.GetFailedStages(), 2)
	assert.True(t, resp.State.HasFailures())
}

func TestManager_ValidationFailure(t *testing.T) {
	step := &fakeStep{BaseStage: NewBaseStage("merge", "Merge", nil, ContextKeyIndicators)}

	m := newTestManager(t, nil, step)
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, 0, step.calls)
	assert.Equal(t, StepStatusSkipped, resp.Steps["merge"].GetStatus())
	assert.Contains(t, resp.Steps["merge"].Message, ContextKeyIndicators)
}

func TestManager_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := newFakeStep("first")
	first.run = func(ctx context.Context, _ *OperationState) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	second := newFakeStep("second")

	m := newTestManager(t, nil, first, second)
	resp, err := m.Execute(ctx, OperationRequest{})
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps["first"].GetStatus())
	assert.Equal(t, StepStatusSkipped, resp.Steps["second"].GetStatus())
	assert.Equal(t, 0, second.calls)
}

func TestManager_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := newFakeStep("only")
	m := newTestManager(t, nil, step)
	resp, err := m.Execute(ctx, OperationRequest{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Equal(t, 0, step.calls)
}

func TestManager_StepTimeout(t *testing.T) {
	slow := newFakeStep("slow")
	slow.run = func(ctx context.Context, _ *OperationState) error {
		<-ctx.Done()
		return ctx.Err()
	}

	cfg := NewConfig()
	cfg.SetStageTimeout("slow", 10*time.Millisecond)
	m := newTestManager(t, cfg, slow)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_InvalidRegistry(t *testing.T) {
	m := newTestManager(t, nil, newFakeStep("a", "ghost"))

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeFatal, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestConfig_StageTimeout(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultStageTimeout, cfg.GetStageTimeout(StepIDLoad))

	cfg.SetStageTimeout(StepIDLoad, time.Minute)
	assert.Equal(t, time.Minute, cfg.GetStageTimeout(StepIDLoad))

	cfg.SetStageTimeout(StepIDLoad, 0)
	assert.Equal(t, DefaultStageTimeout, cfg.GetStageTimeout(StepIDLoad))
}
