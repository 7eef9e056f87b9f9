package operations

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{"validation", NewValidationError("load", "no indicators"), "[validation] load: no indicators"},
		{"with cause", NewExecutionError("plot", stderrors.New("disk full")), "[execution] plot: step execution failed: disk full"},
		{"no step", NewFatalError("invalid step registry", nil), "[fatal] invalid step registry"},
		{"nil", nil, "unknown operation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationError_Constructors(t *testing.T) {
	dep := NewDependencyError("merge", "clean", "dependency clean not completed")
	assert.Equal(t, ErrorTypeDependency, dep.Type)
	assert.Equal(t, "clean", dep.Context["depends_on"])

	timeout := NewTimeoutError("plot", "1s", context.DeadlineExceeded)
	assert.Equal(t, "1s", timeout.Context["timeout"])
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	cancelled := NewCancellationError("load", context.Canceled)
	assert.ErrorIs(t, cancelled, context.Canceled)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(cancelled))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "load", "x"))

	plain := stderrors.New("boom")
	wrapped := WrapError(plain, "load", "step execution failed")
	assert.Equal(t, ErrorTypeExecution, wrapped.Type)
	assert.Equal(t, "load", wrapped.Step)
	assert.ErrorIs(t, wrapped, plain)

	existing := NewValidationError("", "bad")
	again := WrapError(existing, "clean", "context")
	assert.Same(t, existing, again)
	assert.Equal(t, "clean", again.Step)
	assert.Equal(t, "context: bad", again.Message)
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(stderrors.New("plain")))

	var list ErrorList
	assert.False(t, list.HasErrors())
	assert.Equal(t, "no errors", list.Error())
	list.Add(nil)
	list.Add(NewTimeoutError("plot", "1s", nil))
	list.Add(NewValidationError("export", "missing"))
	require.True(t, list.HasErrors())
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(&list))
	assert.Contains(t, list.Error(), "2 errors occurred")
}

func TestStepState_Lifecycle(t *testing.T) {
	s := NewStepState(StepIDLoad, StepNameLoad)
	assert.Equal(t, StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.GetStatus())
	s.UpdateProgress(50, "co2")
	s.SetMetadata("rows", 12)
	assert.Equal(t, float64(50), s.Progress)
	assert.Equal(t, "co2", s.Message)

	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.GetStatus())
	assert.Equal(t, float64(100), s.Progress)
	assert.Equal(t, 12, s.Metadata["rows"])
	assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))

	failed := NewStepState("x", "X")
	failed.Start()
	failed.Fail(stderrors.New("nope"))
	assert.Equal(t, StepStatusFailed, failed.GetStatus())
	assert.EqualError(t, failed.Error, "nope")

	skipped := NewStepState("y", "Y")
	skipped.Skip("Dependency x failed")
	assert.Equal(t, StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "Dependency x failed", skipped.Message)
}

func TestBaseStage_Validate(t *testing.T) {
	base := NewBaseStage(StepIDMerge, StepNameMerge, nil, ContextKeyIndicators)
	assert.Equal(t, []string{}, base.GetDependencies())

	state := NewOperationState("run")
	assert.Error(t, base.Validate(state))
	state.SetContext(ContextKeyIndicators, "anything")
	assert.NoError(t, base.Validate(state))

	var nilBase *BaseStage
	assert.Empty(t, nilBase.ID())
	assert.Error(t, nilBase.Validate(state))
}
