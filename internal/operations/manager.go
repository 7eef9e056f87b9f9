package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"energyreport/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		// no-op instruments cannot fail to register
		tracer, _ = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs every registered step in dependency order. The returned
// response is populated even when an error is returned.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GetTraceID(ctx)
	}
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		opErr := NewFatalError("invalid step registry", err)
		m.logOperationError(ctx, req.ID, opErr)
		state.Fail(opErr)
		return m.createResponse(state), opErr
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, len(steps))
	defer span.End()

	m.logOperationStart(ctx, req.ID, req)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.GetStatus(), state.Duration(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	}
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.GetStatus()))

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var failures ErrorList

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipPending(state, steps[i:], "Operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		stepState := state.GetStage(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusSkipped {
			m.logger.InfoContext(ctx, "step_skipped",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("reason", stepState.Message))
			continue
		}

		m.logger.DebugContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		err := m.executeStage(ctx, state, step)
		if err == nil {
			continue
		}

		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipPending(state, steps[i+1:], "Operation cancelled")
			return err
		}

		m.skipDependentStages(state, steps, step.ID())
		if !m.config.ContinueOnError {
			m.skipPending(state, steps[i+1:], fmt.Sprintf("Step %s failed", step.ID()))
			return err
		}

		m.logger.WarnContext(ctx, "step_failed_continuing",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		failures.Add(WrapError(err, step.ID(), ""))
	}

	switch len(failures.Errors) {
	case 0:
		return nil
	case 1:
		return failures.Errors[0]
	default:
		return &failures
	}
}

// executeStage executes a single Step inside its own span and timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) (err error) {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	spanCtx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()
	defer func() {
		m.tracer.RecordStageCompletion(spanCtx, span, step.ID(), stepState.GetStatus(), stepState.Duration(), err)
	}()

	if depErr := m.checkDependencies(state, step); depErr != nil {
		stepState.Skip(fmt.Sprintf("Dependencies not met: %v", depErr))
		return depErr
	}

	if valErr := step.Validate(state); valErr != nil {
		m.logger.WarnContext(ctx, "validation_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", valErr.Error()))
		stepState.Skip(fmt.Sprintf("Validation failed: %v", valErr))
		opErr := NewValidationError(step.ID(), "step validation failed")
		opErr.Cause = valErr
		return opErr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(spanCtx, timeout)
	defer cancel()

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()

	execErr := step.Execute(stepCtx, state)
	if execErr == nil {
		stepState.Complete()
		m.logStageComplete(ctx, state.ID, step.ID(), time.Since(start))
		return nil
	}

	switch {
	case ctx.Err() != nil:
		err = NewCancellationError(step.ID(), ctx.Err())
	case stderrors.Is(stepCtx.Err(), context.DeadlineExceeded):
		err = NewTimeoutError(step.ID(), timeout.String(), execErr)
	default:
		err = WrapError(execErr, step.ID(), "step execution failed")
	}

	stepState.Fail(err)
	m.logStageError(ctx, state.ID, step.ID(), err)
	return err
}

// skipDependentStages marks all steps that depend on the failed Step as skipped
func (m *Manager) skipDependentStages(state *OperationState, steps []Step, failedStepID string) {
	for _, step := range steps {
		for _, dep := range step.GetDependencies() {
			if dep != failedStepID {
				continue
			}
			stepState := state.GetStage(step.ID())
			if stepState != nil && stepState.GetStatus() == StepStatusPending {
				stepState.Skip(fmt.Sprintf("Dependency %s failed", failedStepID))
				// Recursively skip steps that depend on this one
				m.skipDependentStages(state, steps, step.ID())
			}
			break
		}
	}
}

// skipPending marks every step that has not started as skipped
func (m *Manager) skipPending(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStage(step.ID()); stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

// checkDependencies verifies that all dependencies are satisfied
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not found", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    state.Steps,
		State:    state,
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}
