// Package operations runs the energy report as a sequence of steps.
//
// Core Components:
//
// Manager: Executes the registered steps in dependency order, one at a time.
// Each step runs inside its own span and timeout. When a step fails, the
// steps that depend on it are skipped; with ContinueOnError the independent
// steps still run.
//
// Step: A single unit of work. Steps exchange their results through the
// OperationState context map, under the ContextKey* names.
//
// Registry: Holds the steps in registration order and derives the execution
// order from their dependencies.
//
// OperationTracer: Records spans and pipeline metrics for runs, steps and
// datasets.
//
// The analysis steps are load, clean, plot, merge, correlate, summarize and
// export. NewPipeline builds them from StepDeps.
//
// Example usage:
//
//	manager := operations.NewManager(nil, nil, tracer, logger)
//	err := operations.RegisterPipeline(manager, operations.StepDeps{
//		Options: opts,
//		Paths:   paths,
//		Tracer:  tracer,
//		Logger:  logger,
//		Out:     os.Stdout,
//	})
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
