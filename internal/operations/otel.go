package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"energyreport/internal/infrastructure"
)

const (
	TracerName = "energyreport.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a new operation tracer. A nil providers value
// yields the global tracer and no-op metrics.
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	var meter metric.Meter
	tracer := otel.Tracer(TracerName)
	if providers != nil {
		meter = providers.Meter
		if providers.TracerProvider != nil {
			tracer = providers.TracerProvider.Tracer(TracerName)
		}
	}

	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// TraceOperationExecution creates a span for the entire pipeline run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, steps int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.Int("operation.steps", steps),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// TraceDataset creates a span around the handling of one indicator dataset
func (pt *OperationTracer) TraceDataset(ctx context.Context, action, key string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.data.%s", action),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("indicator.key", key),
		),
	)
}

// RecordOperationCompletion records the run outcome on the span and metrics
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, status OperationStatusValue, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	pt.metrics.RunsTotal.Add(ctx, 1, attrs)
	pt.metrics.RunDuration.Record(ctx, duration.Seconds(), attrs)

	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "operation completed successfully")
}

// RecordStageCompletion records one step outcome on the span and metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, status StepStatus, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", string(status)),
	)
	pt.metrics.StepsTotal.Add(ctx, 1, attrs)
	pt.metrics.StepDuration.Record(ctx, duration.Seconds(), attrs)

	span.SetAttributes(
		attribute.String("step.status", string(status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		pt.metrics.StepErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("step", stepID),
			attribute.String("error.type", string(GetErrorType(err))),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "step completed successfully")
}

// RecordDatasetLoaded counts a parsed dataset and its rows
func (pt *OperationTracer) RecordDatasetLoaded(ctx context.Context, key string, rows int) {
	attrs := metric.WithAttributes(attribute.String("indicator", key))
	pt.metrics.DatasetsLoaded.Add(ctx, 1, attrs)
	pt.metrics.RowsLoaded.Add(ctx, int64(rows), attrs)
}

// RecordCellsFilled counts cells filled while cleaning a dataset
func (pt *OperationTracer) RecordCellsFilled(ctx context.Context, key string, cells int) {
	pt.metrics.CellsFilled.Add(ctx, int64(cells),
		metric.WithAttributes(attribute.String("indicator", key)))
}

// RecordChartRendered counts a chart written to disk
func (pt *OperationTracer) RecordChartRendered(ctx context.Context, kind string) {
	pt.metrics.ChartsRendered.Add(ctx, 1,
		metric.WithAttributes(attribute.String("chart", kind)))
}
