package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/codes"
)

type Code codes.Code

const (
	Unset Code = Code(codes.Unset)
	Error Code = Code(codes.Error)
	Ok    Code = Code(codes.Ok)
)

// Span is one traced unit of work
type Span interface {
	SetAttribute(key string, value interface{})
	SetAttributes(attributes map[string]interface{})

	// SetStatus marks the outcome, RecordError alone leaves it untouched
	SetStatus(code Code, info string)
	RecordError(err error)

	End()

	// Context carries the span to child spans
	Context() context.Context
}

type Tracer interface {
	Start(name string) Span
	StartWithContext(ctx context.Context, name string) Span
}

type TracerProvider interface {
	NewTracer(namespace string) Tracer
	Shutdown(ctx context.Context) error
}
