package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/notuslabs/notus-aa/versioning"
)

// NewTracerProvider exports every span to the jaeger collector at url
func NewTracerProvider(ctx context.Context, url string, service string) (TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(serviceResource(service)),
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	return newOtelProvider(ctx, tp), nil
}

func serviceResource(service string) *resource.Resource {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	commit := versioning.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		attribute.String("hostname", hostname),
		attribute.String("version", versioning.Version),
		attribute.String("commit", commit),
	)
}

type otelProvider struct {
	ctx      context.Context
	provider *tracesdk.TracerProvider
}

func newOtelProvider(ctx context.Context, tp *tracesdk.TracerProvider) *otelProvider {
	return &otelProvider{ctx: ctx, provider: tp}
}

func (p *otelProvider) NewTracer(namespace string) Tracer {
	return &otelTracer{
		ctx:    p.ctx,
		tracer: p.provider.Tracer(namespace),
	}
}

// Shutdown flushes the spans still batched
func (p *otelProvider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}

type otelTracer struct {
	ctx    context.Context
	tracer trace.Tracer
}

func (t *otelTracer) Start(name string) Span {
	return t.StartWithContext(t.ctx, name)
}

func (t *otelTracer) StartWithContext(ctx context.Context, name string) Span {
	spanCtx, span := t.tracer.Start(ctx, name)

	return &otelSpan{ctx: spanCtx, span: span}
}

type otelSpan struct {
	ctx  context.Context
	span trace.Span
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *otelSpan) SetAttributes(attributes map[string]interface{}) {
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		kvs = append(kvs, toAttribute(key, value))
	}

	s.span.SetAttributes(kvs...)
}

func (s *otelSpan) SetStatus(code Code, info string) {
	s.span.SetStatus(codes.Code(code), info)
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) Context() context.Context {
	return s.ctx
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	k := attribute.Key(key)

	switch v := value.(type) {
	case string:
		return k.String(v)
	case bool:
		return k.Bool(v)
	case int:
		return k.Int(v)
	case int64:
		return k.Int64(v)
	case uint64:
		return k.Int64(int64(v))
	case float64:
		return k.Float64(v)
	case fmt.Stringer:
		return k.String(v.String())
	default:
		return k.String(fmt.Sprintf("%v", v))
	}
}
