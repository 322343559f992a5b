package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pagenav/pkg/server"
)

const defaultTracerName = "pagenav"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "pagenav").
	TracerName string

	// Filter determines which events to trace. If nil, all events are
	// traced.
	Filter func(ec *server.EventContext) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ec *server.EventContext) []attribute.KeyValue

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ec *server.EventContext) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ec *server.EventContext) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider sets the tracer provider used instead of the global
// one.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// OpenTelemetry creates event middleware that traces every client event.
//
// Each span carries the session, page, event type and target. After the
// event is handled the span also records the outcome and, when the event
// reached the router, the navigation decision. The span context is passed
// on through EventContext.StdContext so the navigator inherits it.
//
// Configure the global tracer provider before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	srv.Use(middleware.OpenTelemetry())
func OpenTelemetry(opts ...OTelOption) server.EventMiddleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return server.EventMiddlewareFunc(func(ec *server.EventContext, next func() error) error {
		if config.Filter != nil && !config.Filter(ec) {
			return next()
		}

		spanName := "pagenav " + ec.Path()
		attrs := []attribute.KeyValue{
			attribute.String("pagenav.path", ec.Path()),
		}
		if s := ec.Session(); s != nil {
			attrs = append(attrs, attribute.String("pagenav.session_id", s.ID))
		}
		if ev := ec.Event(); ev != nil {
			attrs = append(attrs,
				attribute.String("pagenav.event_type", ev.Type.String()),
				attribute.String("pagenav.event_target", ev.HID),
				attribute.Int64("pagenav.event_seq", int64(ev.Seq)),
			)
			spanName = fmt.Sprintf("pagenav.%s", ev.Type)
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ec)...)
		}

		spanCtx, span := tracer.Start(ec.StdContext(), spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		ec.SetValue(spanContextKey{}, spanCtx)
		ec.WithStdContext(spanCtx)

		err := next()

		if ec.Outcome != "" {
			span.SetAttributes(attribute.String("pagenav.outcome", ec.Outcome))
		}
		if sw := ec.Swipe; sw != nil {
			span.SetAttributes(
				attribute.Int("pagenav.swipe.dx", sw.Delta.X),
				attribute.Int("pagenav.swipe.dy", sw.Delta.Y),
				attribute.Int64("pagenav.swipe.elapsed_ms", sw.Elapsed.Milliseconds()),
			)
		}
		if d := ec.Decision; d != nil {
			span.SetAttributes(
				attribute.String("pagenav.nav.source", d.Source.String()),
				attribute.String("pagenav.nav.requested", d.Requested.String()),
				attribute.String("pagenav.nav.resolved", d.Resolved.String()),
				attribute.String("pagenav.nav.url", d.URL),
				attribute.Bool("pagenav.nav.navigated", d.Navigated),
			)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

type spanContextKey struct{}

// SpanFromContext returns the span of the event being handled, or nil.
func SpanFromContext(ec *server.EventContext) trace.Span {
	if spanCtx, ok := ec.Value(spanContextKey{}).(context.Context); ok {
		return trace.SpanFromContext(spanCtx)
	}
	return nil
}

// TraceContext returns the context carrying the event's span, for
// propagation to outgoing calls.
func TraceContext(ec *server.EventContext) context.Context {
	if spanCtx, ok := ec.Value(spanContextKey{}).(context.Context); ok {
		return spanCtx
	}
	return ec.StdContext()
}
