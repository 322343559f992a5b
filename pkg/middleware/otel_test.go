package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/pagenav/pkg/nav"
	"github.com/vango-dev/pagenav/pkg/protocol"
	"github.com/vango-dev/pagenav/pkg/server"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOpenTelemetry_RecordsDecision(t *testing.T) {
	rec, tp := newRecorder()
	ec := newEventContext("/a", protocol.EventKeyDown)

	mw := OpenTelemetry(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(*server.EventContext) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	)
	err := mw.Handle(ec, func() error {
		if SpanFromContext(ec) == nil {
			t.Fatal("expected SpanFromContext to return a span during execution")
		}
		if TraceContext(ec) != ec.StdContext() {
			t.Fatal("expected StdContext to carry the span context")
		}
		ec.Outcome = server.OutcomeHandled
		ec.Decision = &nav.Decision{Requested: nav.Down, Resolved: nav.Down, Source: nav.SourceKey, URL: "/b", Navigated: true}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "pagenav.KeyDown" {
		t.Errorf("span name = %q", s.Name())
	}
	for key, want := range map[string]string{
		"pagenav.path":         "/a",
		"pagenav.session_id":   "sess-1",
		"pagenav.event_target": server.SurfaceHID,
		"pagenav.outcome":      "handled",
		"pagenav.nav.resolved": "down",
		"pagenav.nav.url":      "/b",
		"test.attr":            "ok",
	} {
		if v, ok := spanAttr(s, key); !ok || v.AsString() != want {
			t.Errorf("attribute %s = %v, want %q", key, v.Emit(), want)
		}
	}
	if v, ok := spanAttr(s, "pagenav.nav.navigated"); !ok || !v.AsBool() {
		t.Error("pagenav.nav.navigated not true")
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
}

func TestOpenTelemetry_ErrorPropagates(t *testing.T) {
	rec, tp := newRecorder()
	ec := newEventContext("/a", protocol.EventTouchEnd)

	wantErr := errors.New("boom")
	err := OpenTelemetry(WithTracerProvider(tp)).Handle(ec, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected error %v, got %v", wantErr, err)
	}
	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("expected one errored span, got %d", len(spans))
	}
	if _, ok := ec.Value(spanContextKey{}).(context.Context); !ok {
		t.Fatal("expected span context to be stored on the event context")
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	rec, tp := newRecorder()
	ec := newEventContext("/a", protocol.EventTouchMove)

	nextCalled := false
	err := OpenTelemetry(
		WithTracerProvider(tp),
		WithEventFilter(func(ec *server.EventContext) bool {
			return ec.Event().Type != protocol.EventTouchMove
		}),
	).Handle(ec, func() error {
		nextCalled = true
		return nil
	})
	if err != nil || !nextCalled {
		t.Fatalf("err = %v, nextCalled = %v", err, nextCalled)
	}
	if len(rec.Ended()) != 0 {
		t.Fatal("expected no span when the filter skips the event")
	}
	if SpanFromContext(ec) != nil {
		t.Fatal("expected nil span when no span context is stored")
	}
}
