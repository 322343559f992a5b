package server

import (
	"context"
	"errors"
	"testing"

	"github.com/vango-dev/pagenav/pkg/protocol"
)

func TestRunMiddleware_Order(t *testing.T) {
	var order []string
	mw := func(name string) EventMiddleware {
		return EventMiddlewareFunc(func(ec *EventContext, next func() error) error {
			order = append(order, name+">")
			err := next()
			order = append(order, "<"+name)
			return err
		})
	}
	ec := NewTestEventContext(context.Background(), "s1", "/a", &protocol.Event{})
	err := runMiddleware([]EventMiddleware{mw("a"), mw("b")}, ec, func() error {
		order = append(order, "handler")
		return nil
	})
	if err != nil {
		t.Fatalf("runMiddleware() error = %v", err)
	}
	want := []string{"a>", "b>", "handler", "<b", "<a"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRunMiddleware_ShortCircuit(t *testing.T) {
	stop := errors.New("stop")
	called := false
	ec := NewTestEventContext(context.Background(), "s1", "/a", &protocol.Event{})
	err := runMiddleware([]EventMiddleware{
		EventMiddlewareFunc(func(*EventContext, func() error) error { return stop }),
	}, ec, func() error {
		called = true
		return nil
	})
	if !errors.Is(err, stop) || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
}

func TestEventContext_Values(t *testing.T) {
	type key struct{}
	ec := NewTestEventContext(nil, "s1", "/a", nil)
	if ec.StdContext() == nil {
		t.Fatal("StdContext() = nil")
	}
	if ec.Value(key{}) != nil {
		t.Error("Value() on empty context not nil")
	}
	ec.SetValue(key{}, 7)
	if ec.Value(key{}) != 7 {
		t.Errorf("Value() = %v, want 7", ec.Value(key{}))
	}
	if ec.Session().ID != "s1" || ec.Path() != "/a" {
		t.Errorf("Session() = %+v", ec.Session())
	}
}

func TestSession_HandlerPanicIsRecovered(t *testing.T) {
	s := newSession(nil, &Page{Path: "/a"}, nil, nil, nil)
	s.recognizer = nil // Start on a nil recognizer panics
	ec := newEventContext(s, &protocol.Event{
		Type:    protocol.EventTouchStart,
		Payload: &protocol.TouchEventData{Touches: []protocol.TouchPoint{{}}},
	})
	err := s.safeDispatch(ec)
	var hp *HandlerPanic
	if !errors.As(err, &hp) {
		t.Fatalf("safeDispatch() error = %v, want HandlerPanic", err)
	}
	if ec.Outcome != OutcomeError {
		t.Errorf("Outcome = %q, want error", ec.Outcome)
	}
}
