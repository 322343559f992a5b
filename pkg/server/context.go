package server

import (
	"context"

	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/nav"
	"github.com/vango-dev/pagenav/pkg/protocol"
)

// Event outcomes reported on EventContext. Touch-end events report the
// gesture outcome instead ("swiped", "below-threshold", ...).
const (
	OutcomeHandled = "handled" // key press navigated or was claimed
	OutcomeIgnored = "ignored" // left to the browser, or nothing to track
	OutcomeTracked = "tracked" // touch start or move updated the sequence
	OutcomeError   = "error"
)

// EventContext carries one input event through the event middleware chain.
// It is only valid on the session's event loop while the event is handled.
type EventContext struct {
	session *Session
	event   *protocol.Event
	ctx     context.Context
	values  map[any]any

	// Outcome is set by the session once the event is handled.
	Outcome string

	// Swipe is the gesture result of a touch-end event.
	Swipe *gesture.Result

	// Decision is set when the event reached the direction router.
	Decision *nav.Decision
}

func newEventContext(s *Session, ev *protocol.Event) *EventContext {
	return &EventContext{
		session: s,
		event:   ev,
		ctx:     s.ctx,
	}
}

// Session returns the session the event arrived on.
func (ec *EventContext) Session() *Session {
	return ec.session
}

// Event returns the decoded client event.
func (ec *EventContext) Event() *protocol.Event {
	return ec.event
}

// Path returns the page path of the session.
func (ec *EventContext) Path() string {
	if ec.session == nil {
		return ""
	}
	return ec.session.Path
}

// StdContext returns the context used for blocking work done for the event.
func (ec *EventContext) StdContext() context.Context {
	if ec.ctx == nil {
		return context.Background()
	}
	return ec.ctx
}

// WithStdContext replaces the context passed to the handler, e.g. to carry
// a trace span.
func (ec *EventContext) WithStdContext(ctx context.Context) {
	ec.ctx = ctx
}

// SetValue stores a value for later middleware.
func (ec *EventContext) SetValue(key, value any) {
	if ec.values == nil {
		ec.values = make(map[any]any)
	}
	ec.values[key] = value
}

// Value returns a value stored with SetValue.
func (ec *EventContext) Value(key any) any {
	return ec.values[key]
}

// EventMiddleware wraps the handling of input events.
type EventMiddleware interface {
	Handle(ec *EventContext, next func() error) error
}

// EventMiddlewareFunc adapts a function to EventMiddleware.
type EventMiddlewareFunc func(ec *EventContext, next func() error) error

// Handle calls f(ec, next).
func (f EventMiddlewareFunc) Handle(ec *EventContext, next func() error) error {
	return f(ec, next)
}

// runMiddleware runs final inside mws, first middleware outermost.
func runMiddleware(mws []EventMiddleware, ec *EventContext, final func() error) error {
	next := final
	for i := len(mws) - 1; i >= 0; i-- {
		mw, inner := mws[i], next
		next = func() error { return mw.Handle(ec, inner) }
	}
	return next()
}

// NewTestEventContext creates an EventContext outside a live session, for
// testing middleware.
func NewTestEventContext(ctx context.Context, sessionID, path string, ev *protocol.Event) *EventContext {
	return &EventContext{
		session: &Session{ID: sessionID, Path: path},
		event:   ev,
		ctx:     ctx,
	}
}
