package gesture

import (
	"time"

	"github.com/vango-dev/pagenav/pkg/nav"
)

// Point is a position in client pixels.
type Point struct {
	X int
	Y int
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Touch is a touch-start observation.
type Touch struct {
	// Target identifies the element that received the touch.
	Target string

	// Point is where the finger went down.
	Point Point

	// At is the event timestamp relative to the page's time origin.
	At time.Duration
}

// State is the recognizer's sequence state: Idle or Tracking.
type State interface {
	state()
}

// Idle means no touch sequence is in flight.
type Idle struct{}

// Tracking is the single in-flight touch sequence.
type Tracking struct {
	Target string
	Origin Point
	Start  time.Duration

	// Delta is origin minus the latest move position.
	Delta Point
}

func (Idle) state()     {}
func (Tracking) state() {}

// Outcome classifies how a touch-end was resolved.
type Outcome uint8

const (
	OutcomeSwiped Outcome = iota
	OutcomeNoSequence
	OutcomeTargetMismatch
	OutcomeBelowThreshold
	OutcomeTimedOut
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeSwiped:
		return "swiped"
	case OutcomeNoSequence:
		return "no-sequence"
	case OutcomeTargetMismatch:
		return "target-mismatch"
	case OutcomeBelowThreshold:
		return "below-threshold"
	case OutcomeTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// SwipeEvent is a recognized swipe on an element.
type SwipeEvent struct {
	Direction nav.Direction
	Target    string
}

// Name returns the client event name, e.g. "swiped-left".
func (e SwipeEvent) Name() string {
	return EventName(e.Direction)
}

// EventName returns the client event name for a direction.
func EventName(d nav.Direction) string {
	return "swiped-" + d.String()
}

// Result describes a completed touch-end.
type Result struct {
	Outcome    Outcome
	Event      SwipeEvent
	Delta      Point
	Elapsed    time.Duration
	Thresholds Thresholds
}

// Swiped reports whether the sequence produced a SwipeEvent.
func (r Result) Swiped() bool {
	return r.Outcome == OutcomeSwiped
}

// Recognizer turns one touch sequence at a time into at most one swipe.
//
// A Recognizer is not safe for concurrent use. Sessions drive it from their
// event loop goroutine only.
type Recognizer struct {
	state    State
	defaults Thresholds
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithDefaults sets the thresholds used when an element has no overrides.
// Zero fields keep the built-in defaults.
func WithDefaults(t Thresholds) Option {
	return func(r *Recognizer) {
		r.defaults = t.orDefault()
	}
}

// NewRecognizer creates an idle Recognizer.
func NewRecognizer(opts ...Option) *Recognizer {
	r := &Recognizer{
		state:    Idle{},
		defaults: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current sequence state.
func (r *Recognizer) State() State {
	return r.state
}

// Defaults returns the thresholds used for elements without overrides.
func (r *Recognizer) Defaults() Thresholds {
	return r.defaults
}

// Start begins tracking a new sequence. Any sequence in flight is abandoned
// without producing an event.
func (r *Recognizer) Start(t Touch) {
	r.state = Tracking{
		Target: t.Target,
		Origin: t.Point,
		Start:  t.At,
	}
}

// Move updates the sequence delta to origin minus p. It returns false and
// does nothing when no sequence is being tracked.
func (r *Recognizer) Move(p Point) bool {
	tr, ok := r.state.(Tracking)
	if !ok {
		return false
	}
	tr.Delta = tr.Origin.Sub(p)
	r.state = tr
	return true
}

// End finishes the sequence and classifies it. The recognizer is Idle
// afterwards whatever the outcome.
func (r *Recognizer) End(target string, at time.Duration, attrs Attributes) Result {
	tr, ok := r.state.(Tracking)
	r.state = Idle{}
	if !ok {
		return Result{Outcome: OutcomeNoSequence}
	}

	res := Result{
		Delta:   tr.Delta,
		Elapsed: at - tr.Start,
	}
	if target != tr.Target {
		res.Outcome = OutcomeTargetMismatch
		return res
	}

	res.Thresholds = ThresholdsFor(attrs, r.defaults)
	dir, magnitude := dominant(tr.Delta)

	switch {
	case magnitude <= res.Thresholds.Distance:
		res.Outcome = OutcomeBelowThreshold
	case res.Elapsed >= res.Thresholds.Timeout:
		res.Outcome = OutcomeTimedOut
	default:
		res.Outcome = OutcomeSwiped
		res.Event = SwipeEvent{Direction: dir, Target: tr.Target}
	}
	return res
}

// Reset drops any sequence in flight.
func (r *Recognizer) Reset() {
	r.state = Idle{}
}

// dominant picks the axis with the larger absolute displacement and the
// direction of finger travel on it. Ties go to the vertical axis.
func dominant(delta Point) (nav.Direction, int) {
	ax, ay := abs(delta.X), abs(delta.Y)
	if ax > ay {
		if delta.X > 0 {
			return nav.Left, ax
		}
		return nav.Right, ax
	}
	if delta.Y > 0 {
		return nav.Up, ay
	}
	return nav.Down, ay
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
