package server

import (
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/keynav"
	"github.com/vango-dev/pagenav/pkg/nav"
	"github.com/vango-dev/pagenav/pkg/protocol"
)

// handleEvent runs one client event through the middleware chain and the
// input components.
func (s *Session) handleEvent(ev *protocol.Event) {
	s.recvSeq.Store(ev.Seq)
	s.eventCount.Add(1)

	ec := newEventContext(s, ev)
	s.beginBatch()
	err := runMiddleware(s.middleware, ec, func() error {
		err := s.safeDispatch(ec)
		if flushErr := s.flushBatch(); err == nil {
			err = flushErr
		}
		return err
	})
	// Closes the batch when a middleware did not call next.
	s.flushBatch()
	if ec.Decision != nil && ec.Decision.Navigated {
		s.navCount.Add(1)
	}
	if err != nil {
		s.logger.Warn("event handling failed",
			"type", ev.Type,
			"hid", ev.HID,
			"error", err)
	}
}

// safeDispatch calls dispatch with panic recovery.
func (s *Session) safeDispatch(ec *EventContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event panic",
				"panic", r,
				"type", ec.event.Type,
				"stack", string(debug.Stack()))
			ec.Outcome = OutcomeError
			err = &HandlerPanic{Value: r}
		}
	}()
	return s.dispatch(ec)
}

func (s *Session) dispatch(ec *EventContext) error {
	ev := ec.event
	switch ev.Type {
	case protocol.EventKeyDown:
		data, ok := ev.Payload.(*protocol.KeyboardEventData)
		if !ok {
			ec.Outcome = OutcomeIgnored
			return nil
		}
		return s.handleKeyDown(ec, data)

	case protocol.EventTouchStart, protocol.EventTouchMove, protocol.EventTouchEnd:
		data, ok := ev.Payload.(*protocol.TouchEventData)
		if !ok {
			ec.Outcome = OutcomeIgnored
			return nil
		}
		return s.handleTouch(ec, data)

	default:
		ec.Outcome = OutcomeIgnored
		return nil
	}
}

func (s *Session) handleKeyDown(ec *EventContext, data *protocol.KeyboardEventData) error {
	res, err := s.keys.KeyDown(ec.StdContext(), keynav.Press{
		Code:     data.KeyCode,
		Modified: data.Modifiers.Shortcut(),
	})
	if !res.Handled {
		ec.Outcome = OutcomeIgnored
		return nil
	}
	ec.Outcome = OutcomeHandled
	ec.Decision = &res.Decision
	return err
}

func (s *Session) handleTouch(ec *EventContext, data *protocol.TouchEventData) error {
	ev := ec.event
	pt, ok := data.Primary()
	at := time.Duration(data.TimeStamp) * time.Millisecond
	point := gesture.Point{X: pt.ClientX, Y: pt.ClientY}

	switch ev.Type {
	case protocol.EventTouchStart:
		if !ok {
			ec.Outcome = OutcomeIgnored
			return nil
		}
		s.recognizer.Start(gesture.Touch{Target: ev.HID, Point: point, At: at})
		ec.Outcome = OutcomeTracked
		return nil

	case protocol.EventTouchMove:
		if !ok || !s.recognizer.Move(point) {
			ec.Outcome = OutcomeIgnored
			return nil
		}
		ec.Outcome = OutcomeTracked
		return nil
	}

	res := s.recognizer.End(ev.HID, at, data)
	ec.Swipe = &res
	ec.Outcome = res.Outcome.String()
	if !res.Swiped() {
		s.logger.Debug("touch sequence rejected",
			"outcome", res.Outcome,
			"dx", res.Delta.X,
			"dy", res.Delta.Y,
			"elapsed", res.Elapsed)
		return nil
	}

	s.swipeCount.Add(1)
	detail, _ := json.Marshal(swipeDetail{
		Direction: res.Event.Direction.String(),
		DX:        res.Delta.X,
		DY:        res.Delta.Y,
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
	if err := s.queuePatch(protocol.NewDispatchPatch(res.Event.Target, res.Event.Name(), string(detail))); err != nil {
		return err
	}

	dec, err := s.router.Navigate(ec.StdContext(), res.Event.Direction, nav.SourceSwipe)
	ec.Decision = &dec
	return err
}

// swipeDetail is the CustomEvent detail of a dispatched swipe.
type swipeDetail struct {
	Direction string `json:"direction"`
	DX        int    `json:"dx"`
	DY        int    `json:"dy"`
	ElapsedMS int64  `json:"elapsed"`
}

// HandlerPanic is returned to middleware when event handling panicked.
type HandlerPanic struct {
	Value any
}

func (p *HandlerPanic) Error() string {
	return "server: panic while handling event"
}
