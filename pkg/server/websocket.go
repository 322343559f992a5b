package server

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/pagenav/pkg/protocol"
)

// ReadLoop continuously reads messages from the WebSocket connection.
// It decodes frames, answers control messages and queues events.
// This method blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		s.UpdateLastActive()
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendErrorMessage(protocol.ErrInvalidFrame, "Invalid frame")
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)

		case protocol.FrameControl:
			if s.handleControlFrame(frame.Payload) {
				return
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes and queues an event from the client.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.sendErrorMessage(protocol.ErrInvalidEvent, "Invalid event format")
		return
	}

	if err := s.QueueEvent(ev); errors.Is(err, ErrEventQueueFull) {
		s.sendErrorMessage(protocol.ErrRateLimited, "Event queue full")
	}
}

// handleControlFrame handles ping, pong and close. It reports whether the
// client asked to close the session.
func (s *Session) handleControlFrame(payload []byte) bool {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return false
	}

	switch c.Type {
	case protocol.ControlPing:
		s.sendControl(protocol.NewPong(c.Timestamp))

	case protocol.ControlPong:
		s.logger.Debug("received pong", "rtt_ms", time.Now().UnixMilli()-int64(c.Timestamp))

	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason, "message", c.Message)
		return true
	}
	return false
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendControl(protocol.NewPing(uint64(time.Now().UnixMilli()))); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop handles queued events one at a time. It is the only goroutine
// that touches the session's gesture and key state.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)

		case <-s.done:
			return
		}
	}
}

// Start starts all session loops.
// This should be called after the handshake is complete.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// SendPatches sends patches to the client in one frame.
func (s *Session) SendPatches(patches []protocol.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	pf := &protocol.PatchesFrame{
		Seq:     s.sendSeq.Add(1),
		Patches: patches,
	}
	if err := s.writeFrameLocked(protocol.FramePatches, protocol.EncodePatches(pf)); err != nil {
		s.logger.Error("write error", "error", err)
		go s.Close()
		return NewSessionError(s.ID, "send patches", err)
	}
	s.patchCount.Add(uint64(len(patches)))
	return nil
}

// SendClose sends a close control message and closes the session.
func (s *Session) SendClose(reason protocol.CloseReason, message string) {
	s.closeWith(reason, message)
}

// sendControl sends a control message.
func (s *Session) sendControl(c *protocol.Control) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if err := s.writeFrameLocked(protocol.FrameControl, protocol.EncodeControl(c)); err != nil {
		s.logger.Error("control write error", "type", c.Type, "error", err)
		return err
	}
	return nil
}

// sendErrorMessage sends an error frame to the client.
func (s *Session) sendErrorMessage(code protocol.ErrorCode, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return
	}
	payload := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	if err := s.writeFrameLocked(protocol.FrameError, payload); err != nil {
		s.logger.Warn("error frame write failed", "code", code, "error", err)
	}
}

// writeFrameLocked writes one frame. The caller holds s.mu.
func (s *Session) writeFrameLocked(ft protocol.FrameType, payload []byte) error {
	if s.conn == nil {
		return ErrNoConnection
	}
	data, err := protocol.NewFrame(ft, payload).Encode()
	if err != nil {
		return err
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}
