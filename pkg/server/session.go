package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/pagenav/pkg/gesture"
	"github.com/vango-dev/pagenav/pkg/keynav"
	"github.com/vango-dev/pagenav/pkg/nav"
	"github.com/vango-dev/pagenav/pkg/protocol"
)

// Session represents a single WebSocket connection showing one page.
//
// The recognizer, key navigator and router are owned by the event loop
// goroutine; ReadLoop only decodes and queues events.
type Session struct {
	// Identity
	ID        string
	Path      string
	CreatedAt time.Time

	lastActive atomic.Int64 // Unix nanoseconds

	// Connection
	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	// Sequence numbers
	sendSeq atomic.Uint64 // Last patch sequence sent
	recvSeq atomic.Uint64 // Last received event sequence

	// Input state
	page       *Page
	recognizer *gesture.Recognizer
	keys       *keynav.Navigator
	router     *nav.Router
	middleware []EventMiddleware

	// batch collects navigate patches issued while an event is handled so
	// they share a frame with the swipe dispatch.
	batch   []protocol.Patch
	batchOn bool
	batchMu sync.Mutex

	// Channels
	events chan *protocol.Event
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	config  *SessionConfig
	logger  *slog.Logger
	onClose func(*Session)

	// Metrics
	eventCount   atomic.Uint64
	droppedCount atomic.Uint64
	swipeCount   atomic.Uint64
	navCount     atomic.Uint64
	patchCount   atomic.Uint64
	bytesSent    atomic.Uint64
	bytesRecv    atomic.Uint64
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession creates a session for page on conn.
func newSession(conn *websocket.Conn, page *Page, config *SessionConfig, logger *slog.Logger, mws []EventMiddleware) *Session {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	id := generateSessionID()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:         id,
		Path:       page.Path,
		CreatedAt:  now,
		conn:       conn,
		page:       page,
		recognizer: gesture.NewRecognizer(gesture.WithDefaults(config.Swipe)),
		middleware: mws,
		events:     make(chan *protocol.Event, config.MaxEventQueue),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		logger:     logger.With("session_id", id, "path", page.Path),
	}
	s.lastActive.Store(now.UnixNano())

	s.router = nav.NewRouter(page.Targets, s,
		nav.WithReloadHint(config.ReloadHint),
		nav.WithLogger(s.logger),
	)
	s.keys = keynav.New(page.Targets, s.router)
	return s
}

// Page returns the page the session was opened on.
func (s *Session) Page() *Page {
	return s.page
}

// Navigate implements nav.Navigator by sending a navigate patch. While an
// event is being handled the patch is held back and sent with the frame
// that carries the event's other patches.
func (s *Session) Navigate(_ context.Context, url string) error {
	return s.queuePatch(protocol.NewNavigatePatch(url, false))
}

func (s *Session) beginBatch() {
	s.batchMu.Lock()
	s.batchOn = true
	s.batch = nil
	s.batchMu.Unlock()
}

// queuePatch adds p to the current batch, or sends it when none is open.
func (s *Session) queuePatch(p protocol.Patch) error {
	s.batchMu.Lock()
	if s.batchOn {
		s.batch = append(s.batch, p)
		s.batchMu.Unlock()
		return nil
	}
	s.batchMu.Unlock()
	return s.SendPatches([]protocol.Patch{p})
}

// flushBatch closes the batch and sends what it collected.
func (s *Session) flushBatch() error {
	s.batchMu.Lock()
	patches := s.batch
	s.batch = nil
	s.batchOn = false
	s.batchMu.Unlock()
	if len(patches) == 0 {
		return nil
	}
	return s.SendPatches(patches)
}

// Close gracefully closes the session.
func (s *Session) Close() {
	s.closeWith(protocol.CloseNormal, "")
}

func (s *Session) closeWith(reason protocol.CloseReason, message string) {
	if s.closed.Swap(true) {
		return
	}

	close(s.done)
	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	if s.conn != nil {
		if reason != protocol.CloseNormal {
			s.writeFrameLocked(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(reason, message)))
		}
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	}
	s.mu.Unlock()

	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"dropped", s.droppedCount.Load(),
		"swipes", s.swipeCount.Load(),
		"navigations", s.navCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load())

	if s.onClose != nil {
		s.onClose(s)
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// QueueEvent queues an event for the event loop.
func (s *Session) QueueEvent(ev *protocol.Event) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		s.droppedCount.Add(1)
		s.logger.Warn("event queue full, dropping event", "type", ev.Type, "hid", ev.HID)
		return ErrEventQueueFull
	}
}

// UpdateLastActive updates the last activity timestamp.
func (s *Session) UpdateLastActive() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last message from the client.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Stats returns session statistics.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:          s.ID,
		Path:        s.Path,
		CreatedAt:   s.CreatedAt,
		LastActive:  s.LastActive(),
		EventCount:  s.eventCount.Load(),
		Dropped:     s.droppedCount.Load(),
		Swipes:      s.swipeCount.Load(),
		Navigations: s.navCount.Load(),
		PatchCount:  s.patchCount.Load(),
		BytesSent:   s.bytesSent.Load(),
		BytesRecv:   s.bytesRecv.Load(),
	}
}

// SessionStats contains session statistics.
type SessionStats struct {
	ID          string
	Path        string
	CreatedAt   time.Time
	LastActive  time.Time
	EventCount  uint64
	Dropped     uint64
	Swipes      uint64
	Navigations uint64
	PatchCount  uint64
	BytesSent   uint64
	BytesRecv   uint64
}
