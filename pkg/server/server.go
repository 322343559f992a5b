package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/pagenav/pkg/protocol"
)

// Server serves a deck of pages over HTTP and drives page navigation over
// one WebSocket per open page.
type Server struct {
	config   *ServerConfig
	sessions *SessionManager
	deck     atomic.Pointer[Deck]
	upgrader websocket.Upgrader

	mu         sync.Mutex
	middleware []EventMiddleware
	mounts     []mount
	httpServer *http.Server

	logger *slog.Logger
}

type mount struct {
	pattern string
	handler http.Handler
}

// New creates a server for deck. Zero fields of config take their defaults
// and config is not modified.
func New(config *ServerConfig, deck *Deck) *Server {
	defaults := DefaultServerConfig()
	if config == nil {
		config = defaults
	} else {
		config = config.Clone()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadBufferSize == 0 {
			config.ReadBufferSize = defaults.ReadBufferSize
		}
		if config.WriteBufferSize == 0 {
			config.WriteBufferSize = defaults.WriteBufferSize
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
		if config.ReadHeaderTimeout == 0 {
			config.ReadHeaderTimeout = defaults.ReadHeaderTimeout
		}
	}
	config.SessionConfig = config.SessionConfig.withDefaults()
	if config.CheckOrigin == nil {
		config.CheckOrigin = OriginChecker(config.AllowedOrigins)
	}

	logger := slog.Default().With("component", "server")

	s := &Server{
		config:   config,
		sessions: NewSessionManager(config.SessionConfig, config.MaxSessions, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}
	s.deck.Store(deck)

	if config.OnSessionClose != nil {
		s.sessions.SetOnSessionClose(config.OnSessionClose)
	}
	return s
}

// SetDeck replaces the deck served to new requests and sessions. Open
// sessions keep the page they were created with.
func (s *Server) SetDeck(d *Deck) {
	s.deck.Store(d)
	s.logger.Info("deck updated", "pages", d.Len())
}

// Deck returns the current deck.
func (s *Server) Deck() *Deck {
	return s.deck.Load()
}

// Use appends event middleware. Middleware added after a session starts is
// only seen by later sessions.
func (s *Server) Use(mws ...EventMiddleware) {
	s.mu.Lock()
	s.middleware = append(s.middleware, mws...)
	s.mu.Unlock()
}

// Mount registers an extra HTTP handler, such as a metrics endpoint, on the
// server's router. It must be called before Handler.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mu.Lock()
	s.mounts = append(s.mounts, mount{pattern: pattern, handler: h})
	s.mu.Unlock()
}

func (s *Server) eventMiddleware() []EventMiddleware {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EventMiddleware(nil), s.middleware...)
}

// HandleWebSocket upgrades the request and runs the handshake. The client
// names the page it is showing; the session is bound to that page.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sc := s.config.SessionConfig
	conn.SetReadLimit(sc.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(sc.HandshakeTimeout))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		s.logger.Error("handshake read failed", "error", err)
		conn.Close()
		return
	}

	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHandshake {
		s.logger.Warn("handshake frame rejected", "error", err)
		s.rejectHandshake(conn, protocol.HandshakeInvalidFormat)
		return
	}

	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		s.rejectHandshake(conn, protocol.HandshakeInvalidFormat)
		return
	}
	if !hello.Version.Compatible() {
		s.logger.Warn("protocol version mismatch",
			"client_major", hello.Version.Major,
			"client_minor", hello.Version.Minor)
		s.rejectHandshake(conn, protocol.HandshakeVersionMismatch)
		return
	}

	page, ok := s.Deck().Lookup(hello.Path)
	if !ok {
		s.logger.Warn("handshake for unknown page", "path", hello.Path)
		s.rejectHandshake(conn, protocol.HandshakeUnknownPage)
		return
	}

	session, err := s.sessions.Create(conn, page, s.eventMiddleware())
	if err != nil {
		status := protocol.HandshakeInternalError
		if errors.Is(err, ErrMaxSessionsReached) {
			status = protocol.HandshakeServerBusy
		}
		s.logger.Warn("session rejected", "error", err)
		s.rejectHandshake(conn, status)
		return
	}

	if s.config.OnSessionStart != nil {
		s.config.OnSessionStart(r.Context(), session)
	}

	if err := s.sendServerHello(conn, session); err != nil {
		s.logger.Error("handshake write failed", "error", err)
		session.Close()
		return
	}
	session.Start()
}

// rejectHandshake answers with an error status and closes conn.
func (s *Server) rejectHandshake(conn *websocket.Conn, status protocol.HandshakeStatus) {
	payload := protocol.EncodeServerHello(protocol.NewServerHelloError(status))
	if data, err := protocol.NewFrame(protocol.FrameHandshake, payload).Encode(); err == nil {
		conn.SetWriteDeadline(time.Now().Add(s.config.SessionConfig.WriteTimeout))
		conn.WriteMessage(websocket.BinaryMessage, data)
	}
	conn.Close()
}

// sendServerHello sends a successful handshake response.
func (s *Server) sendServerHello(conn *websocket.Conn, session *Session) error {
	hello := protocol.NewServerHello(session.ID, uint64(time.Now().UnixMilli()))
	data, err := protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeServerHello(hello)).Encode()
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(s.config.SessionConfig.WriteTimeout))
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.mu.Lock()
	s.httpServer = hs
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	s.mu.Lock()
	hs := s.httpServer
	s.mu.Unlock()
	if hs != nil {
		if err := hs.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger. It must be called before sessions are
// created.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	s.logger = logger.With("component", "server")
	s.sessions.logger = logger.With("component", "session_manager")
}

// ServerMetrics is a point-in-time snapshot of server activity.
type ServerMetrics struct {
	Sessions ManagerStats
	Pages    int
}

// Metrics returns a snapshot of server activity.
func (s *Server) Metrics() ServerMetrics {
	return ServerMetrics{
		Sessions: s.sessions.Stats(),
		Pages:    s.Deck().Len(),
	}
}
