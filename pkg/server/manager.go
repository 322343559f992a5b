package server

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/pagenav/pkg/protocol"
)

// SessionManager manages all active sessions.
// It handles session creation, lookup, limits and lifecycle callbacks.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	config      *SessionConfig
	maxSessions int

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	// Callbacks
	onSessionCreate func(*Session)
	onSessionClose  func(*Session)

	logger *slog.Logger
}

// NewSessionManager creates a SessionManager. maxSessions <= 0 means no
// limit.
func NewSessionManager(config *SessionConfig, maxSessions int, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		config:      config.withDefaults(),
		maxSessions: maxSessions,
		logger:      logger.With("component", "session_manager"),
	}
}

// Create creates and registers a session for page on conn. The session's
// loops are not started.
func (sm *SessionManager) Create(conn *websocket.Conn, page *Page, mws []EventMiddleware) (*Session, error) {
	sm.mu.Lock()
	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}

	session := newSession(conn, page, sm.config, sm.logger, mws)
	session.onClose = sm.remove
	sm.sessions[session.ID] = session
	if n := len(sm.sessions); n > sm.peakSessions {
		sm.peakSessions = n
	}
	onCreate := sm.onSessionCreate
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	if onCreate != nil {
		onCreate(session)
	}

	sm.logger.Info("session created",
		"session_id", session.ID,
		"path", page.Path,
		"active_sessions", sm.Count())
	return session, nil
}

// remove unregisters a closed session.
func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	_, ok := sm.sessions[s.ID]
	delete(sm.sessions, s.ID)
	onClose := sm.onSessionClose
	sm.mu.Unlock()

	if !ok {
		return
	}
	sm.totalClosed.Add(1)
	if onClose != nil {
		onClose(s)
	}
}

// Get returns the session with id, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// List returns the active sessions ordered by creation time.
func (sm *SessionManager) List() []*Session {
	sm.mu.RLock()
	out := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, s)
	}
	sm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// SetOnSessionCreate sets a callback run after a session is created.
func (sm *SessionManager) SetOnSessionCreate(fn func(*Session)) {
	sm.mu.Lock()
	sm.onSessionCreate = fn
	sm.mu.Unlock()
}

// SetOnSessionClose sets a callback run after a session closes.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.mu.Lock()
	sm.onSessionClose = fn
	sm.mu.Unlock()
}

// Shutdown closes every session, telling clients the server is going away.
func (sm *SessionManager) Shutdown() {
	sessions := sm.List()
	for _, s := range sessions {
		s.SendClose(protocol.CloseServerShutdown, "server shutting down")
	}
	sm.logger.Info("session manager shutdown", "closed_sessions", len(sessions))
}

// ManagerStats contains session manager statistics.
type ManagerStats struct {
	Active       int
	TotalCreated uint64
	TotalClosed  uint64
	Peak         int
}

// Stats returns session manager statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
		Peak:         sm.peakSessions,
	}
}
