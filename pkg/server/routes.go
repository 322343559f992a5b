package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/pagenav/pkg/nav"
)

// Reserved paths. Deck pages may not live under ReservedPrefix.
const (
	ReservedPrefix = "/_pagenav/"
	ClientJSPath   = ReservedPrefix + "client.js"
	WebSocketPath  = ReservedPrefix + "ws"
	GoPath         = ReservedPrefix + "go"
)

// Handler returns the server's HTTP handler. It serves the thin client, the
// WebSocket endpoint, the no-JS navigation endpoint, mounted handlers and
// the deck's pages.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get(ClientJSPath, s.serveThinClient)
	r.Head(ClientJSPath, s.serveThinClient)
	r.Get(WebSocketPath, s.HandleWebSocket)
	r.Get(GoPath, s.handleGo)

	s.mu.Lock()
	mounts := append([]mount(nil), s.mounts...)
	s.mu.Unlock()
	for _, m := range mounts {
		r.Handle(m.pattern, m.handler)
	}

	r.Get("/*", s.servePage)
	r.Head("/*", s.servePage)
	return r
}

// servePage renders the deck page at the request path.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	deck := s.Deck()
	page, ok := deck.Lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := RenderPage(w, page, deck.Title); err != nil {
		s.logger.Error("render failed", "path", page.Path, "error", err)
	}
}

// handleGo answers the fallback links rendered for clients without
// JavaScript: GET /_pagenav/go?from=/a&dir=left[&via=swipe]. It redirects to
// the chosen target, or answers 204 when the direction has none.
func (s *Server) handleGo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, ok := nav.ParseDirection(q.Get("dir"))
	if !ok {
		http.Error(w, "unknown direction", http.StatusBadRequest)
		return
	}
	page, ok := s.Deck().Lookup(q.Get("from"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	src := nav.SourceKey
	if q.Get("via") == nav.SourceSwipe.String() {
		src = nav.SourceSwipe
	}
	router := nav.NewRouter(page.Targets, nil,
		nav.WithReloadHint(s.config.SessionConfig.ReloadHint),
		nav.WithLogger(s.logger),
	)
	dec := router.Decide(dir, src)
	if !dec.Found() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, dec.URL, http.StatusFound)
}

// requestLogger logs one line per HTTP request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
