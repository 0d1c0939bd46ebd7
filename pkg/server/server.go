package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomui/loom/pkg/render"
	"github.com/loomui/loom/pkg/vtree"
)

// DebugMode enables verbose server logging. Off by default.
var DebugMode bool

func debugf(format string, args ...any) {
	if DebugMode {
		log.Printf("[loom/server] "+format, args...)
	}
}

// PageFunc constructs the top component and its props for one request.
// It is called once per SSR request and once per live session, so each
// caller gets a fresh component instance.
type PageFunc func(r *http.Request) (vtree.Component, any)

// PageDef describes one routed page.
type PageDef struct {
	// Title is the document title.
	Title string

	// Lang is the document language (default "en").
	Lang string

	// Head holds extra nodes rendered inside <head>.
	Head []*vtree.Node

	// Scripts are script URLs appended at the end of <body>.
	Scripts []string

	// New builds the page's top component.
	New PageFunc
}

// Server routes SSR pages and live websocket sessions.
type Server struct {
	config   Config
	router   chi.Router
	metrics  *Metrics
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	pages    map[string]PageDef
	sessions map[string]*Session

	httpServer *http.Server
}

// New creates a server. Pages are added with Page before serving.
func New(config Config) *Server {
	config.setDefaults()
	s := &Server{
		config:   config,
		metrics:  NewMetrics(config.Registry),
		tracer:   otel.Tracer("loom/server"),
		pages:    map[string]PageDef{},
		sessions: map[string]*Session{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/loom/live", s.handleLive)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	s.router = r
	return s
}

// Page registers a page at the given route pattern. The same
// definition serves both the SSR response and live sessions connecting
// for that page.
func (s *Server) Page(pattern string, def PageDef) {
	s.mu.Lock()
	s.pages[pattern] = def
	s.mu.Unlock()

	s.router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, def)
	})
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.config.WriteTimeout,
	}
	debugf("listening on %s", s.config.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP listener and closes every live session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()
	for _, sess := range open {
		sess.Close()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, def PageDef) {
	comp, props := def.New(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sr := render.NewStreamingRenderer(w, render.Config{Hydratable: true})
	err := sr.RenderPage(r.Context(), render.Page{
		Lang:    def.Lang,
		Title:   def.Title,
		Head:    def.Head,
		Body:    vtree.Comp(comp, props),
		Scripts: def.Scripts,
	})
	if err != nil {
		// Headers are already out; all we can do is log and drop.
		log.Printf("[loom/server] render %s: %v", r.URL.Path, err)
	}
}

// handleLive upgrades the connection and runs a session for the page
// named by the "page" query parameter.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("page")

	s.mu.RLock()
	def, ok := s.pages[pattern]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.WSErrors.WithLabelValues("upgrade").Inc()
		return
	}

	comp, props := def.New(r)
	sess := newSession(s, conn)
	s.addSession(sess)
	defer s.removeSession(sess)

	sess.run(comp, props)
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.metrics.ActiveSessions.Inc()
	debugf("session %s opened", sess.ID)
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	s.metrics.ActiveSessions.Dec()
	debugf("session %s closed", sess.ID)
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
