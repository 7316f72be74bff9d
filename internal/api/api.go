package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/reminder"
	"github.com/kylemclaren/clockbar/internal/store"
	"github.com/kylemclaren/clockbar/internal/stream"
)

// History is the read side of the history store
type History interface {
	ListSessions(limit int) ([]*store.Session, error)
	ListReminders(limit int) ([]*store.Reminder, error)
}

// Server exposes the shared clock state over HTTP
type Server struct {
	state     *clock.State
	scheduler *reminder.Scheduler
	history   History
	streamMgr *stream.Manager
	router    chi.Router
	now       func() time.Time
}

// NewServer creates a new API server. scheduler and history may be nil when
// reminders or the history store are disabled.
func NewServer(state *clock.State, sched *reminder.Scheduler, history History, streamMgr *stream.Manager) *Server {
	if streamMgr == nil {
		streamMgr = stream.NewManager()
	}
	s := &Server{
		state:     state,
		scheduler: sched,
		history:   history,
		streamMgr: streamMgr,
		router:    chi.NewRouter(),
		now:       time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/api/v1/health", s.HealthCheck)

	// Status
	r.Get("/api/v1/status", s.GetStatus)
	r.Get("/api/v1/status/stream", s.StreamStatus)

	// History
	r.Get("/api/v1/sessions", s.ListSessions)
	r.Get("/api/v1/reminders", s.ListReminders)
}

// Router returns the chi router for use with http.Server
func (s *Server) Router() http.Handler {
	return s.router
}

// CORS allows status pages served from other origins to read the API
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
