package httpserver

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotel_editor/internal/adapters/session"
)

type Server struct{ mux *chi.Mux }

type Options struct {
	Log      zerolog.Logger
	Sessions *scs.SessionManager
	Timeout  time.Duration
	// CSRFKey and TrustedOrigins configure cross-origin protection for form posts.
	CSRFKey        []byte
	TrustedOrigins []string
}

func New(o Options) *Server {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	m := chi.NewRouter()

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(o.Timeout))
	m.Use(Metrics)
	m.Use(Logger(o.Log))
	m.Use(CSRF(o.CSRFKey, o.TrustedOrigins))
	if o.Sessions != nil {
		m.Use(o.Sessions.LoadAndSave)
		m.Use(session.LoadUser(o.Sessions))
	}

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
