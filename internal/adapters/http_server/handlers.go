// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog/log"

	"hotel_editor/internal/domain"
)

// Handlers serves the editor pages.
type Handlers struct {
	API      domain.HotelAPI
	Cache    domain.Cache
	Sessions *scs.SessionManager
	Views    *Renderer

	// DraftTTL is how long the loaded hotel is kept for Reset.
	DraftTTL time.Duration
	// SubmitLockTTL bounds how long one submit blocks another for the same hotel.
	SubmitLockTTL time.Duration
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.DraftTTL <= 0 {
		h.DraftTTL = 2 * time.Hour
	}
	if h.SubmitLockTTL <= 0 {
		h.SubmitLockTTL = 30 * time.Second
	}
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.landing)
	s.mux.Get("/hotels/{id}/edit", h.editGet)
	s.mux.Post("/hotels/{id}/edit", h.editPost)
	s.mux.Get("/hotel/rooms/{id}", h.rooms)
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such page")
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) landing(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "landing", TemplateData{Title: "Hotel Manager"})
}
