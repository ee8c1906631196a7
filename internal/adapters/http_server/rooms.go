package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/app"
	"hotel_editor/internal/domain"
)

// rooms lists a hotel's rooms; it is where a successful update lands.
func (h *Handlers) rooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if session.UserFrom(ctx) == nil {
		http.Redirect(w, r, app.RootRoute, http.StatusSeeOther)
		return
	}

	rec, err := h.API.GetHotel(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("hotel_id", id).Msg("error fetching hotel rooms")
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.Views.Render(w, r, status, "error", TemplateData{Title: "Rooms", Data: "Error fetching hotel data."})
		return
	}
	rec.ID = id
	h.Views.Render(w, r, http.StatusOK, "rooms", TemplateData{Title: rec.Name + " Rooms", Data: rec})
}
