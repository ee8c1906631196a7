package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hotel_editor/internal/adapters/observability"
	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/app"
	"hotel_editor/internal/domain"
)

const editTitle = "Update Hotel"

var submitLockedNotice = domain.Notice{
	Kind:  domain.NoticeError,
	Title: "Oops",
	Text:  "An update for this hotel is already being saved.",
}

// pageResponse collects what the page asked for while handling one request:
// a navigation target, and notices which go into the session flash.
type pageResponse struct {
	ctx    context.Context
	sm     *scs.SessionManager
	target string
}

func (p *pageResponse) Navigate(route string) { p.target = route }

func (p *pageResponse) Notify(n domain.Notice) { session.PutFlash(p.ctx, p.sm, n) }

func (h *Handlers) newPage(r *http.Request, id string) (*app.Page, *pageResponse) {
	resp := &pageResponse{ctx: r.Context(), sm: h.Sessions}
	page := app.NewPage(id, session.UserFrom(r.Context()), app.Deps{
		API:    h.API,
		Nav:    resp,
		Notify: resp,
		Log:    *zerolog.Ctx(r.Context()),
	})
	return page, resp
}

func (h *Handlers) editGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	page, resp := h.newPage(r, id)
	stop := context.AfterFunc(ctx, page.Unmount)
	defer stop()

	status := http.StatusOK
	err := page.Mount(ctx)
	var lf *app.LoadFailure
	switch {
	case errors.Is(err, app.ErrReleased):
		observability.ObserveEditor("released")
		return
	case errors.Is(err, app.ErrNoSession):
		observability.ObserveEditor("redirect")
	case errors.As(err, &lf):
		observability.ObserveEditor("load_error")
		status = http.StatusBadGateway
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("mount edit page")
		status = http.StatusInternalServerError
	default:
		observability.ObserveEditor("load_ok")
		h.saveBaseline(ctx, id, page)
	}
	h.respond(w, r, page, resp, status)
}

func (h *Handlers) editPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	lg := zerolog.Ctx(ctx)

	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "unreadable form")
		return
	}
	action := parseAction(r.PostForm.Get("action"))
	draft, err := decodeDraft(r.PostForm)
	if err != nil {
		lg.Warn().Err(err).Msg("decode edit form")
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid form fields")
		return
	}

	page, resp := h.newPage(r, id)
	stop := context.AfterFunc(ctx, page.Unmount)
	defer stop()

	if err := page.Resume(h.loadBaseline(ctx, id), draft); err != nil {
		if errors.Is(err, app.ErrNoSession) {
			observability.ObserveEditor("redirect")
		}
		h.respond(w, r, page, resp, http.StatusOK)
		return
	}

	status := http.StatusOK
	switch action.Kind {
	case "add-room":
		if _, err = page.AddRoom(); err == nil {
			observability.ObserveEditor("room_added")
		}
	case "remove-room":
		err = page.RemoveRoom(action.Key)
		switch {
		case err == nil:
			observability.ObserveEditor("room_removed")
		case errors.Is(err, app.ErrUnknownRoom):
			// stale form, re-render what was posted
			lg.Debug().Str("room_key", action.Key).Msg("remove of unknown room ignored")
			err = nil
		}
	case "reset":
		err = page.Reset()
		switch {
		case err == nil:
			observability.ObserveEditor("reset")
		case errors.Is(err, app.ErrNoBaseline):
			// stored copy expired; reload from the API
			resp.Navigate(app.EditRoute(id))
			err = nil
		}
	default:
		status, err = h.submit(ctx, id, page, resp)
	}
	if errors.Is(err, app.ErrReleased) {
		return
	}
	if err != nil {
		lg.Error().Err(err).Str("action", action.Kind).Msg("edit page event failed")
		status = http.StatusInternalServerError
	}
	h.respond(w, r, page, resp, status)
}

// submit runs page.Submit while holding the per-session submit lock. Handled
// outcomes come back as a status with a nil error.
func (h *Handlers) submit(ctx context.Context, id string, page *app.Page, resp *pageResponse) (int, error) {
	lg := zerolog.Ctx(ctx)
	key := h.key(ctx, "submit", id)
	locked, err := h.Cache.SetNX(ctx, key, "1", h.SubmitLockTTL)
	switch {
	case err != nil:
		lg.Warn().Err(err).Msg("submit lock unavailable, continuing without it")
	case !locked:
		observability.ObserveEditor("submit_locked")
		resp.Notify(submitLockedNotice)
		return http.StatusConflict, nil
	default:
		defer func() {
			if err := h.Cache.Del(context.WithoutCancel(ctx), key); err != nil {
				lg.Warn().Err(err).Msg("release submit lock")
			}
		}()
	}

	err = page.Submit(ctx)
	var sf *app.SubmitFailure
	switch {
	case err == nil:
		observability.ObserveEditor("submit_ok")
		h.saveBaseline(ctx, id, page)
		return http.StatusOK, nil
	case errors.Is(err, app.ErrInvalidDraft):
		observability.ObserveEditor("invalid")
		return http.StatusUnprocessableEntity, nil
	case errors.As(err, &sf):
		observability.ObserveEditor("submit_error")
		return http.StatusBadGateway, nil
	}
	return http.StatusInternalServerError, err
}

// respond redirects when the page navigated and renders it otherwise. A
// released page gets no response body.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, page *app.Page, resp *pageResponse, status int) {
	if page.Released() {
		return
	}
	if resp.target != "" {
		http.Redirect(w, r, resp.target, http.StatusSeeOther)
		return
	}
	h.Views.Render(w, r, status, "edit", TemplateData{Title: editTitle, Data: page.View()})
}

func (h *Handlers) key(ctx context.Context, kind, id string) string {
	return kind + ":" + h.Sessions.Token(ctx) + ":" + id
}

func (h *Handlers) saveBaseline(ctx context.Context, id string, page *app.Page) {
	rec, ok := page.Baseline()
	if !ok {
		return
	}
	if err := h.Cache.Set(ctx, h.key(ctx, "draft", id), rec, h.DraftTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store hotel baseline")
	}
}

// loadBaseline returns the hotel stored at the last load or save, or nil when
// it has expired or cannot be read.
func (h *Handlers) loadBaseline(ctx context.Context, id string) *domain.HotelRecord {
	var rec domain.HotelRecord
	ok, err := h.Cache.Get(ctx, h.key(ctx, "draft", id), &rec)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("read hotel baseline")
		return nil
	}
	if !ok {
		return nil
	}
	return &rec
}
