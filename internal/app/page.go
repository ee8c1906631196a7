package app

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"hotel_editor/internal/domain"
)

// State is the page lifecycle position.
type State int

const (
	StateInitializing State = iota
	StateRedirecting
	StateLoading
	StateLoaded
	StateLoadError
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRedirecting:
		return "redirecting"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateLoadError:
		return "load_error"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

const (
	RootRoute        = "/"
	loadErrorMessage = "Error fetching hotel data."
)

// RoomsRoute is the room listing the page moves to after a successful update.
func RoomsRoute(id string) string { return "/hotel/rooms/" + url.PathEscape(id) }

// EditRoute is the page's own route.
func EditRoute(id string) string { return "/hotels/" + url.PathEscape(id) + "/edit" }

var (
	ErrNoSession      = errors.New("editor: no session")
	ErrNotEditable    = errors.New("editor: page is not editable")
	ErrSubmitInFlight = errors.New("editor: submission already in flight")
	ErrInvalidDraft   = errors.New("editor: draft has invalid fields")
	ErrNoBaseline     = errors.New("editor: no loaded hotel to reset to")
	ErrUnknownRoom    = errors.New("editor: unknown room")
	ErrReleased       = errors.New("editor: page released")
)

// LoadFailure wraps an error from the initial read.
type LoadFailure struct{ Err error }

func (e *LoadFailure) Error() string { return "load hotel: " + e.Err.Error() }
func (e *LoadFailure) Unwrap() error { return e.Err }

// SubmitFailure wraps an error from the update request.
type SubmitFailure struct{ Err error }

func (e *SubmitFailure) Error() string { return "update hotel: " + e.Err.Error() }
func (e *SubmitFailure) Unwrap() error { return e.Err }

type Deps struct {
	API    domain.HotelAPI
	Nav    domain.Navigator
	Notify domain.Notifier
	Log    zerolog.Logger
}

// Page is the hotel edit page: session guard, loader, draft editor and submitter.
// Every method is safe to call from the goroutine that releases the page.
type Page struct {
	id      string
	session *domain.SessionUser
	api     domain.HotelAPI
	nav     domain.Navigator
	notify  domain.Notifier
	log     zerolog.Logger

	mu          sync.Mutex
	state       State
	baseline    domain.HotelRecord
	hasBaseline bool
	draft       Draft
	fieldErrs   FieldErrors
	errMsg      string
	released    bool
}

// NewPage builds a page for hotel id. A nil session means nobody is signed in.
func NewPage(id string, session *domain.SessionUser, d Deps) *Page {
	return &Page{
		id:        id,
		session:   session,
		api:       d.API,
		nav:       d.Nav,
		notify:    d.Notify,
		log:       d.Log.With().Str("hotel_id", id).Logger(),
		state:     StateInitializing,
		fieldErrs: FieldErrors{},
	}
}

// guardLocked redirects to the root route when there is no session.
func (p *Page) guardLocked() bool {
	if p.session != nil {
		return true
	}
	p.state = StateRedirecting
	p.nav.Navigate(RootRoute)
	return false
}

// Mount runs the session guard and the single load attempt.
func (p *Page) Mount(ctx context.Context) error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	if p.state != StateInitializing {
		p.mu.Unlock()
		return ErrNotEditable
	}
	if !p.guardLocked() {
		p.mu.Unlock()
		return ErrNoSession
	}
	p.state = StateLoading
	p.mu.Unlock()

	rec, err := p.api.GetHotel(ctx, p.id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		p.log.Debug().Msg("discarding hotel load for released page")
		return ErrReleased
	}
	if err != nil {
		p.state = StateLoadError
		p.errMsg = loadErrorMessage
		p.log.Error().Err(err).Msg("error fetching hotel data")
		p.notify.Notify(domain.Notice{Kind: domain.NoticeError, Title: "Oops", Text: loadErrorMessage})
		return &LoadFailure{Err: err}
	}
	rec.ID = p.id
	p.baseline = rec.Clone()
	p.hasBaseline = true
	p.draft = DraftFromRecord(rec)
	p.state = StateLoaded
	return nil
}

// Resume rebuilds a loaded page from a posted draft. baseline may be nil when
// the stored copy has expired; only Reset needs it.
func (p *Page) Resume(baseline *domain.HotelRecord, d Draft) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	if p.state != StateInitializing {
		return ErrNotEditable
	}
	if !p.guardLocked() {
		return ErrNoSession
	}
	if baseline != nil {
		p.baseline = baseline.Clone()
		p.hasBaseline = true
	}
	p.draft = d.Clone()
	p.draft.ensureKeys()
	p.state = StateLoaded
	return nil
}

// editableLocked reports why the draft cannot change right now, if it cannot.
func (p *Page) editableLocked() error {
	switch {
	case p.released:
		return ErrReleased
	case p.state == StateSubmitting:
		return ErrSubmitInFlight
	case p.state != StateLoaded:
		return ErrNotEditable
	}
	return nil
}

// SetDraft replaces the field values with the user's edits.
func (p *Page) SetDraft(d Draft) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editableLocked(); err != nil {
		return err
	}
	p.draft = d.Clone()
	p.draft.ensureKeys()
	p.fieldErrs = FieldErrors{}
	return nil
}

// AddRoom appends a new empty room and returns its key.
func (p *Page) AddRoom() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editableLocked(); err != nil {
		return "", err
	}
	return p.draft.AddRoom(), nil
}

// RemoveRoom drops the room identified by key.
func (p *Page) RemoveRoom(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editableLocked(); err != nil {
		return err
	}
	if !p.draft.RemoveRoom(key) {
		return ErrUnknownRoom
	}
	p.fieldErrs = FieldErrors{}
	return nil
}

// Reset discards edits and restores the last loaded hotel.
func (p *Page) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editableLocked(); err != nil {
		return err
	}
	if !p.hasBaseline {
		return ErrNoBaseline
	}
	p.draft = DraftFromRecord(p.baseline)
	p.fieldErrs = FieldErrors{}
	p.errMsg = ""
	return nil
}

// Submit validates the draft and, when it is complete, sends one update.
func (p *Page) Submit(ctx context.Context) error {
	p.mu.Lock()
	if err := p.editableLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.draft.Normalize()
	if errs := ValidateDraft(p.draft); len(errs) > 0 {
		p.fieldErrs = errs
		p.mu.Unlock()
		return ErrInvalidDraft
	}
	rec, err := p.draft.Record(p.id)
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			p.fieldErrs = FieldErrors{fe.Field: formatMessage(fe.Field)}
		} else {
			p.fieldErrs = FieldErrors{"": err.Error()}
		}
		p.mu.Unlock()
		return ErrInvalidDraft
	}
	if p.hasBaseline {
		rec.RatingIsNumber = p.baseline.RatingIsNumber
	}
	p.fieldErrs = FieldErrors{}
	p.errMsg = ""
	p.state = StateSubmitting
	p.mu.Unlock()

	err = p.api.UpdateHotel(ctx, p.id, rec)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		p.log.Debug().Msg("discarding hotel update response for released page")
		return ErrReleased
	}
	p.state = StateLoaded
	if err != nil {
		p.errMsg = err.Error()
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			ev := p.log.Warn().Int("status", apiErr.Status)
			if len(apiErr.Detail) > 0 {
				ev = ev.RawJSON("detail", apiErr.Detail)
			} else if apiErr.Body != "" {
				ev = ev.Str("body", apiErr.Body)
			}
			ev.Msg("server error response")
		}
		p.log.Error().Err(err).Msg("hotel update failed")
		p.notify.Notify(domain.Notice{Kind: domain.NoticeError, Title: "Oops", Text: "Error: " + err.Error()})
		return &SubmitFailure{Err: err}
	}
	p.baseline = rec.Clone()
	p.hasBaseline = true
	p.nav.Navigate(RoomsRoute(p.id))
	p.notify.Notify(domain.Notice{Kind: domain.NoticeSuccess, Title: "Congratulations", Text: "Your Hotel Updated Successfully"})
	return nil
}

// Unmount releases the page; responses that arrive later are dropped.
func (p *Page) Unmount() {
	p.mu.Lock()
	p.released = true
	p.mu.Unlock()
}

// Released reports whether Unmount has been called.
func (p *Page) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// Baseline returns the last successfully loaded or saved hotel.
func (p *Page) Baseline() (domain.HotelRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasBaseline {
		return domain.HotelRecord{}, false
	}
	return p.baseline.Clone(), true
}

// View is a render snapshot of the page.
type View struct {
	ID          string
	State       State
	Draft       Draft
	FieldErrors FieldErrors
	Error       string
}

func (v View) ShowForm() bool { return v.State == StateLoaded || v.State == StateSubmitting }

func (v View) FieldError(name string) string { return v.FieldErrors[name] }

func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	errs := make(FieldErrors, len(p.fieldErrs))
	for k, v := range p.fieldErrs {
		errs[k] = v
	}
	return View{
		ID:          p.id,
		State:       p.state,
		Draft:       p.draft.Clone(),
		FieldErrors: errs,
		Error:       p.errMsg,
	}
}
