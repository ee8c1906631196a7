package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "hotel_editor/internal/adapters/redis"
	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/domain"
)

type fakeAPI struct {
	mu     sync.Mutex
	hotel  domain.HotelRecord
	getErr error
	putErr error
	gets   int
	puts   int
	put    domain.HotelRecord
}

func (f *fakeAPI) GetHotel(_ context.Context, id string) (domain.HotelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return domain.HotelRecord{}, f.getErr
	}
	return f.hotel.Clone(), nil
}

func (f *fakeAPI) UpdateHotel(_ context.Context, id string, h domain.HotelRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.put = h.Clone()
	return f.putErr
}

func seaView() domain.HotelRecord {
	return domain.HotelRecord{
		ID: "42", Name: "Sea View", Address: "1 Bay Rd", Phone: "555", Email: "a@b.com",
		Rating: "4", Image: "http://x/i.png",
		Rooms: []domain.RoomRecord{{Name: "Deluxe", MaxCount: 2, RentPerDay: 100, Description: "d", Image: "http://x/r.png"}},
	}
}

// seaViewForm is the edit form as the browser posts it for seaView.
func seaViewForm(action string) url.Values {
	return url.Values{
		"action":               {action},
		"name":                 {"Sea View"},
		"address":              {"1 Bay Rd"},
		"phone":                {"555"},
		"email":                {"a@b.com"},
		"rating":               {"4"},
		"image":                {"http://x/i.png"},
		"website":              {""},
		"rooms[0].key":         {"k0"},
		"rooms[0].name":        {"Deluxe"},
		"rooms[0].maxcount":    {"2"},
		"rooms[0].rentperday":  {"100"},
		"rooms[0].description": {"d"},
		"rooms[0].image":       {"http://x/r.png"},
	}
}

type harness struct {
	t   *testing.T
	api *fakeAPI
	mr  *miniredis.Miniredis
	sm  *scs.SessionManager
	h   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	sm := session.New(nil, time.Hour, true)
	views, err := NewRenderer(sm)
	require.NoError(t, err)

	api := &fakeAPI{hotel: seaView()}
	srv := New(Options{Log: zerolog.Nop(), Sessions: sm, Timeout: 5 * time.Second, CSRFKey: make([]byte, 32)})
	srv.MountHandlers(&Handlers{
		API:      api,
		Cache:    redisad.NewWithClient(rc),
		Sessions: sm,
		Views:    views,
	})
	return &harness{t: t, api: api, mr: mr, sm: sm, h: srv.Mux()}
}

// signIn stores a current user the way the login service does and returns
// the session cookie.
func (h *harness) signIn() *http.Cookie {
	h.t.Helper()
	ctx, err := h.sm.Load(context.Background(), "")
	require.NoError(h.t, err)
	h.sm.Put(ctx, session.KeyCurrentUser, `{"_id":"u1","name":"Ann","email":"ann@example.com","isAdmin":false}`)
	token, _, err := h.sm.Commit(ctx)
	require.NoError(h.t, err)
	return &http.Cookie{Name: h.sm.Cookie.Name, Value: token}
}

func (h *harness) do(method, path string, form url.Values, c *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c != nil {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	return rec
}

func TestEditGet_NoSessionRedirectsBeforeLoad(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/hotels/42/edit", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Zero(t, h.api.gets)
}

func TestEditGet_MalformedSessionRedirects(t *testing.T) {
	h := newHarness(t)
	ctx, err := h.sm.Load(context.Background(), "")
	require.NoError(t, err)
	h.sm.Put(ctx, session.KeyCurrentUser, "{oops")
	token, _, err := h.sm.Commit(ctx)
	require.NoError(t, err)

	rec := h.do(http.MethodGet, "/hotels/42/edit", nil, &http.Cookie{Name: h.sm.Cookie.Name, Value: token})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Zero(t, h.api.gets)
}

func TestEditGet_RendersLoadedHotel(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()

	rec := h.do(http.MethodGet, "/hotels/42/edit", nil, c)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="name" value="Sea View"`)
	assert.Contains(t, body, `name="rooms[0].name" value="Deluxe"`)
	assert.Contains(t, body, `name="rooms[0].maxcount" value="2"`)
	assert.Contains(t, body, `name="rooms[0].rentperday" value="100"`)
	assert.Contains(t, body, `name="rooms[0].description" value="d"`)
	assert.Equal(t, 1, h.api.gets)
	assert.True(t, h.mr.Exists("draft:"+c.Value+":42"), "baseline kept for reset")
}

func TestEditGet_LoadErrorHidesForm(t *testing.T) {
	h := newHarness(t)
	h.api.getErr = domain.NewAPIError(http.StatusInternalServerError, nil)
	c := h.signIn()

	rec := h.do(http.MethodGet, "/hotels/42/edit", nil, c)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error fetching hotel data.")
	assert.Contains(t, body, "Oops")
	assert.NotContains(t, body, "<form")
	assert.Equal(t, 1, h.api.gets, "no retry")
}

func TestEditGet_NotFound(t *testing.T) {
	h := newHarness(t)
	h.api.getErr = domain.NewAPIError(http.StatusNotFound, []byte(`{"message":"no hotel"}`))
	rec := h.do(http.MethodGet, "/hotels/9/edit", nil, h.signIn())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<form")
}

func TestEditPost_SubmitSendsOnePutAndRedirects(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()

	rec := h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("submit"), c)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hotel/rooms/42", rec.Header().Get("Location"))
	assert.Equal(t, 1, h.api.puts)

	want := seaView()
	assert.Equal(t, want, h.api.put)
	assert.False(t, h.mr.Exists("submit:"+c.Value+":42"), "lock released")
	assert.True(t, h.mr.Exists("draft:"+c.Value+":42"), "baseline follows the saved hotel")

	rooms := h.do(http.MethodGet, "/hotel/rooms/42", nil, c)
	require.Equal(t, http.StatusOK, rooms.Code)
	assert.Contains(t, rooms.Body.String(), "Congratulations")
	assert.Contains(t, rooms.Body.String(), "Your Hotel Updated Successfully")

	again := h.do(http.MethodGet, "/hotel/rooms/42", nil, c)
	assert.NotContains(t, again.Body.String(), "Congratulations", "popup shows once")
}

func TestEditPost_MissingFieldSendsNothing(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()
	form := seaViewForm("submit")
	form.Set("name", "   ")
	form.Set("rooms[0].maxcount", "")

	rec := h.do(http.MethodPost, "/hotels/42/edit", form, c)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please enter the hotel name")
	assert.Contains(t, body, "Please enter the max count")
	assert.Zero(t, h.api.puts)
}

func TestEditPost_SubmitFailureKeepsEdits(t *testing.T) {
	h := newHarness(t)
	h.api.putErr = domain.NewAPIError(http.StatusInternalServerError, []byte(`{"message":"db down"}`))
	c := h.signIn()
	form := seaViewForm("submit")
	form.Set("name", "Sea View II")

	rec := h.do(http.MethodPost, "/hotels/42/edit", form, c)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, body, "request failed with status code 500")
	assert.Contains(t, body, "Error: request failed with status code 500")
	assert.Contains(t, body, `value="Sea View II"`)
	assert.Equal(t, 1, h.api.puts)
}

func TestEditPost_SubmitLockedSendsNothing(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()
	require.NoError(t, h.mr.Set("submit:"+c.Value+":42", "1"))

	rec := h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("submit"), c)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already being saved")
	assert.Zero(t, h.api.puts)
}

func TestEditPost_AddAndRemoveRooms(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()

	rec := h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("add-room"), c)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="rooms[1].name" value=""`)
	assert.Contains(t, body, `name="rooms[0].name" value="Deluxe"`)

	rec = h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("remove-room:k0"), c)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, "Deluxe")
	assert.NotContains(t, body, `name="rooms[0].name"`)

	// a stale key leaves the posted rooms alone
	rec = h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("remove-room:gone"), c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deluxe")
	assert.Zero(t, h.api.puts)
}

func TestEditPost_ResetRestoresLoadedHotel(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/hotels/42/edit", nil, c).Code)

	form := seaViewForm("reset")
	form.Set("name", "Changed")
	form.Set("rooms[0].name", "Changed Room")
	rec := h.do(http.MethodPost, "/hotels/42/edit", form, c)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="name" value="Sea View"`)
	assert.Contains(t, body, `name="rooms[0].name" value="Deluxe"`)
	assert.NotContains(t, body, "Changed")
}

func TestEditPost_ResetWithoutBaselineReloads(t *testing.T) {
	h := newHarness(t)
	c := h.signIn()

	rec := h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("reset"), c)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/hotels/42/edit", rec.Header().Get("Location"))
}

func TestEditPost_NoSessionRedirects(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/hotels/42/edit", seaViewForm("submit"), nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Zero(t, h.api.puts)
}

func TestRooms_RequiresSession(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/hotel/rooms/42", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Zero(t, h.api.gets)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
