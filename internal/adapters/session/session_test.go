package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/domain"
)

func TestNew_CookieSettings(t *testing.T) {
	sm := session.New(nil, 0, true)
	assert.Equal(t, 24*time.Hour, sm.Lifetime)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.False(t, sm.Cookie.Secure, "dev mode keeps cookies usable over http")
	assert.NotNil(t, sm.Store)

	prod := session.New(nil, time.Hour, false)
	assert.True(t, prod.Cookie.Secure)
	assert.Equal(t, time.Hour, prod.Lifetime)
}

// serveWithUser runs LoadUser under a session whose currentUser is raw.
func serveWithUser(t *testing.T, raw string) *domain.SessionUser {
	t.Helper()
	sm := session.New(nil, time.Hour, true)

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)
	if raw != "" {
		sm.Put(ctx, session.KeyCurrentUser, raw)
	}

	var got *domain.SessionUser
	h := session.LoadUser(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.UserFrom(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestLoadUser(t *testing.T) {
	u := serveWithUser(t, `{"_id":"u1","name":"Ann","email":"ann@example.com","isAdmin":true}`)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, u.IsAdmin)

	assert.Nil(t, serveWithUser(t, ""), "absent user")
	assert.Nil(t, serveWithUser(t, "{not json"), "malformed user counts as absent")
	assert.Nil(t, serveWithUser(t, "null"))
}

func TestFlash_PopOnce(t *testing.T) {
	sm := session.New(nil, time.Hour, true)
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	_, ok := session.PopFlash(ctx, sm)
	assert.False(t, ok)

	session.PutFlash(ctx, sm, domain.Notice{Kind: domain.NoticeSuccess, Title: "Congratulations", Text: "Your Hotel Updated Successfully"})
	n, ok := session.PopFlash(ctx, sm)
	require.True(t, ok)
	assert.Equal(t, domain.NoticeSuccess, n.Kind)
	assert.Equal(t, "Congratulations", n.Title)
	assert.Equal(t, "Your Hotel Updated Successfully", n.Text)

	_, ok = session.PopFlash(ctx, sm)
	assert.False(t, ok, "flash is consumed by the first pop")
}
