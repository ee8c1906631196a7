package session

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"hotel_editor/internal/domain"
)

type ctxKey struct{}

// LoadUser parses the persisted current user into the request context.
// A malformed value is treated as no session. It never redirects: pages
// decide what to do without a user.
func LoadUser(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sm.GetString(r.Context(), KeyCurrentUser)
			u, err := domain.ParseSessionUser(raw)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("ignoring unreadable current user")
				u = nil
			}
			if u == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func WithUser(ctx context.Context, u *domain.SessionUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFrom returns the session user, or nil when nobody is signed in.
func UserFrom(ctx context.Context) *domain.SessionUser {
	u, _ := ctx.Value(ctxKey{}).(*domain.SessionUser)
	return u
}
