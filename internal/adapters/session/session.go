package session

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Session keys. KeyCurrentUser is written by the login service.
const (
	KeyCurrentUser = "currentUser"
	keyFlash       = "flash"
	keyFlashTitle  = "flash_title"
	keyFlashType   = "flash_type"
)

// New creates the session manager. A nil store keeps sessions in memory.
func New(store scs.Store, lifetime time.Duration, isDev bool) *scs.SessionManager {
	sm := scs.New()
	if store != nil {
		sm.Store = store
	} else {
		sm.Store = memstore.New()
	}

	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	sm.Cookie.Path = "/"
	return sm
}
