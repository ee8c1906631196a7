package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// SessionUser marks an authenticated session. It is written by the external
// login flow; the editor only checks for its presence.
type SessionUser struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

var ErrMalformedSession = errors.New("session: malformed current user")

// ParseSessionUser decodes the persisted "currentUser" JSON value.
// Empty input yields (nil, nil).
func ParseSessionUser(raw string) (*SessionUser, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var u SessionUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, errors.Join(ErrMalformedSession, err)
	}
	return &u, nil
}
