package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const CookieName = "doc_session"

// Manager binds sessions to requests through a cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Load returns the request's session, starting a new one when the cookie is
// missing, malformed or points at an expired session. The cookie is (re)set on
// every call so the session slides forward while in use.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err == nil && validID(cookie.Value) {
		data, err := m.store.Load(r.Context(), cookie.Value)
		if err == nil {
			m.setCookie(w, cookie.Value)
			return newSession(cookie.Value, data, m.store, m.ttl), nil
		}
		if !errors.Is(err, ErrNotFound) {
			slog.Error("failed to load session", "error", err)
		}
	}

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	m.setCookie(w, id)
	s := newSession(id, nil, m.store, m.ttl)
	s.isNew = true
	return s, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
