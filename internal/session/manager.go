package session

import (
	"net/http"

	"github.com/google/uuid"
)

// DefaultCookieName is the session cookie used by both front ends. The two
// binaries bind different ports, so their cookies live in separate browser
// namespaces even with the same name.
const DefaultCookieName = "ros_session"

// Manager binds sessions to browsers through an opaque cookie and hands
// them out exclusively locked for the duration of a request.
type Manager struct {
	store      Store
	cookieName string
	secure     bool
}

// NewManager creates a Manager over the given store. secure marks the
// session cookie Secure for TLS deployments.
func NewManager(store Store, cookieName string, secure bool) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{store: store, cookieName: cookieName, secure: secure}
}

// Acquire returns the request's session, creating one (and setting the
// cookie) when none exists, locked for exclusive use. The caller must call
// release when done with the session; two concurrent requests for the same
// session serialize here.
func (m *Manager) Acquire(w http.ResponseWriter, r *http.Request) (*Session, func()) {
	s := m.lookup(r)
	if s == nil {
		s = newSession(uuid.NewString())
		m.store.Put(s)
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	s.mu.Lock()
	return s, s.mu.Unlock
}

// lookup finds the live session referenced by the request cookie, if any.
// Unknown or stale session ids are treated as no session: a fresh one is
// issued rather than trusting the client value.
func (m *Manager) lookup(r *http.Request) *Session {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil
	}
	s, ok := m.store.Get(c.Value)
	if !ok {
		return nil
	}
	return s
}
