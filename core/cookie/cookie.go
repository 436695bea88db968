package cookie

import (
	"errors"
	"net/http"
)

// DefaultName is the session cookie name when none is configured.
const DefaultName = "sid"

// Manager writes and reads the session token cookie. The token itself is
// already HMAC-signed, so the cookie layer only carries it.
type Manager struct {
	defaults Options
}

// New creates a cookie manager with secure defaults: HttpOnly, SameSite=Lax,
// path "/". A zero MaxAge makes the cookie last for the browser session.
func New(opts ...Option) *Manager {
	defaults := Options{
		Name:     DefaultName,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{defaults: applyOptions(defaults, opts)}
}

// Name returns the configured cookie name.
func (m *Manager) Name() string {
	return m.defaults.Name
}

// Set queues the session token cookie on the response.
func (m *Manager) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.build(token, m.defaults.MaxAge))
}

// Read extracts the session token from the request. Returns ErrNotFound
// when the cookie is absent or empty.
func (m *Manager) Read(r *http.Request) (string, error) {
	c, err := r.Cookie(m.defaults.Name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	if c.Value == "" {
		return "", ErrNotFound
	}
	return c.Value, nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.build("", -1))
}

func (m *Manager) build(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.defaults.Name,
		Value:    value,
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   maxAge,
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	}
}
