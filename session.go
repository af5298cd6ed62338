package authcode

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Fixed session keys owned by this package. The user key is configurable per
// strategy (Strategy.SessionUserKey); these are not.
const (
	// SessionKeyState holds the pending CSRF state between the redirect to
	// the provider and the callback. At most one pending state exists per
	// session; a second redirect overwrites the first.
	SessionKeyState = "authcode:state"

	// SessionKeyError holds the last verify failure as {"message": ...} when
	// a FailureRedirect is configured, for the next request to render.
	SessionKeyError = "authcode:error"

	// SessionKeyReturnTo holds the URL the Auth hub sends the user back to
	// after a successful login.
	SessionKeyReturnTo = "authcode:returnTo"

	// DefaultSessionUserKey is where the authenticated user lands unless the
	// strategy configures another key.
	DefaultSessionUserKey = "user"
)

// Session is the caller-owned per-browser-session store the strategy works
// against. The strategy treats it as a capability: opaque get/set/unset plus
// a commit that serializes any changes into a cookie. It never assumes a
// particular backend or in-memory persistence.
//
// Commit must be cheap to call when nothing changed; every redirect the
// strategy issues carries the committed cookie so session changes are never
// lost.
type Session interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Unset(key string)
	Commit() (*http.Cookie, error)
}

// SessionProvider resolves the Session for an incoming request.
type SessionProvider func(r *http.Request) Session

// CookieSession is a self-contained Session that keeps all values in memory
// and commits them JSON-encoded into a single cookie. Good enough for small
// sessions and for tests; use sessions/scs for server-side storage.
type CookieSession struct {
	Name   string
	Path   string
	MaxAge int

	values map[string]any
}

// NewCookieSession returns an empty session committing to the named cookie.
func NewCookieSession(name string) *CookieSession {
	return &CookieSession{Name: name, Path: "/", values: map[string]any{}}
}

// LoadCookieSession decodes the named cookie from the request, returning an
// empty session if the cookie is absent or unreadable.
func LoadCookieSession(name string, r *http.Request) *CookieSession {
	out := NewCookieSession(name)
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return out
	}
	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return out
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return out
	}
	out.values = values
	return out
}

func (s *CookieSession) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *CookieSession) Set(key string, value any) {
	s.values[key] = value
}

func (s *CookieSession) Unset(key string) {
	delete(s.values, key)
}

func (s *CookieSession) Commit() (*http.Cookie, error) {
	data, err := json.Marshal(s.values)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     s.Name,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     s.Path,
		MaxAge:   s.MaxAge,
		HttpOnly: true,
	}, nil
}
