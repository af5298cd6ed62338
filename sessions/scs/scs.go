// Package scs adapts an alexedwards/scs session manager to the authcode
// Session capability. The session data stays server-side; Commit produces
// the scs token cookie.
//
// Requests must pass through the manager's LoadAndSave middleware (or an
// explicit manager.Load) before the adapter touches them, since scs keeps
// session data on the request context.
package scs

import (
	"context"
	"encoding/gob"
	"net/http"

	scslib "github.com/alexedwards/scs/v2"

	"github.com/panyam/authcode"
)

func init() {
	// The strategy stores flattened users and error entries as maps.
	gob.Register(map[string]any{})
}

// Session is one request's view of an scs-managed session.
type Session struct {
	manager *scslib.SessionManager
	ctx     context.Context
}

// Provider wires a session manager up as an authcode SessionProvider.
func Provider(manager *scslib.SessionManager) authcode.SessionProvider {
	return func(r *http.Request) authcode.Session {
		return &Session{manager: manager, ctx: r.Context()}
	}
}

func (s *Session) Get(key string) (any, bool) {
	if !s.manager.Exists(s.ctx, key) {
		return nil, false
	}
	return s.manager.Get(s.ctx, key), true
}

func (s *Session) Set(key string, value any) {
	s.manager.Put(s.ctx, key, value)
}

func (s *Session) Unset(key string) {
	s.manager.Remove(s.ctx, key)
}

// Commit saves the session through the manager's store and returns the token
// cookie the response must carry.
func (s *Session) Commit() (*http.Cookie, error) {
	token, expiry, err := s.manager.Commit(s.ctx)
	if err != nil {
		return nil, err
	}
	cookie := &http.Cookie{
		Name:     s.manager.Cookie.Name,
		Value:    token,
		Path:     s.manager.Cookie.Path,
		Domain:   s.manager.Cookie.Domain,
		Secure:   s.manager.Cookie.Secure,
		HttpOnly: s.manager.Cookie.HttpOnly,
		SameSite: s.manager.Cookie.SameSite,
	}
	if s.manager.Cookie.Persist {
		cookie.Expires = expiry
	}
	return cookie, nil
}
