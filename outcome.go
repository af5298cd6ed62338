package authcode

import (
	"encoding/json"
	"net/http"
)

// OutcomeKind tags the terminal result of one authentication attempt.
type OutcomeKind int

const (
	// OutcomeUser means the flow resolved a user in-process; no response has
	// been decided and the caller owns what happens next.
	OutcomeUser OutcomeKind = iota

	// OutcomeRedirect means the flow wants the browser sent elsewhere. The
	// cookie, when set, carries the committed session and must accompany the
	// redirect.
	OutcomeRedirect

	// OutcomeError means the flow failed terminally with an HTTP status and
	// a message.
	OutcomeError
)

// Outcome is the explicit terminal value Authenticate returns instead of
// signaling control flow through panics or written responses. Exactly one of
// User, Location/Cookie, or Err is meaningful, per Kind.
type Outcome struct {
	Kind     OutcomeKind
	User     User
	Location string
	Cookie   *http.Cookie
	Err      *Error
}

func UserOutcome(user User) *Outcome {
	return &Outcome{Kind: OutcomeUser, User: user}
}

func RedirectOutcome(location string, cookie *http.Cookie) *Outcome {
	return &Outcome{Kind: OutcomeRedirect, Location: location, Cookie: cookie}
}

func ErrorOutcome(err *Error) *Outcome {
	return &Outcome{Kind: OutcomeError, Err: err}
}

// Write dispatches redirect and error outcomes onto a plain net/http
// response: Set-Cookie plus Location for redirects, a JSON {"message": ...}
// body for errors. It returns false for a user outcome, which is the
// caller's to handle.
func (o *Outcome) Write(w http.ResponseWriter, r *http.Request) bool {
	switch o.Kind {
	case OutcomeRedirect:
		if o.Cookie != nil {
			http.SetCookie(w, o.Cookie)
		}
		http.Redirect(w, r, o.Location, http.StatusFound)
		return true
	case OutcomeError:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(o.Err.Code)
		json.NewEncoder(w).Encode(o.Err)
		return true
	}
	return false
}
