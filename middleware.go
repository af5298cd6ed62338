package authcode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

type userParamNameKey string

// Middleware resolves the logged-in user for downstream handlers. It checks
// the session first, then the Authorization header and auth cookie through
// the pluggable VerifyToken.
type Middleware struct {
	AuthTokenHeaderName string
	AuthTokenCookieName string
	UserParamName       string
	CallbackURLParam    string
	SessionGetter       func(r *http.Request, param string) any
	GetRedirURL         func(r *http.Request) string
	VerifyToken         func(tokenString string) (loggedInUserId string, token any, err error)
}

// EnsureReasonableDefaults fills in defaults for unset config values.
func (a *Middleware) EnsureReasonableDefaults() {
	if a.UserParamName == "" {
		a.UserParamName = "loggedInUserId"
	}
	if a.CallbackURLParam == "" {
		a.CallbackURLParam = "callbackURL"
	}
	if a.AuthTokenHeaderName == "" {
		a.AuthTokenHeaderName = "Authorization"
	}
}

// GetLoggedInUserId returns the ID of the logged in user for the current
// request: request context first, then session, then verified auth tokens.
func (a *Middleware) GetLoggedInUserId(r *http.Request) string {
	v := r.Context().Value(userParamNameKey(a.UserParamName))
	if v != nil {
		if loggedInUserId, ok := v.(string); ok && loggedInUserId != "" {
			return loggedInUserId
		}
	}

	if userId := a.sessionUserId(r); userId != "" {
		return userId
	}

	if a.VerifyToken == nil {
		slog.Warn("no auth token verifier configured")
		return ""
	}

	// Otherwise check the Auth header, then the auth cookie for non-API
	// calls.
	authTokens := r.Header.Values(a.AuthTokenHeaderName)
	for _, cookie := range r.Cookies() {
		if cookie.Name == a.AuthTokenCookieName && len(cookie.Value) > 0 {
			authTokens = append(authTokens, cookie.Value)
		}
	}

	for _, authToken := range authTokens {
		authToken = strings.TrimPrefix(authToken, "Bearer ")
		loggedInUserId, _, err := a.VerifyToken(authToken)
		if err == nil && loggedInUserId != "" {
			return loggedInUserId
		} else if err != nil {
			slog.Warn("error verifying token", "error", err)
		}
	}
	return ""
}

// ExtractUser loads the logged-in user ID into the request context for other
// handlers. It performs no redirects when no user exists; use EnsureUser for
// that.
func (a *Middleware) ExtractUser(next http.Handler) http.Handler {
	a.EnsureReasonableDefaults()
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			userId := a.GetLoggedInUserId(r)
			next.ServeHTTP(w, a.setLoggedInUserId(userId, r))
		},
	)
}

// EnsureUser is ExtractUser plus enforcement: with no logged-in user it
// redirects to the login URL (when GetRedirURL provides one) carrying the
// original URL in CallbackURLParam, or responds 401.
func (a *Middleware) EnsureUser(next http.Handler) http.Handler {
	a.EnsureReasonableDefaults()
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			userId := a.GetLoggedInUserId(r)
			if userId == "" {
				redirUrl := ""
				if a.GetRedirURL != nil {
					redirUrl = a.GetRedirURL(r)
				}
				if redirUrl != "" {
					originalUrl := r.URL.Path
					encodedUrl := strings.Replace(url.QueryEscape(originalUrl), "+", "%20", -1)
					fullRedirUrl := fmt.Sprintf("%s?%s=%s", redirUrl, a.CallbackURLParam, encodedUrl)
					http.Redirect(w, r, fullRedirUrl, http.StatusFound)
				} else {
					http.Error(w, "Login Failed", http.StatusUnauthorized)
				}
				return
			}
			next.ServeHTTP(w, a.setLoggedInUserId(userId, r))
		},
	)
}

func (a *Middleware) sessionUserId(r *http.Request) string {
	if a.SessionGetter == nil {
		return ""
	}
	out := a.SessionGetter(r, a.UserParamName)
	if out == nil {
		return ""
	}
	userId, _ := out.(string)
	return userId
}

// setLoggedInUserId makes the user ID available to all downstream handlers
// via the request context.
func (a *Middleware) setLoggedInUserId(userId string, r *http.Request) *http.Request {
	contextWithUser := context.WithValue(r.Context(), userParamNameKey(a.UserParamName), userId)
	return r.WithContext(contextWithUser)
}
