package authcode

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Config holds one provider's endpoints and client credentials. It is not
// mutated after the strategy is constructed.
type Config struct {
	AuthorizationURL string
	TokenURL         string
	ClientID         string
	ClientSecret     string

	// CallbackURL may be an absolute URL ("https://app.example.com/cb"), a
	// path resolved against the current request's origin ("/auth/cb"), or a
	// bare host prefixed with the current request's scheme
	// ("app.example.com/cb").
	CallbackURL string
}

// VerifyFunc is the application-supplied resolver: given the tokens and the
// provider profile, it resolves the application user or fails with a
// message. This is the only application-defined decision point in the flow.
type VerifyFunc func(ctx context.Context, accessToken, refreshToken string, extra map[string]any, profile *Profile) (User, error)

// Extension is the per-provider override surface: extra authorization and
// token parameters plus the profile fetch. BaseExtension is the no-op
// default; provider strategies embed it and override what they need.
type Extension interface {
	// AuthorizationParams returns extra query parameters for the
	// authorization redirect (scope, access_type, prompt, ...).
	AuthorizationParams(r *http.Request) url.Values

	// TokenParams returns extra form parameters for the token exchange.
	// Setting grant_type=refresh_token here switches the exchange into the
	// refresh flow.
	TokenParams() url.Values

	// FetchProfile turns a token into a provider profile, typically by
	// calling a userinfo endpoint with the access token.
	FetchProfile(ctx context.Context, token *TokenResult) (*Profile, error)
}

// BaseExtension is the default Extension: no extra parameters, and a minimal
// profile naming the generic provider without any network call.
type BaseExtension struct{}

func (BaseExtension) AuthorizationParams(*http.Request) url.Values { return nil }
func (BaseExtension) TokenParams() url.Values                      { return nil }

func (BaseExtension) FetchProfile(context.Context, *TokenResult) (*Profile, error) {
	return &Profile{Provider: "oauth2"}, nil
}

// Strategy drives the authorization code grant for one provider. A single
// Strategy serves any number of concurrent requests; all mutable state lives
// in the per-request Session.
type Strategy struct {
	Config Config
	Verify VerifyFunc

	// Name identifies the provider ("google", "github", ...). Defaults to
	// "oauth2".
	Name string

	// Extension hooks provider-specific behavior. Defaults to BaseExtension.
	Extension Extension

	// SessionUserKey is where the authenticated user is stored in the
	// session. Defaults to DefaultSessionUserKey.
	SessionUserKey string

	// SuccessRedirect, when set, is where the browser goes after a
	// successful verify (with the user committed into the session). When
	// empty the resolved user is returned in-process instead.
	SuccessRedirect string

	// FailureRedirect, when set, is where the browser goes after a verify
	// failure (with the error message committed into the session). When
	// empty the failure surfaces as a 401.
	FailureRedirect string

	// HTTPClient performs the token exchange. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// NewStrategy builds a strategy for the given provider config and resolver.
func NewStrategy(config Config, verify VerifyFunc) *Strategy {
	return (&Strategy{Config: config, Verify: verify}).EnsureDefaults()
}

func (s *Strategy) EnsureDefaults() *Strategy {
	if s.Name == "" {
		s.Name = "oauth2"
	}
	if s.Extension == nil {
		s.Extension = BaseExtension{}
	}
	if s.SessionUserKey == "" {
		s.SessionUserKey = DefaultSessionUserKey
	}
	if s.HTTPClient == nil {
		s.HTTPClient = http.DefaultClient
	}
	return s
}

// Authenticate runs one authentication attempt against the current request
// and session and returns the terminal outcome. It performs no I/O on the
// ResponseWriter itself.
//
// A request whose path is not the callback path starts a fresh authorization
// redirect, overwriting any pending state. A request on the callback path is
// validated (state, then code), exchanged for tokens, resolved to a profile
// and finally handed to Verify. A user already present in the session
// short-circuits everything: the token exchange and profile fetch never run.
func (s *Strategy) Authenticate(r *http.Request, sess Session) *Outcome {
	s.EnsureDefaults()

	if raw, ok := sess.Get(s.SessionUserKey); ok && raw != nil {
		if s.SuccessRedirect == "" {
			return UserOutcome(SessionUser(raw))
		}
		// No session change, but the cookie still accompanies the redirect.
		cookie, err := sess.Commit()
		if err != nil {
			return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
		}
		return RedirectOutcome(s.SuccessRedirect, cookie)
	}

	if r.URL.Path != s.callbackPath(r) {
		return s.redirectToProvider(r, sess)
	}
	return s.handleCallback(r, sess)
}

// redirectToProvider generates a fresh state, persists it as the single
// pending state for this session and redirects to the authorization URL.
func (s *Strategy) redirectToProvider(r *http.Request, sess Session) *Outcome {
	state, err := GenerateState()
	if err != nil {
		return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
	}

	authURL, err := s.AuthorizationURL(r, state)
	if err != nil {
		return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
	}

	// Overwrites any earlier pending state, invalidating that attempt.
	sess.Set(SessionKeyState, state)
	cookie, err := sess.Commit()
	if err != nil {
		return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
	}
	return RedirectOutcome(authURL, cookie)
}

// AuthorizationURL builds the provider authorization URL for the given state
// token. It does not mutate the session; Authenticate persists the state
// before redirecting.
func (s *Strategy) AuthorizationURL(r *http.Request, state string) (string, error) {
	u, err := url.Parse(s.Config.AuthorizationURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for key, vals := range s.Extension.AuthorizationParams(r) {
		for _, val := range vals {
			q.Set(key, val)
		}
	}
	q.Set("response_type", "code")
	q.Set("client_id", s.Config.ClientID)
	q.Set("redirect_uri", s.CallbackURL(r))
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// handleCallback validates the provider's callback in order: state present,
// state matching (only an exact match consumes the pending state), code
// present. Each check is a terminal 400 on failure. It then walks the
// sequential pipeline: exchange, profile fetch, verify, outcome.
func (s *Strategy) handleCallback(r *http.Request, sess Session) *Outcome {
	query := r.URL.Query()

	state := query.Get("state")
	if state == "" {
		return ErrorOutcome(errMissingState())
	}
	pending, _ := sess.Get(SessionKeyState)
	pendingState, _ := pending.(string)
	if pendingState == "" || pendingState != state {
		return ErrorOutcome(errStateMismatch())
	}
	sess.Unset(SessionKeyState)

	code := query.Get("code")
	if code == "" {
		return ErrorOutcome(errMissingCode())
	}

	ctx := r.Context()
	token, aerr := exchangeCode(ctx, s.HTTPClient, s.Config, s.CallbackURL(r), code, s.Extension.TokenParams())
	if aerr != nil {
		return ErrorOutcome(aerr)
	}

	profile, err := s.Extension.FetchProfile(ctx, token)
	if err != nil {
		return ErrorOutcome(NewError(http.StatusUnauthorized, err.Error()))
	}

	if s.Verify == nil {
		return ErrorOutcome(NewError(http.StatusUnauthorized, "no verify function configured"))
	}
	user, err := s.Verify(ctx, token.AccessToken, token.RefreshToken, token.Extra, profile)
	if err != nil {
		return s.failureOutcome(sess, err)
	}
	return s.successOutcome(sess, user)
}

func (s *Strategy) successOutcome(sess Session, user User) *Outcome {
	if s.SuccessRedirect == "" {
		return UserOutcome(user)
	}
	sess.Set(s.SessionUserKey, SessionUserValue(user))
	cookie, err := sess.Commit()
	if err != nil {
		return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
	}
	return RedirectOutcome(s.SuccessRedirect, cookie)
}

func (s *Strategy) failureOutcome(sess Session, verifyErr error) *Outcome {
	if s.FailureRedirect == "" {
		return ErrorOutcome(NewError(http.StatusUnauthorized, verifyErr.Error()))
	}
	sess.Set(SessionKeyError, map[string]any{"message": verifyErr.Error()})
	cookie, err := sess.Commit()
	if err != nil {
		return ErrorOutcome(NewError(http.StatusInternalServerError, err.Error()))
	}
	return RedirectOutcome(s.FailureRedirect, cookie)
}

// CallbackURL resolves Config.CallbackURL against the current request:
// absolute URLs pass through, a leading "/" resolves against the request's
// origin, and anything else is a bare host taking the request's scheme.
func (s *Strategy) CallbackURL(r *http.Request) string {
	cb := s.Config.CallbackURL
	if strings.HasPrefix(cb, "http:") || strings.HasPrefix(cb, "https:") {
		return cb
	}
	if strings.HasPrefix(cb, "/") {
		return requestScheme(r) + "://" + r.Host + cb
	}
	return requestScheme(r) + "://" + cb
}

// callbackPath is the path component of the resolved callback URL, matched
// by string equality against the request path.
func (s *Strategy) callbackPath(r *http.Request) string {
	u, err := url.Parse(s.CallbackURL(r))
	if err != nil {
		return ""
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
