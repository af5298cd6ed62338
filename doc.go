// Package authcode implements the client side of the OAuth 2.0 Authorization
// Code Grant as a reusable authentication strategy.
//
// A Strategy owns one provider configuration (authorization URL, token URL,
// client credentials, callback URL) and drives the whole flow for a single
// request: redirecting the browser to the provider, validating the CSRF state
// on the callback, exchanging the authorization code for tokens, fetching a
// provider profile, and handing everything to an application-supplied
// VerifyFunc that resolves the final user.
//
// # Outcomes instead of exceptions
//
// Authenticate never writes to the network itself. Every invocation ends in a
// tagged Outcome: a resolved User, a Redirect (with the committed session
// cookie), or an Error with an HTTP status and message. The caller dispatches
// on the tag; Outcome.Write handles the redirect and error cases for plain
// net/http handlers.
//
// # Sessions
//
// The strategy treats the session as an injected capability: an opaque
// key-value store that can commit itself to a cookie. CookieSession is a
// self-contained implementation that serializes the whole session into one
// cookie; the sessions/scs subpackage adapts an alexedwards/scs session
// manager instead.
//
// # Basic Usage
//
//	verify := func(ctx context.Context, accessToken, refreshToken string,
//		extra map[string]any, profile *authcode.Profile) (authcode.User, error) {
//		// look up or create your application user here
//		return myUserFromProfile(profile)
//	}
//
//	strategy := authcode.NewStrategy(authcode.Config{
//		AuthorizationURL: "https://provider.example.com/oauth/authorize",
//		TokenURL:         "https://provider.example.com/oauth/token",
//		ClientID:         clientID,
//		ClientSecret:     clientSecret,
//		CallbackURL:      "/auth/callback",
//	}, verify)
//	strategy.SuccessRedirect = "/home"
//	strategy.FailureRedirect = "/login"
//
//	http.HandleFunc("/auth/", func(w http.ResponseWriter, r *http.Request) {
//		sess := authcode.LoadCookieSession("app_session", r)
//		outcome := strategy.Authenticate(r, sess)
//		if !outcome.Write(w, r) {
//			// outcome.User resolved in-process, no redirect configured
//		}
//	})
//
// The Auth hub in this package mounts several strategies on one router,
// issues a signed auth-token cookie after login and exposes logout; the
// providers subpackage ships preconfigured Google and GitHub strategies;
// the stores subpackages provide file, GORM and Datastore backends for the
// stock verifier built by NewVerifier.
//
// # Testing
//
// Strategies can be exercised without a running server using
// httptest.NewRequest and httptest.ResponseRecorder, with an httptest.Server
// standing in for the provider's token and userinfo endpoints.
package authcode
