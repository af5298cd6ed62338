package authcode_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/panyam/authcode"
)

func newTestAuth(t *testing.T) *authcode.Auth {
	t.Helper()
	hub := authcode.New("TestApp")
	hub.JWTSecretKey = "test-secret-key"
	hub.Sessions = func(r *http.Request) authcode.Session {
		return authcode.LoadCookieSession("app_session", r)
	}
	return hub.EnsureDefaults()
}

func TestAuthDefaults(t *testing.T) {
	hub := authcode.New("TestApp")
	if hub.JwtIssuer != "TestApp-Issuer" {
		t.Errorf("JwtIssuer = %q, want TestApp-Issuer", hub.JwtIssuer)
	}
	if hub.AuthTokenSessionVar != "TestAppAuthToken" {
		t.Errorf("AuthTokenSessionVar = %q, want TestAppAuthToken", hub.AuthTokenSessionVar)
	}
	if hub.SessionTimeoutInSeconds != 86400 {
		t.Errorf("SessionTimeoutInSeconds = %d, want 86400", hub.SessionTimeoutInSeconds)
	}
	if hub.Middleware.AuthTokenCookieName != "TestAppAuthToken" {
		t.Errorf("auth cookie name = %q, want TestAppAuthToken", hub.Middleware.AuthTokenCookieName)
	}
	if hub.Middleware.VerifyToken == nil {
		t.Error("expected the middleware verifier to be wired")
	}
}

// loginThroughHub walks the whole flow against a mounted strategy and returns
// the callback response.
func loginThroughHub(t *testing.T, hub *authcode.Auth, handler http.Handler, extraQuery string) *http.Response {
	t.Helper()

	// Kick off the flow; the hub redirects to the provider.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://app.example.com/oauth/login", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", rr.Code)
	}
	state := stateParam(t, rr.Header().Get("Location"))
	if state == "" {
		t.Fatal("expected a state on the provider redirect")
	}
	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "app_session" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected the session cookie on the provider redirect")
	}

	// Come back through the callback with the provider's answer.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"http://app.example.com/oauth/callback?state="+state+"&code=abc"+extraQuery, nil)
	req.AddCookie(sessionCookie)
	handler.ServeHTTP(rr, req)
	return rr.Result()
}

func TestAuthLoginFlow(t *testing.T) {
	mock := newMockProviderServer()
	defer mock.Close()

	hub := newTestAuth(t)
	strategy := authcode.NewStrategy(authcode.Config{
		AuthorizationURL: "https://provider.example.com/auth",
		TokenURL:         mock.server.URL + "/token",
		ClientID:         "cid",
		ClientSecret:     "cs",
		CallbackURL:      "/oauth/callback",
	}, verifyAs("42"))
	hub.AddStrategy("/oauth", strategy)
	handler := hub.Handler()

	t.Run("callback finishes the login", func(t *testing.T) {
		resp := loginThroughHub(t, hub, handler, "")
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("callback status = %d, want 302", resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/" {
			t.Errorf("post-login redirect = %q, want /", loc)
		}

		cookies := map[string]*http.Cookie{}
		for _, c := range resp.Cookies() {
			cookies[c.Name] = c
		}
		if c := cookies["loggedInUserId"]; c == nil || c.Value != "42" {
			t.Errorf("loggedInUserId cookie = %+v, want value 42", cookies["loggedInUserId"])
		}
		tokenCookie := cookies["TestAppAuthToken"]
		if tokenCookie == nil || tokenCookie.Value == "" {
			t.Fatal("expected a signed auth token cookie")
		}

		// The issued token verifies back to the same user.
		userId, _, err := hub.Middleware.VerifyToken(tokenCookie.Value)
		if err != nil {
			t.Fatalf("token did not verify: %v", err)
		}
		if userId != "42" {
			t.Errorf("token subject = %q, want 42", userId)
		}
	})

	t.Run("to param overrides the post-login destination", func(t *testing.T) {
		resp := loginThroughHub(t, hub, handler, "&to=/dashboard")
		if loc := resp.Header.Get("Location"); loc != "/dashboard" {
			t.Errorf("post-login redirect = %q, want /dashboard", loc)
		}
	})

	t.Run("tampered tokens are rejected", func(t *testing.T) {
		resp := loginThroughHub(t, hub, handler, "")
		var token string
		for _, c := range resp.Cookies() {
			if c.Name == "TestAppAuthToken" {
				token = c.Value
			}
		}
		if _, _, err := hub.Middleware.VerifyToken(token + "x"); err == nil {
			t.Error("expected a tampered token to fail verification")
		}

		other := authcode.New("TestApp")
		other.JWTSecretKey = "a-different-secret"
		if _, _, err := other.EnsureDefaults().Middleware.VerifyToken(token); err == nil {
			t.Error("expected a token signed with another key to fail")
		}
	})
}

func TestAuthLogout(t *testing.T) {
	hub := newTestAuth(t)
	handler := hub.Handler()

	t.Run("plain logout responds in place", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://app.example.com/logout", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Logged Out") {
			t.Errorf("body = %q, want a logged-out message", rr.Body.String())
		}

		expired := map[string]bool{}
		for _, c := range rr.Result().Cookies() {
			if c.MaxAge < 0 {
				expired[c.Name] = true
			}
		}
		if !expired["loggedInUserId"] || !expired["TestAppAuthToken"] {
			t.Errorf("expected both auth cookies expired, got %v", expired)
		}
	})

	t.Run("logout honors the to param", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://app.example.com/logout?to=/bye", nil))
		if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/bye" {
			t.Fatalf("expected a 302 to /bye, got %d %q", rr.Code, rr.Header().Get("Location"))
		}
	})
}
