package authcode

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCookieSessionRoundtrip(t *testing.T) {
	sess := NewCookieSession("app_session")
	sess.Set("user", map[string]any{"id": "42"})
	sess.Set(SessionKeyState, "st1")
	sess.Unset(SessionKeyState)

	cookie, err := sess.Commit()
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if cookie.Name != "app_session" || !cookie.HttpOnly {
		t.Errorf("unexpected cookie attributes: %+v", cookie)
	}
	if strings.ContainsAny(cookie.Value, "+/=") {
		t.Errorf("cookie value %q is not URL-safe", cookie.Value)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	restored := LoadCookieSession("app_session", req)

	raw, ok := restored.Get("user")
	if !ok {
		t.Fatal("expected the user entry to survive the roundtrip")
	}
	entry, _ := raw.(map[string]any)
	if entry["id"] != "42" {
		t.Errorf("user entry = %v, want id=42", raw)
	}
	if _, ok := restored.Get(SessionKeyState); ok {
		t.Error("unset keys must not survive")
	}
}

func TestLoadCookieSessionTolerance(t *testing.T) {
	t.Run("missing cookie yields an empty session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		sess := LoadCookieSession("app_session", req)
		if _, ok := sess.Get("user"); ok {
			t.Error("expected an empty session")
		}
		// Still usable.
		sess.Set("k", "v")
		if _, err := sess.Commit(); err != nil {
			t.Errorf("commit on a fresh session failed: %v", err)
		}
	})

	t.Run("garbage cookie yields an empty session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "app_session", Value: "%%%not-base64%%%"})
		sess := LoadCookieSession("app_session", req)
		if _, ok := sess.Get("user"); ok {
			t.Error("expected an empty session for a corrupt cookie")
		}
	})
}
