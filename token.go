package authcode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenResult is the provider's answer to a code exchange. It lives for one
// authentication only; the core never persists it.
type TokenResult struct {
	AccessToken  string
	RefreshToken string

	// Extra holds every response field other than access_token and
	// refresh_token, preserved verbatim (token_type, expires_in, id_token,
	// whatever else the provider sends).
	Extra map[string]any
}

// exchangeCode POSTs the authorization code to the token endpoint and parses
// the response. params are the extension token parameters; client_id,
// client_secret and redirect_uri are always injected here so callers can
// never accidentally omit them.
//
// If params carries grant_type=refresh_token the code argument is sent as
// refresh_token instead of code, which is what a refresh flow needs.
//
// A non-2xx status fails with the raw response body text (or the read
// error's message) at 401.
func exchangeCode(ctx context.Context, client *http.Client, config Config, callbackURL, code string, params url.Values) (*TokenResult, *Error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	for key, vals := range params {
		for _, val := range vals {
			form.Set(key, val)
		}
	}
	form.Set("redirect_uri", callbackURL)
	form.Set("client_id", config.ClientID)
	form.Set("client_secret", config.ClientSecret)
	if form.Get("grant_type") == "refresh_token" {
		form.Set("refresh_token", code)
	} else {
		form.Set("code", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewError(http.StatusUnauthorized, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewError(http.StatusUnauthorized, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if err != nil {
			msg = err.Error()
		}
		return nil, NewError(http.StatusUnauthorized, msg)
	}
	if err != nil {
		return nil, NewError(http.StatusUnauthorized, err.Error())
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, NewError(http.StatusUnauthorized, err.Error())
	}

	token := &TokenResult{Extra: map[string]any{}}
	for key, val := range fields {
		switch key {
		case "access_token":
			token.AccessToken, _ = val.(string)
		case "refresh_token":
			token.RefreshToken, _ = val.(string)
		default:
			token.Extra[key] = val
		}
	}
	return token, nil
}
