// Package providers ships preconfigured authcode strategies for well-known
// OAuth2 providers. Each provider is an Extension over the generic strategy:
// its scopes ride along as authorization parameters and its userinfo
// endpoint populates the Profile.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// fetchUserInfo GETs a userinfo endpoint with the access token as a bearer
// credential and decodes the JSON payload.
func fetchUserInfo(ctx context.Context, client *http.Client, userInfoURL, accessToken string) (map[string]any, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer response.Body.Close()

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("userinfo request failed: %s", string(contents))
	}

	var userInfo map[string]any
	if err := json.Unmarshal(contents, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return userInfo, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
