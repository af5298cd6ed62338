package authcode

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateEntropyBytes is how much raw entropy goes into each CSRF state token.
const stateEntropyBytes = 100

// GenerateState returns a fresh unguessable CSRF state token, URL-safe
// encoded. A new token is generated for every redirect to the provider;
// tokens are never reused across requests or sessions.
func GenerateState() (string, error) {
	b := make([]byte, stateEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
