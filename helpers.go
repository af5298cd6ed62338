package authcode

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

// NewVerifier builds the stock VerifyFunc on top of a pair of stores. First
// login through a provider creates the user and its account link; later
// logins find the account by (provider, subject) and refresh the stored
// tokens and profile. Applications with their own user model supply their
// own VerifyFunc instead.
func NewVerifier(users UserStore, accounts AccountStore) VerifyFunc {
	return func(ctx context.Context, accessToken, refreshToken string, extra map[string]any, profile *Profile) (User, error) {
		if profile == nil || profile.ID == "" {
			return nil, fmt.Errorf("provider profile has no subject id")
		}

		account, err := accounts.GetAccount(profile.Provider, profile.ID)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}

		if account == nil {
			userId := generateSecureUserId()
			if _, err := users.CreateUser(userId, ProfileValues(profile)); err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
			account = &Account{
				Provider: profile.Provider,
				Subject:  profile.ID,
				UserID:   userId,
			}
			slog.Info("created user for new provider account",
				"provider", profile.Provider, "subject", profile.ID, "userId", userId)
		}

		account.AccessToken = accessToken
		account.RefreshToken = refreshToken
		account.Profile = ProfileValues(profile)
		if err := accounts.SaveAccount(account); err != nil {
			return nil, fmt.Errorf("failed to save account: %w", err)
		}

		return users.GetUserById(account.UserID)
	}
}

// ProfileValues flattens a Profile into the map shape stores keep.
func ProfileValues(p *Profile) map[string]any {
	out := map[string]any{
		"provider": p.Provider,
	}
	if p.ID != "" {
		out["id"] = p.ID
	}
	if p.DisplayName != "" {
		out["displayName"] = p.DisplayName
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if len(p.Emails) > 0 {
		out["email"] = p.Emails[0].Value
	}
	if len(p.Photos) > 0 {
		out["picture"] = p.Photos[0].Value
	}
	return out
}

// generateSecureUserId generates a cryptographically secure user ID
func generateSecureUserId() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
