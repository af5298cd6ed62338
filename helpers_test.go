package authcode_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/panyam/authcode"
)

type memUserStore struct {
	users map[string]authcode.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]authcode.User{}}
}

func (s *memUserStore) CreateUser(userId string, profile map[string]any) (authcode.User, error) {
	user := authcode.NewBasicUser(userId, profile)
	s.users[userId] = user
	return user, nil
}

func (s *memUserStore) GetUserById(userId string) (authcode.User, error) {
	user, ok := s.users[userId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", authcode.ErrUserNotFound, userId)
	}
	return user, nil
}

func (s *memUserStore) SaveUser(user authcode.User) error {
	s.users[user.Id()] = user
	return nil
}

type memAccountStore struct {
	accounts map[string]*authcode.Account
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: map[string]*authcode.Account{}}
}

func (s *memAccountStore) GetAccount(provider, subject string) (*authcode.Account, error) {
	account, ok := s.accounts[authcode.AccountKey(provider, subject)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", authcode.ErrAccountNotFound, authcode.AccountKey(provider, subject))
	}
	return account, nil
}

func (s *memAccountStore) SaveAccount(account *authcode.Account) error {
	s.accounts[authcode.AccountKey(account.Provider, account.Subject)] = account
	return nil
}

func (s *memAccountStore) GetUserAccounts(userId string) ([]*authcode.Account, error) {
	var out []*authcode.Account
	for _, account := range s.accounts {
		if account.UserID == userId {
			out = append(out, account)
		}
	}
	return out, nil
}

func TestNewVerifier(t *testing.T) {
	profile := &authcode.Profile{
		Provider:    "google",
		ID:          "sub-123",
		DisplayName: "Test User",
		Emails:      []authcode.ProfileEmail{{Value: "test@example.com"}},
	}

	t.Run("first login creates a user and account link", func(t *testing.T) {
		users := newMemUserStore()
		accounts := newMemAccountStore()
		verify := authcode.NewVerifier(users, accounts)

		user, err := verify(context.Background(), "AT1", "RT1", nil, profile)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if user.Id() == "" {
			t.Fatal("expected a generated user id")
		}
		if user.Profile()["email"] != "test@example.com" {
			t.Errorf("user profile = %v, want the provider email", user.Profile())
		}

		account, err := accounts.GetAccount("google", "sub-123")
		if err != nil {
			t.Fatalf("account link missing: %v", err)
		}
		if account.UserID != user.Id() {
			t.Errorf("account.UserID = %q, want %q", account.UserID, user.Id())
		}
		if account.AccessToken != "AT1" || account.RefreshToken != "RT1" {
			t.Errorf("account tokens = (%q, %q), want (AT1, RT1)", account.AccessToken, account.RefreshToken)
		}
	})

	t.Run("repeat login reuses the user and refreshes tokens", func(t *testing.T) {
		users := newMemUserStore()
		accounts := newMemAccountStore()
		verify := authcode.NewVerifier(users, accounts)

		first, err := verify(context.Background(), "AT1", "RT1", nil, profile)
		if err != nil {
			t.Fatalf("first login failed: %v", err)
		}
		second, err := verify(context.Background(), "AT2", "RT2", nil, profile)
		if err != nil {
			t.Fatalf("second login failed: %v", err)
		}

		if first.Id() != second.Id() {
			t.Errorf("user ids differ across logins: %q vs %q", first.Id(), second.Id())
		}
		if len(users.users) != 1 {
			t.Errorf("user count = %d, want 1", len(users.users))
		}
		account, _ := accounts.GetAccount("google", "sub-123")
		if account.AccessToken != "AT2" || account.RefreshToken != "RT2" {
			t.Errorf("account tokens = (%q, %q), want refreshed (AT2, RT2)", account.AccessToken, account.RefreshToken)
		}
	})

	t.Run("profile without a subject id is rejected", func(t *testing.T) {
		verify := authcode.NewVerifier(newMemUserStore(), newMemAccountStore())
		if _, err := verify(context.Background(), "AT", "RT", nil, &authcode.Profile{Provider: "google"}); err == nil {
			t.Fatal("expected an error for a profile with no id")
		}
		if _, err := verify(context.Background(), "AT", "RT", nil, nil); err == nil {
			t.Fatal("expected an error for a nil profile")
		}
	})
}

func TestProfileValues(t *testing.T) {
	values := authcode.ProfileValues(&authcode.Profile{
		Provider:    "github",
		ID:          "99",
		DisplayName: "Octo Cat",
		Name:        "octo",
		Emails:      []authcode.ProfileEmail{{Value: "octo@example.com"}},
		Photos:      []authcode.ProfilePhoto{{Value: "http://img.example.com/octo.png"}},
	})

	want := map[string]any{
		"provider":    "github",
		"id":          "99",
		"displayName": "Octo Cat",
		"name":        "octo",
		"email":       "octo@example.com",
		"picture":     "http://img.example.com/octo.png",
	}
	for key, val := range want {
		if values[key] != val {
			t.Errorf("values[%s] = %v, want %v", key, values[key], val)
		}
	}
}
