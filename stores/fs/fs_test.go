package fs

import (
	"errors"
	"testing"

	ac "github.com/panyam/authcode"
)

func TestFSUserStore(t *testing.T) {
	store := NewFSUserStore(t.TempDir())

	t.Run("create and read back", func(t *testing.T) {
		created, err := store.CreateUser("u1", map[string]any{"email": "u1@example.com"})
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if created.Id() != "u1" {
			t.Errorf("created id = %q, want u1", created.Id())
		}

		user, err := store.GetUserById("u1")
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if user.Profile()["email"] != "u1@example.com" {
			t.Errorf("profile = %v, want the saved email", user.Profile())
		}
	})

	t.Run("unknown user yields ErrUserNotFound", func(t *testing.T) {
		_, err := store.GetUserById("nobody")
		if !errors.Is(err, ac.ErrUserNotFound) {
			t.Fatalf("err = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("save updates the profile", func(t *testing.T) {
		user := ac.NewBasicUser("u1", map[string]any{"email": "new@example.com"})
		if err := store.SaveUser(user); err != nil {
			t.Fatalf("SaveUser failed: %v", err)
		}
		got, err := store.GetUserById("u1")
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if got.Profile()["email"] != "new@example.com" {
			t.Errorf("profile = %v, want the updated email", got.Profile())
		}
	})
}

func TestFSAccountStore(t *testing.T) {
	store := NewFSAccountStore(t.TempDir())

	t.Run("unknown account yields ErrAccountNotFound", func(t *testing.T) {
		_, err := store.GetAccount("google", "nobody")
		if !errors.Is(err, ac.ErrAccountNotFound) {
			t.Fatalf("err = %v, want ErrAccountNotFound", err)
		}
	})

	t.Run("save and read back", func(t *testing.T) {
		account := &ac.Account{
			Provider:    "google",
			Subject:     "sub/with:odd chars",
			UserID:      "u1",
			AccessToken: "AT1",
		}
		if err := store.SaveAccount(account); err != nil {
			t.Fatalf("SaveAccount failed: %v", err)
		}
		if account.CreatedAt.IsZero() || account.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be filled on save")
		}

		got, err := store.GetAccount("google", "sub/with:odd chars")
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if got.UserID != "u1" || got.AccessToken != "AT1" {
			t.Errorf("account = %+v, want the saved fields", got)
		}
	})

	t.Run("lists accounts by user", func(t *testing.T) {
		for _, account := range []*ac.Account{
			{Provider: "github", Subject: "77", UserID: "u1"},
			{Provider: "google", Subject: "88", UserID: "u2"},
		} {
			if err := store.SaveAccount(account); err != nil {
				t.Fatalf("SaveAccount failed: %v", err)
			}
		}

		accounts, err := store.GetUserAccounts("u1")
		if err != nil {
			t.Fatalf("GetUserAccounts failed: %v", err)
		}
		if len(accounts) != 2 {
			t.Fatalf("account count = %d, want 2 for u1", len(accounts))
		}
		for _, account := range accounts {
			if account.UserID != "u1" {
				t.Errorf("unexpected account %+v in u1's list", account)
			}
		}
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		empty := NewFSAccountStore(t.TempDir())
		accounts, err := empty.GetUserAccounts("u1")
		if err != nil || len(accounts) != 0 {
			t.Fatalf("got (%v, %v), want an empty list", accounts, err)
		}
	})
}
