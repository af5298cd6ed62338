// Package fs provides file-backed user and account stores, one JSON file per
// record. Suitable for development and tests; use the gorm or gae backends
// for production.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ac "github.com/panyam/authcode"
)

// FSUser implements the authcode.User interface.
type FSUser struct {
	UserId      string         `json:"user_id"`
	UserProfile map[string]any `json:"profile"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (u *FSUser) Id() string              { return u.UserId }
func (u *FSUser) Profile() map[string]any { return u.UserProfile }

// FSUserStore stores users as JSON files.
type FSUserStore struct {
	StoragePath string
}

func NewFSUserStore(storagePath string) *FSUserStore {
	return &FSUserStore{StoragePath: storagePath}
}

func (s *FSUserStore) getUserPath(userId string) string {
	return filepath.Join(s.StoragePath, "users", userId+".json")
}

func (s *FSUserStore) CreateUser(userId string, profile map[string]any) (ac.User, error) {
	user := &FSUser{
		UserId:      userId,
		UserProfile: profile,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return user, s.SaveUser(user)
}

func (s *FSUserStore) GetUserById(userId string) (ac.User, error) {
	data, err := os.ReadFile(s.getUserPath(userId))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ac.ErrUserNotFound, userId)
		}
		return nil, err
	}

	var user FSUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *FSUserStore) SaveUser(user ac.User) error {
	fsUser, ok := user.(*FSUser)
	if !ok {
		fsUser = &FSUser{
			UserId:      user.Id(),
			UserProfile: user.Profile(),
			CreatedAt:   time.Now(),
		}
	}
	fsUser.UpdatedAt = time.Now()

	path := s.getUserPath(fsUser.UserId)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fsUser, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

// FSAccountStore stores provider account links as JSON files keyed by
// provider:subject.
type FSAccountStore struct {
	StoragePath string
}

func NewFSAccountStore(storagePath string) *FSAccountStore {
	return &FSAccountStore{StoragePath: storagePath}
}

func (s *FSAccountStore) getAccountPath(provider, subject string) string {
	name := sanitizeFilename(ac.AccountKey(provider, subject))
	return filepath.Join(s.StoragePath, "accounts", name+".json")
}

func (s *FSAccountStore) GetAccount(provider, subject string) (*ac.Account, error) {
	data, err := os.ReadFile(s.getAccountPath(provider, subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ac.ErrAccountNotFound, ac.AccountKey(provider, subject))
		}
		return nil, err
	}

	var account ac.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *FSAccountStore) SaveAccount(account *ac.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = time.Now()

	path := s.getAccountPath(account.Provider, account.Subject)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(account, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomicFile(path, data)
}

func (s *FSAccountStore) GetUserAccounts(userId string) ([]*ac.Account, error) {
	dir := filepath.Join(s.StoragePath, "accounts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var accounts []*ac.Account
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var account ac.Account
		if err := json.Unmarshal(data, &account); err != nil {
			continue
		}
		if account.UserID == userId {
			accounts = append(accounts, &account)
		}
	}
	return accounts, nil
}

// sanitizeFilename keeps account keys filesystem-safe.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
