package authcode

import "time"

// User is a resolved application user. VerifyFuncs return these; the session
// stores a flattened form of them (see SessionUserValue).
type User interface {
	Id() string
	Profile() map[string]any
}

// BasicUser is a simple implementation of the User interface.
type BasicUser struct {
	id      string
	profile map[string]any
}

func NewBasicUser(id string, profile map[string]any) *BasicUser {
	return &BasicUser{id: id, profile: profile}
}

func (b *BasicUser) Id() string              { return b.id }
func (b *BasicUser) Profile() map[string]any { return b.profile }

// SessionUserValue flattens a user into the JSON-friendly shape stored under
// the strategy's session user key.
func SessionUserValue(user User) map[string]any {
	return map[string]any{
		"id":      user.Id(),
		"profile": user.Profile(),
	}
}

// SessionUser rebuilds a User from whatever the session hands back: either a
// live User (in-memory stores) or the flattened map a cookie round trip
// produces.
func SessionUser(value any) User {
	switch v := value.(type) {
	case User:
		return v
	case map[string]any:
		id, _ := v["id"].(string)
		profile, _ := v["profile"].(map[string]any)
		return &BasicUser{id: id, profile: profile}
	}
	return &BasicUser{}
}

// Account links one provider identity (provider + the provider's stable
// subject id) to an application user, along with the most recent tokens and
// profile the provider returned.
type Account struct {
	Provider     string         `json:"provider"`
	Subject      string         `json:"subject"`
	UserID       string         `json:"user_id"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	Profile      map[string]any `json:"profile,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AccountKey builds the canonical lookup key for an account.
func AccountKey(provider, subject string) string {
	return provider + ":" + subject
}

// UserStore manages application user accounts.
type UserStore interface {
	// CreateUser creates a new user with the given ID and profile
	CreateUser(userId string, profile map[string]any) (User, error)

	// GetUserById retrieves a user by their ID
	GetUserById(userId string) (User, error)

	// SaveUser creates or updates a user (upsert)
	SaveUser(user User) error
}

// AccountStore manages provider account links.
type AccountStore interface {
	// GetAccount retrieves the account for (provider, subject), or
	// ErrAccountNotFound
	GetAccount(provider, subject string) (*Account, error)

	// SaveAccount creates or updates an account (upsert)
	SaveAccount(account *Account) error

	// GetUserAccounts returns all provider accounts linked to a user
	GetUserAccounts(userId string) ([]*Account, error)
}
