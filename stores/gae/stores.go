// Package gae provides Cloud Datastore-backed user and account stores.
// Profiles are stored as JSON blobs since Datastore properties cannot hold
// arbitrary maps.
package gae

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/iterator"

	ac "github.com/panyam/authcode"
)

// Kind constants for Datastore entities
const (
	KindUser    = "User"
	KindAccount = "Account"
)

type userEntity struct {
	ProfileJSON string    `datastore:"profile,noindex"`
	CreatedAt   time.Time `datastore:"created_at"`
	UpdatedAt   time.Time `datastore:"updated_at"`
}

// GAEUser implements the ac.User interface
type GAEUser struct {
	UserID      string
	UserProfile map[string]any
}

func (u *GAEUser) Id() string              { return u.UserID }
func (u *GAEUser) Profile() map[string]any { return u.UserProfile }

// UserStore implements ac.UserStore using Google Cloud Datastore
type UserStore struct {
	client    *datastore.Client
	namespace string
	ctx       context.Context
}

// NewUserStore creates a new Datastore-backed UserStore
func NewUserStore(client *datastore.Client, namespace string) *UserStore {
	return &UserStore{client: client, namespace: namespace, ctx: context.Background()}
}

// WithContext returns a copy of the store with the given context
func (s *UserStore) WithContext(ctx context.Context) *UserStore {
	return &UserStore{client: s.client, namespace: s.namespace, ctx: ctx}
}

func (s *UserStore) namespacedKey(kind, name string) *datastore.Key {
	key := datastore.NameKey(kind, name, nil)
	key.Namespace = s.namespace
	return key
}

func (s *UserStore) CreateUser(userId string, profile map[string]any) (ac.User, error) {
	user := &GAEUser{UserID: userId, UserProfile: profile}
	return user, s.SaveUser(user)
}

func (s *UserStore) GetUserById(userId string) (ac.User, error) {
	var entity userEntity
	err := s.client.Get(s.ctx, s.namespacedKey(KindUser, userId), &entity)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, fmt.Errorf("%w: %s", ac.ErrUserNotFound, userId)
	}
	if err != nil {
		return nil, err
	}

	var profile map[string]any
	if entity.ProfileJSON != "" {
		if err := json.Unmarshal([]byte(entity.ProfileJSON), &profile); err != nil {
			return nil, err
		}
	}
	return &GAEUser{UserID: userId, UserProfile: profile}, nil
}

func (s *UserStore) SaveUser(user ac.User) error {
	profileJSON, err := json.Marshal(user.Profile())
	if err != nil {
		return err
	}

	key := s.namespacedKey(KindUser, user.Id())
	entity := userEntity{
		ProfileJSON: string(profileJSON),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	var existing userEntity
	if err := s.client.Get(s.ctx, key, &existing); err == nil {
		entity.CreatedAt = existing.CreatedAt
	}
	_, err = s.client.Put(s.ctx, key, &entity)
	return err
}

type accountEntity struct {
	Provider     string    `datastore:"provider"`
	Subject      string    `datastore:"subject"`
	UserID       string    `datastore:"user_id"`
	AccessToken  string    `datastore:"access_token,noindex"`
	RefreshToken string    `datastore:"refresh_token,noindex"`
	ProfileJSON  string    `datastore:"profile,noindex"`
	CreatedAt    time.Time `datastore:"created_at"`
	UpdatedAt    time.Time `datastore:"updated_at"`
}

func (e *accountEntity) toAccount() (*ac.Account, error) {
	var profile map[string]any
	if e.ProfileJSON != "" {
		if err := json.Unmarshal([]byte(e.ProfileJSON), &profile); err != nil {
			return nil, err
		}
	}
	return &ac.Account{
		Provider:     e.Provider,
		Subject:      e.Subject,
		UserID:       e.UserID,
		AccessToken:  e.AccessToken,
		RefreshToken: e.RefreshToken,
		Profile:      profile,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, nil
}

// AccountStore implements ac.AccountStore using Google Cloud Datastore
type AccountStore struct {
	client    *datastore.Client
	namespace string
	ctx       context.Context
}

// NewAccountStore creates a new Datastore-backed AccountStore
func NewAccountStore(client *datastore.Client, namespace string) *AccountStore {
	return &AccountStore{client: client, namespace: namespace, ctx: context.Background()}
}

// WithContext returns a copy of the store with the given context
func (s *AccountStore) WithContext(ctx context.Context) *AccountStore {
	return &AccountStore{client: s.client, namespace: s.namespace, ctx: ctx}
}

func (s *AccountStore) namespacedKey(name string) *datastore.Key {
	key := datastore.NameKey(KindAccount, name, nil)
	key.Namespace = s.namespace
	return key
}

func (s *AccountStore) GetAccount(provider, subject string) (*ac.Account, error) {
	var entity accountEntity
	err := s.client.Get(s.ctx, s.namespacedKey(ac.AccountKey(provider, subject)), &entity)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, fmt.Errorf("%w: %s", ac.ErrAccountNotFound, ac.AccountKey(provider, subject))
	}
	if err != nil {
		return nil, err
	}
	return entity.toAccount()
}

func (s *AccountStore) SaveAccount(account *ac.Account) error {
	profileJSON, err := json.Marshal(account.Profile)
	if err != nil {
		return err
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	account.UpdatedAt = time.Now()

	entity := accountEntity{
		Provider:     account.Provider,
		Subject:      account.Subject,
		UserID:       account.UserID,
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		ProfileJSON:  string(profileJSON),
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
	_, err = s.client.Put(s.ctx, s.namespacedKey(ac.AccountKey(account.Provider, account.Subject)), &entity)
	return err
}

func (s *AccountStore) GetUserAccounts(userId string) ([]*ac.Account, error) {
	query := datastore.NewQuery(KindAccount).
		Namespace(s.namespace).
		FilterField("user_id", "=", userId)

	var accounts []*ac.Account
	it := s.client.Run(s.ctx, query)
	for {
		var entity accountEntity
		_, err := it.Next(&entity)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		account, err := entity.toAccount()
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
