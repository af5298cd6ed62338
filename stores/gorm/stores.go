// Package gorm provides GORM-backed user and account stores for any SQL
// database GORM speaks.
package gorm

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	ac "github.com/panyam/authcode"
)

// AutoMigrate runs database migrations for all authcode tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&AccountModel{},
	)
}

// GORMUser implements the ac.User interface
type GORMUser struct {
	model *UserModel
}

func (u *GORMUser) Id() string              { return u.model.ID }
func (u *GORMUser) Profile() map[string]any { return u.model.Profile }

// UserStore implements ac.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(userId string, profile map[string]any) (ac.User, error) {
	model := &UserModel{
		ID:      userId,
		Profile: profile,
	}
	if err := s.db.Create(model).Error; err != nil {
		return nil, err
	}
	return &GORMUser{model: model}, nil
}

func (s *UserStore) GetUserById(userId string) (ac.User, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", userId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ac.ErrUserNotFound, userId)
		}
		return nil, err
	}
	return &GORMUser{model: &model}, nil
}

func (s *UserStore) SaveUser(user ac.User) error {
	model := &UserModel{
		ID:      user.Id(),
		Profile: user.Profile(),
	}
	return s.db.Save(model).Error
}

// AccountStore implements ac.AccountStore using GORM
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) GetAccount(provider, subject string) (*ac.Account, error) {
	var model AccountModel
	err := s.db.First(&model, "provider = ? AND subject = ?", provider, subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ac.ErrAccountNotFound, ac.AccountKey(provider, subject))
	}
	if err != nil {
		return nil, err
	}
	return model.ToAccount(), nil
}

func (s *AccountStore) SaveAccount(account *ac.Account) error {
	return s.db.Save(AccountToModel(account)).Error
}

func (s *AccountStore) GetUserAccounts(userId string) ([]*ac.Account, error) {
	var models []AccountModel
	if err := s.db.Where("user_id = ?", userId).Find(&models).Error; err != nil {
		return nil, err
	}

	accounts := make([]*ac.Account, len(models))
	for i, m := range models {
		accounts[i] = m.ToAccount()
	}
	return accounts, nil
}
