package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ac "github.com/panyam/authcode"
)

// JSONMap is a helper type for storing JSON maps in GORM
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// UserModel is the GORM model for users
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Profile   JSONMap   `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// AccountModel is the GORM model for provider account links
type AccountModel struct {
	Provider     string    `gorm:"primaryKey;size:32"`
	Subject      string    `gorm:"primaryKey;size:255"`
	UserID       string    `gorm:"size:64;index"`
	AccessToken  string    `gorm:"size:4096"`
	RefreshToken string    `gorm:"size:4096"`
	Profile      JSONMap   `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

func (m *AccountModel) ToAccount() *ac.Account {
	return &ac.Account{
		Provider:     m.Provider,
		Subject:      m.Subject,
		UserID:       m.UserID,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		Profile:      m.Profile,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func AccountToModel(a *ac.Account) *AccountModel {
	return &AccountModel{
		Provider:     a.Provider,
		Subject:      a.Subject,
		UserID:       a.UserID,
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Profile:      JSONMap(a.Profile),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
