package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
}

// Account.PasswordHash stays nil until activation or a password reset.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	FirstName    string    `gorm:"not null"              json:"firstName"`
	LastName     string    `gorm:"not null"              json:"lastName"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null"    json:"roleId"`
	Role         Role      `gorm:"foreignKey:RoleID"     json:"role"`
	IsActive     bool      `gorm:"default:false"         json:"isActive"`
	PasswordHash *string   `                             json:"-"`
	CreatedAt    time.Time `                             json:"createdAt"`
	UpdatedAt    time.Time `                             json:"updatedAt"`
}

// SessionToken holds the single live refresh token of an account.
type SessionToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex"      json:"account_id"`
	TokenHash string    `gorm:"uniqueIndex;not null"       json:"-"`
	ExpiresAt int64     `gorm:"not null"                   json:"expires_at"`
	UpdatedAt time.Time `                                  json:"updated_at"`
}

type ResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null"   json:"account_id"`
	TokenHash string    `gorm:"uniqueIndex;not null"       json:"-"`
	ExpiresAt int64     `gorm:"not null"                   json:"expires_at"`
	CreatedAt time.Time `                                  json:"created_at"`
}

func All() []any {
	return []any{&Role{}, &Account{}, &SessionToken{}, &ResetToken{}}
}
