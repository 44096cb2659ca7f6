package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account created by registration or by a first Google sign-in.
// At least one of PasswordHash and GoogleID is set.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username         *string    `gorm:"size:50;uniqueIndex" json:"username,omitempty"`
	PasswordHash     string     `gorm:"size:255" json:"-"`
	GoogleID         *string    `gorm:"size:255;uniqueIndex" json:"-"`
	FullName         string     `gorm:"size:255" json:"full_name"`
	Phone            string     `gorm:"size:50" json:"phone,omitempty"`
	AvatarURL        string     `gorm:"type:text" json:"avatar_url,omitempty"`
	Role             string     `gorm:"size:20;not null;default:'user'" json:"role"`
	IsVerified       bool       `gorm:"not null;default:false" json:"is_verified"`
	ResetTokenHash   *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
