package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account record. Password is nil for accounts created through
// Google login; such accounts can never authenticate with a password.
type User struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password *string `json:"-"`

	IsVerified bool `gorm:"default:false" json:"is_verified"`

	// VerificationToken is single use: consumed (and cleared) by email
	// verification.
	VerificationToken *string `gorm:"index" json:"-"`

	GoogleID *string `gorm:"uniqueIndex" json:"-"`

	Posts []Post `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
