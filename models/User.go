package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents an application account that can authenticate with the platform.
// First name, last name and username are profile metadata edited by the owner.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	u.ID = ensureID(u.ID)
	return nil
}

// Handle returns the "@username" label shown in the header.
func (u User) Handle() string {
	if name := strings.TrimSpace(u.Username); name != "" {
		return "@" + name
	}
	return "@anonymous"
}

// DisplayName joins first and last name, falling back to the email address.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return u.Email
}
