package auth

import (
	"strings"
	"unicode"

	"batchbook/internal/exceptions"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Metadata is the editable profile attached to an account.
type Metadata struct {
	FirstName string
	LastName  string
	Username  string
}

// ValidateEmail performs the minimal shape check used by the sign-up form.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return exceptions.InvalidInput("Email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsFunc(email, unicode.IsSpace) {
		return exceptions.InvalidInput("Please provide a valid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return exceptions.InvalidInput("Password must be at least 6 characters")
	}
	return nil
}

// ValidateUsername rejects empty usernames and any username containing a
// whitespace character anywhere, including leading or trailing.
func ValidateUsername(username string) error {
	if username == "" {
		return exceptions.InvalidInput("Username is required")
	}
	if strings.ContainsFunc(username, unicode.IsSpace) {
		return exceptions.InvalidInput("Username cannot contain spaces")
	}
	return nil
}

// Validate checks every metadata field.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" {
		return exceptions.InvalidInput("First name is required")
	}
	if strings.TrimSpace(m.LastName) == "" {
		return exceptions.InvalidInput("Last name is required")
	}
	return ValidateUsername(m.Username)
}
