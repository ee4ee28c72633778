// Package domain contains the core business entities for Wildpitch.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the campground sharing service.
package domain

import (
	"strings"
	"time"
)

// User represents a registered principal in the system.
// Users own campgrounds and reviews; ownership is the sole authorization
// predicate: the creator of an aggregate is the only one who may mutate it.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Email is the unique login handle for the user.
	Email string `json:"email"`

	// DisplayName is the public handle shown on campgrounds and reviews.
	// Derived from the email local part at registration when not supplied;
	// nil when the derived value was already taken. Unique when present.
	DisplayName *string `json:"display_name,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
func NewUser(email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Handle returns the name to show for this user: the display name when set,
// otherwise the full email.
func (u *User) Handle() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

// DeriveDisplayName returns the default display name for a login handle:
// the substring before the first "@". Returns "" when the handle has no
// local part.
func DeriveDisplayName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return ""
}
