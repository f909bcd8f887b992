package domain

import (
	"context"
	"time"
)

// User represents a registered account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"` // Unique, 5-20 alphanumeric
	Email        string    `db:"email" json:"email"`       // Unique
	PasswordHash string    `db:"password_hash" json:"-"`   // Bcrypt hash (never serialized)
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserCandidate is the unvalidated input to registration
type UserCandidate struct {
	Username string
	Email    string
	Password string
}

// Profile is the public view of a user
type Profile struct {
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// Profile returns the public view of the user
func (u *User) Profile() Profile {
	return Profile{Username: u.Username, Email: u.Email}
}

// UserRepository defines data access for users
type UserRepository interface {
	// Create persists the user and fills in ID and CreatedAt.
	// Returns *ConflictError if the username or email is taken.
	Create(ctx context.Context, user *User) error
	// FindByUsernameOrEmail returns the first user whose username equals
	// username or whose email equals email, in a single lookup.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}
