package model

import (
	"errors"
	"time"
)

// User represents a registered or guest account.
// Guests never carry a password hash; password-capable accounts always do.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          *string   `db:"email" json:"email"`
	PasswordHashed *string   `db:"password_hashed" json:"-"` // "-" hides from JSON output, NULL for guests
	IsGuest        bool      `db:"is_guest" json:"is_guest"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest represents the data needed to register a new account.
// Password is optional: guests never set one, and a non-guest registered
// without one simply cannot log in by password later.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
	IsGuest  bool    `json:"is_guest"`
}

// LoginRequest represents the data needed to log in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by register/login/guest endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

var (
	// ErrUsernameRequired is returned when a username is empty or whitespace-only
	ErrUsernameRequired = errors.New("username is required")

	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect,
	// the user does not exist, or the account is a guest account
	ErrInvalidCredentials = errors.New("invalid credentials")
)
