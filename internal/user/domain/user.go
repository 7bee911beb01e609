package domain

import (
	"errors"
	"strings"
)

// User is the core user entity. The ID is assigned by the store and increases
// monotonically; the username is unique and stored lowercased. Users are
// created once at registration and never updated or deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// NormalizeUsername trims surrounding whitespace and lowercases the username.
// All lookups and inserts operate on the normalized form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
