// Package repository persists users to the relational credential store.
package repository

import (
	"context"
	"errors"

	"gemini-chat/backend/internal/user/domain"
)

// ErrUsernameTaken is returned by Create when the username already exists.
// The store's UNIQUE constraint guarantees at most one concurrent insert for
// the same username succeeds; the losers get this error.
var ErrUsernameTaken = errors.New("username already taken")

// Repository is the minimal user store needed by the auth service.
type Repository interface {
	// Create inserts a user and returns the stored record with its assigned ID.
	// Returns ErrUsernameTaken on a uniqueness conflict.
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	// GetByUsername returns the user with the given (normalized) username, or
	// nil if not found. It returns an error only for store failures, not for
	// missing rows.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
