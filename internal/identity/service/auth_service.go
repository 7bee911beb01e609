// Package service implements registration and login against the credential store.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gemini-chat/backend/internal/security"
	"gemini-chat/backend/internal/user/domain"
	"gemini-chat/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrMissingFields = errors.New("username and password required")
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown username and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Tokens is the token issuer needed by Login.
type Tokens interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// AuthService implements password-only register and login. Requests are
// independent end-to-end; the only durable state is the user store.
type AuthService struct {
	users  repository.Repository
	hasher *security.Hasher
	tokens Tokens
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users repository.Repository, hasher *security.Hasher, tokens Tokens) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a user with the normalized (lowercased) username and a
// bcrypt hash of password. Returns ErrMissingFields for empty input and
// ErrUsernameTaken when the name exists, including when a concurrent
// registration wins the insert race after the pre-check passed.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login authenticates username/password and issues a bearer token whose
// subject is the normalized username. Unknown users and wrong passwords both
// return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (token string, expiresAt time.Time, err error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Username)
}
