package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"gemini-chat/backend/internal/user/domain"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// SQLRepository is a user repository over database/sql. It works against both
// store backends: sqlite accepts the $N placeholder syntax natively and both
// support INSERT ... RETURNING, so the queries are shared.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository returns a user repository that uses the given db for persistence.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a user and returns the stored record with its assigned ID.
// Returns ErrUsernameTaken when the UNIQUE constraint on username rejects the
// insert, regardless of which backend raised it.
func (r *SQLRepository) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u := &domain.User{Username: username, PasswordHash: passwordHash}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, username, passwordHash).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// GetByUsername returns the user with the given username, or nil if not found.
// It returns an error only for store failures, not for missing rows.
func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// isUniqueViolation reports whether err is a uniqueness-constraint rejection
// from either backend: SQLSTATE 23505 from Postgres, or sqlite's
// "UNIQUE constraint failed" result code text.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
