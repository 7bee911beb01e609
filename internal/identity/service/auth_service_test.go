package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gemini-chat/backend/internal/security"
	"gemini-chat/backend/internal/user/domain"
	"gemini-chat/backend/internal/user/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[username]; ok {
		return nil, repository.ErrUsernameTaken
	}
	r.nextID++
	u := &domain.User{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.byName[username] = u
	return u, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[username], nil
}

func newTestService() (*AuthService, *memUserRepo) {
	repo := newMemUserRepo()
	hasher := security.NewHasher(4)
	tokens := security.NewTokenProvider([]byte("test-secret"), time.Hour)
	return NewAuthService(repo, hasher, tokens), repo
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "pw1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Username = %q, want normalized %q", u.Username, "alice")
	}

	token, expiresAt, err := svc.Login(ctx, "ALICE", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token should expire in the future")
	}

	// The token subject is the normalized username.
	validator := security.NewTokenProvider([]byte("test-secret"), time.Hour)
	subject, err := validator.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if subject != "alice" {
		t.Errorf("token subject = %q, want %q", subject, "alice")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "pw"},
		{"empty password", "alice", ""},
		{"both empty", "", ""},
		{"whitespace username", "   ", "pw"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.username, tc.password); !errors.Is(err, ErrMissingFields) {
				t.Errorf("Register(%q, %q): err = %v, want ErrMissingFields", tc.username, tc.password, err)
			}
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Alice", "pw2"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate Register: err = %v, want ErrUsernameTaken", err)
	}
	if len(repo.byName) != 1 {
		t.Errorf("store should hold exactly one row, got %d", len(repo.byName))
	}
}

func TestRegister_InsertRaceMapsToTaken(t *testing.T) {
	// A concurrent registration wins between the pre-check and the insert;
	// the constraint conflict must surface as ErrUsernameTaken, not a 500.
	inner := newMemUserRepo()
	if _, err := inner.Create(context.Background(), "alice", "other-hash"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewAuthService(&raceRepo{inner: inner}, security.NewHasher(4), security.NewTokenProvider([]byte("s"), time.Hour))

	if _, err := svc.Register(context.Background(), "alice", "pw"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register during race: err = %v, want ErrUsernameTaken", err)
	}
}

// raceRepo reports the user as absent on lookup but conflicts on insert,
// modeling a registration race lost between the two calls.
type raceRepo struct {
	inner *memUserRepo
}

func (r *raceRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	return r.inner.Create(ctx, username, passwordHash)
}

func (r *raceRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, nil
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	testCases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "bob", "pw1"},
		{"wrong password", "alice", "nope"},
		{"empty password", "alice", ""},
		{"empty username", "", "pw1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login(%q, %q): err = %v, want ErrInvalidCredentials", tc.username, tc.password, err)
			}
		})
	}
}
