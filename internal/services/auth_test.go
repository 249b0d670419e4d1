package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gifttable/internal/domain"
)

// fakeAdminRepo is an in-memory AdminUserRepository.
type fakeAdminRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.AdminUser
	nextID int
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{byID: make(map[string]*domain.AdminUser), nextID: 1}
}

func (f *fakeAdminRepo) Create(ctx context.Context, u *domain.AdminUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	u.ID = fmt.Sprintf("adm-%d", f.nextID)
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeAdminRepo) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAdminRepo) GetByLogin(ctx context.Context, login string) (*domain.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAdminRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// fakePasswordHasher prefixes the password instead of hashing it.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) { return "hash-" + password, nil }

func (fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err        error
	lastExpiry time.Duration
}

func (f *fakeTokenIssuer) Issue(user *domain.AdminUser, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastExpiry = expiry
	return "token-" + user.ID, nil
}

func newAuthFixture(t *testing.T) (domain.AuthService, *fakeAdminRepo, *fakeTokenIssuer, *domain.AdminUser) {
	t.Helper()
	repo := newFakeAdminRepo()
	issuer := &fakeTokenIssuer{}
	svc := NewAuthService(repo, fakePasswordHasher{}, issuer, time.Hour, testTimeout)
	admin, err := svc.Register(context.Background(), "admin", "Admin@Example.com", "secret123")
	require.NoError(t, err)
	return svc, repo, issuer, admin
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		login     string
		password  string
		issuerErr error
		wantErr   error
		wantOther bool
	}{
		{name: "by username", login: "admin", password: "secret123"},
		{name: "by email", login: "admin@example.com", password: "secret123"},
		{name: "wrong password", login: "admin", password: "nope", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown user", login: "ghost", password: "secret123", wantErr: domain.ErrInvalidCredentials},
		{name: "blank login", login: " ", password: "secret123", wantErr: domain.ErrInvalidInput},
		{name: "issuer failure", login: "admin", password: "secret123", issuerErr: errBoom, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, issuer, admin := newAuthFixture(t)
			issuer.err = tt.issuerErr

			token, user, err := svc.Login(ctx, tt.login, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "token-"+admin.ID, token)
			assert.Equal(t, admin.ID, user.ID)
			assert.Equal(t, time.Hour, issuer.lastExpiry)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "second admin", username: "helper", email: "helper@example.com", password: "secret123"},
		{name: "short username", username: "ab", email: "ab@example.com", password: "secret123", wantErr: domain.ErrInvalidInput},
		{name: "bad email", username: "helper", email: "helper", password: "secret123", wantErr: domain.ErrInvalidInput},
		{name: "short password", username: "helper", email: "helper@example.com", password: "12345", wantErr: domain.ErrInvalidInput},
		{name: "duplicate username", username: "admin", email: "other@example.com", password: "secret123", wantErr: domain.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newAuthFixture(t)
			user, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "hash-"+tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, repo, _, admin := newAuthFixture(t)
		require.NoError(t, svc.ChangePassword(ctx, admin.ID, "secret123", "newsecret"))
		stored, err := repo.GetByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash-newsecret", stored.PasswordHash)

		_, _, err = svc.Login(ctx, "admin", "newsecret")
		require.NoError(t, err)
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc, _, _, admin := newAuthFixture(t)
		err := svc.ChangePassword(ctx, admin.ID, "wrong", "newsecret")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("new password too short", func(t *testing.T) {
		svc, _, _, admin := newAuthFixture(t)
		err := svc.ChangePassword(ctx, admin.ID, "secret123", "123")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown admin", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture(t)
		err := svc.ChangePassword(ctx, "adm-404", "secret123", "newsecret")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
