package domain

import (
	"context"
	"time"
)

// AdminUser is an organizer who signs in to the admin console.
// swagger:model AdminUser
type AdminUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdminUser returns a new AdminUser with the given fields. ID is typically set by the repository on create.
func NewAdminUser(username, email, passwordHash string, createdAt time.Time) *AdminUser {
	return &AdminUser{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
}

// AdminClaims is the identity asserted by a verified admin token.
type AdminClaims struct {
	AdminID  string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PasswordHasher hashes and verifies passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed, time-limited admin tokens.
type TokenIssuer interface {
	Issue(user *AdminUser, expiry time.Duration) (string, error)
}

// TokenVerifier verifies an admin token. Every failure is reported as ErrUnauthorized.
type TokenVerifier interface {
	Verify(token string) (*AdminClaims, error)
}

// AdminUserRepository defines the interface for admin user storage
type AdminUserRepository interface {
	Create(ctx context.Context, user *AdminUser) error
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	// GetByLogin finds a user whose username or email equals login.
	GetByLogin(ctx context.Context, login string) (*AdminUser, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService defines admin authentication and account management.
type AuthService interface {
	Login(ctx context.Context, login, password string) (token string, user *AdminUser, err error)
	Register(ctx context.Context, username, email, password string) (*AdminUser, error)
	ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error
	GetByID(ctx context.Context, id string) (*AdminUser, error)
}
