package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gifttable/internal/domain"
)

type authService struct {
	userRepo       domain.AdminUserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService for admin accounts.
func NewAuthService(userRepo domain.AdminUserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry, timeout time.Duration) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
	}
}

func (s *authService) Login(ctx context.Context, login, password string) (string, *domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, invalidInput("username and password are required")
	}
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load admin: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if len(username) < minUsernameLen {
		return nil, invalidInput("username must be at least %d characters", minUsernameLen)
	}
	if !emailRegexp.MatchString(email) {
		return nil, invalidInput("valid email is required")
	}
	if len(password) < minPasswordLen {
		return nil, invalidInput("password must be at least %d characters", minPasswordLen)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.NewAdminUser(username, email, hash, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username or email already registered", domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if currentPassword == "" {
		return invalidInput("current password is required")
	}
	if len(newPassword) < minPasswordLen {
		return invalidInput("new password must be at least %d characters", minPasswordLen)
	}
	user, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, adminID, hash)
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.userRepo.GetByID(ctx, id)
}
