package postgres

import (
	"context"
	"database/sql"

	"gifttable/internal/domain"
)

const adminUserColumns = `id, username, email, password_hash, created_at`

type adminUserRepository struct {
	DB *sql.DB
}

func NewAdminUserRepository(db *sql.DB) domain.AdminUserRepository {
	return &adminUserRepository{
		DB: db,
	}
}

func scanAdminUser(row rowScanner) (*domain.AdminUser, error) {
	u := &domain.AdminUser{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts the user. A taken username or email yields domain.ErrDuplicate.
func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.CreatedAt).
		Scan(&user.ID)
	return translateError(err)
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = $1`
	u, err := scanAdminUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *adminUserRepository) GetByLogin(ctx context.Context, login string) (*domain.AdminUser, error) {
	query := `
		SELECT ` + adminUserColumns + `
		FROM admin_users
		WHERE username = $1 OR LOWER(email) = LOWER($1)
		LIMIT 1
	`
	u, err := scanAdminUser(r.DB.QueryRowContext(ctx, query, login))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *adminUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
