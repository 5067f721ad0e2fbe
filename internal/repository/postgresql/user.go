package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	u.id, u.email, u.username, u.full_name, u.password_hash, u.role,
	u.oauth_provider, u.oauth_provider_id, u.created_at, u.updated_at,
	(SELECT e.id FROM employees e WHERE e.user_id = u.id)`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.OAuthProvider,
		&u.OAuthProviderID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH u AS (
			INSERT INTO users (email, username, full_name, password_hash, role, oauth_provider, oauth_provider_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + userColumns + ` FROM u
	`

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.Email,
		newUser.Username,
		newUser.FullName,
		newUser.PasswordHash,
		newUser.Role,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	))
	if err != nil {
		switch {
		case database.ConstraintViolated(err, "users_email_key"):
			return user.User{}, user.ErrUserEmailExists
		case database.ConstraintViolated(err, "users_username_key"):
			return user.User{}, user.ErrUsernameExists
		case database.ConstraintViolated(err, "users_oauth_provider_id_key"):
			return user.User{}, user.ErrOAuthProviderIDExists
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return scanUser(q.QueryRow(ctx, query, id))
}

// GetByEmail implements user.UserRepository. Emails compare case-insensitively.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`
	return scanUser(q.QueryRow(ctx, query, email))
}

// ExistsByEmailOrUsername implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2))`,
		email, username,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH u AS (
			UPDATE users
			SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
			WHERE LOWER(email) = LOWER($2)
			RETURNING *
		)
		SELECT ` + userColumns + ` FROM u
	`

	updated, err := scanUser(q.QueryRow(ctx, query, googleID, email))
	if database.ConstraintViolated(err, "") {
		return user.User{}, user.ErrOAuthProviderIDExists
	}
	return updated, err
}

// UpdateRole implements user.UserRepository.
func (r *userRepositoryImpl) UpdateRole(ctx context.Context, userID string, role user.Role) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
