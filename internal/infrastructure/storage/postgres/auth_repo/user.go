// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/georgysavva/scany/v2/pgxscan"

	"wareflow/internal/core/apperror"
	"wareflow/internal/core/id"
	"wareflow/internal/core/security"
	"wareflow/internal/domain/auth"
	"wareflow/internal/infrastructure/storage/postgres"
)

const userColumns = `id, version, created_at, updated_at,
	username, email, password_hash, role, is_active,
	last_login_at, failed_login_attempts, locked_until`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users (
			id, version, created_at, updated_at,
			username, email, password_hash, role, is_active,
			last_login_at, failed_login_attempts, locked_until
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.Version, user.CreatedAt, user.UpdatedAt,
		user.Username, user.Email, user.PasswordHash, user.Role, user.IsActive,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("user", "username", user.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user auth.User
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, query, userID)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user auth.User
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, query, username)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// Update modifies an existing user with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	const query = `
		UPDATE users SET
			version = version + 1,
			updated_at = NOW(),
			email = $3, password_hash = $4, role = $5, is_active = $6,
			last_login_at = $7, failed_login_attempts = $8, locked_until = $9
		WHERE id = $1 AND version = $2`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.Version,
		user.Email, user.PasswordHash, user.Role, user.IsActive,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID)
	}

	return nil
}

// ExistsByUsername checks if a username is taken.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE username = $1 LIMIT 1`

	var one int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, username).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by username: %w", err)
	}

	return true, nil
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	var users []*auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// ActorExists reports whether an active user with the given ID exists.
func (r *UserRepo) ActorExists(ctx context.Context, actorID id.ID) (bool, error) {
	const query = `SELECT 1 FROM users WHERE id = $1 LIMIT 1`

	var one int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, actorID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("actor exists: %w", err)
	}

	return true, nil
}

// AdminEmail returns the email of the oldest active admin account.
func (r *UserRepo) AdminEmail(ctx context.Context) (string, error) {
	const query = `
		SELECT email FROM users
		WHERE role = $1 AND is_active = true AND email <> ''
		ORDER BY created_at
		LIMIT 1`

	var email string
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, query, security.RoleAdmin).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("admin email: %w", err)
	}

	return email, nil
}
