package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/conference-planner/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateUser inserts an organizer account with its password hash.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User, passwordHash string) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, is_admin, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, boolColumn(user.IsAdmin), passwordHash,
		timeColumn(user.CreatedAt), timeColumn(user.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateUser updates the mutable attributes of an account.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.pool.DB().ExecContext(ctx,
		`UPDATE users SET email = ?, display_name = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		user.Email, user.DisplayName, boolColumn(user.IsAdmin), timeColumn(time.Now().UTC()), user.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser loads one account by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at, updated_at FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

// GetUserCredentialsByEmail loads the authentication attributes for an email.
func (r *UserRepository) GetUserCredentialsByEmail(ctx context.Context, email string) (persistence.UserCredentials, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at, updated_at,
		        password_hash, disabled, failed_attempts, last_failed_at
		 FROM users WHERE email = ?`, email)

	var creds persistence.UserCredentials
	var createdAt, updatedAt string
	var disabled int
	var lastFailedAt sql.NullString

	err := row.Scan(&creds.User.ID, &creds.User.Email, &creds.User.DisplayName, &creds.User.IsAdmin,
		&createdAt, &updatedAt, &creds.PasswordHash, &disabled, &creds.FailedAttempts, &lastFailedAt)
	if err != nil {
		return persistence.UserCredentials{}, r.mapper.MapError(err)
	}

	creds.Disabled = disabled != 0
	if creds.User.CreatedAt, err = parseTimeColumn(createdAt); err != nil {
		return persistence.UserCredentials{}, err
	}
	if creds.User.UpdatedAt, err = parseTimeColumn(updatedAt); err != nil {
		return persistence.UserCredentials{}, err
	}
	if creds.LastFailedAt, err = parseNullableTime(lastFailedAt); err != nil {
		return persistence.UserCredentials{}, err
	}
	return creds, nil
}

// RecordFailedAttempt increments the failed login counter.
func (r *UserRepository) RecordFailedAttempt(ctx context.Context, userID string, at time.Time) error {
	_, err := r.pool.DB().ExecContext(ctx,
		`UPDATE users SET failed_attempts = failed_attempts + 1, last_failed_at = ? WHERE id = ?`,
		timeColumn(at), userID,
	)
	return r.mapper.MapError(err)
}

// ResetFailedAttempts clears the failed login counter after a success.
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, userID string) error {
	_, err := r.pool.DB().ExecContext(ctx,
		`UPDATE users SET failed_attempts = 0, last_failed_at = NULL WHERE id = ?`, userID)
	return r.mapper.MapError(err)
}

// ListUsers returns every account ordered by email.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, email, display_name, is_admin, created_at, updated_at FROM users ORDER BY email`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes an account.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var isAdmin int
	var createdAt, updatedAt string

	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &isAdmin, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}
	user.IsAdmin = isAdmin != 0
	if user.CreatedAt, err = parseTimeColumn(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTimeColumn(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
