package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/conference-planner/internal/persistence"
)

// AuthSessionRepository implements persistence.AuthSessionRepository using
// SQLite.
type AuthSessionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAuthSessionRepository creates a new SQLite auth session repository.
func NewAuthSessionRepository(pool *ConnectionPool) *AuthSessionRepository {
	return &AuthSessionRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateAuthSession inserts a session record and returns the stored value.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session persistence.AuthSession) (persistence.AuthSession, error) {
	if session.ID == "" || session.Token == "" {
		return persistence.AuthSession{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO auth_sessions (id, user_id, token, expires_at, created_at, updated_at, revoked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Token, timeColumn(session.ExpiresAt),
		timeColumn(session.CreatedAt), timeColumn(session.UpdatedAt), nullableTime(session.RevokedAt),
	)
	if err != nil {
		return persistence.AuthSession{}, r.mapper.MapError(err)
	}
	return session, nil
}

// GetAuthSession loads a session by its token.
func (r *AuthSessionRepository) GetAuthSession(ctx context.Context, token string) (persistence.AuthSession, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, user_id, token, expires_at, created_at, updated_at, revoked_at
		 FROM auth_sessions WHERE token = ?`, token)
	return r.scanAuthSession(row)
}

// RevokeAuthSession marks the session revoked and returns the updated record.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, token string, revokedAt time.Time) (persistence.AuthSession, error) {
	result, err := r.pool.DB().ExecContext(ctx,
		`UPDATE auth_sessions SET revoked_at = ?, updated_at = ? WHERE token = ? AND revoked_at IS NULL`,
		timeColumn(revokedAt), timeColumn(revokedAt), token,
	)
	if err != nil {
		return persistence.AuthSession{}, r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.AuthSession{}, err
	}
	if affected == 0 {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	return r.GetAuthSession(ctx, token)
}

// DeleteExpiredAuthSessions removes sessions expired before reference.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	_, err := r.pool.DB().ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < ?`, timeColumn(reference))
	return r.mapper.MapError(err)
}

func (r *AuthSessionRepository) scanAuthSession(row rowScanner) (persistence.AuthSession, error) {
	var session persistence.AuthSession
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	err := row.Scan(&session.ID, &session.UserID, &session.Token,
		&expiresAt, &createdAt, &updatedAt, &revokedAt)
	if err != nil {
		return persistence.AuthSession{}, r.mapper.MapError(err)
	}
	if session.ExpiresAt, err = parseTimeColumn(expiresAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.CreatedAt, err = parseTimeColumn(createdAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.UpdatedAt, err = parseTimeColumn(updatedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	return session, nil
}
