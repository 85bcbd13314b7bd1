package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/conference-planner/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateSession inserts a proposed talk.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	var status, sessionTypeID, trackID sql.NullString
	var reviewAverage sql.NullFloat64
	if session.Submission != nil {
		status = sql.NullString{String: session.Submission.Status, Valid: true}
		sessionTypeID = sql.NullString{String: session.Submission.SessionTypeID, Valid: true}
		trackID = sql.NullString{String: session.Submission.TrackID, Valid: true}
		reviewAverage = sql.NullFloat64{Float64: session.Submission.ReviewAverage, Valid: true}
	}

	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO sessions (id, conference_id, title, speaker1_id, speaker2_id, speaker3_id,
		                       status, session_type_id, track_id, review_average, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.ConferenceID, session.Title,
		session.Speaker1ID, session.Speaker2ID, session.Speaker3ID,
		status, sessionTypeID, trackID, reviewAverage,
		timeColumn(session.CreatedAt), timeColumn(session.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetSession loads one session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, conference_id, title, speaker1_id, speaker2_id, speaker3_id,
		        status, session_type_id, track_id, review_average, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	return r.scanSession(row)
}

// ListSessions returns the sessions proposed to a conference.
func (r *SessionRepository) ListSessions(ctx context.Context, conferenceID string) ([]persistence.Session, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, conference_id, title, speaker1_id, speaker2_id, speaker3_id,
		        status, session_type_id, track_id, review_average, created_at, updated_at
		 FROM sessions WHERE conference_id = ? ORDER BY created_at, id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UpdateSessionStatus sets the submission status of an already submitted
// session. Sessions without a submission record are not updatable.
func (r *SessionRepository) UpdateSessionStatus(ctx context.Context, id string, status string) error {
	result, err := r.pool.DB().ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status IS NOT NULL`,
		status, timeColumn(time.Now().UTC()), id,
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

// DeleteSession removes a session.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var status, sessionTypeID, trackID sql.NullString
	var reviewAverage sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(&session.ID, &session.ConferenceID, &session.Title,
		&session.Speaker1ID, &session.Speaker2ID, &session.Speaker3ID,
		&status, &sessionTypeID, &trackID, &reviewAverage, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if status.Valid {
		session.Submission = &persistence.Submission{
			Status:        status.String,
			SessionTypeID: sessionTypeID.String,
			TrackID:       trackID.String,
			ReviewAverage: reviewAverage.Float64,
		}
	}
	if session.CreatedAt, err = parseTimeColumn(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTimeColumn(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
