package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/conference-planner/internal/persistence"
)

// SpeakerRepository implements persistence.SpeakerRepository using SQLite.
type SpeakerRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSpeakerRepository creates a new SQLite speaker repository.
func NewSpeakerRepository(pool *ConnectionPool) *SpeakerRepository {
	return &SpeakerRepository{pool: pool, mapper: NewErrorMapper()}
}

// UpsertSpeaker writes a speaker participation record and its associated
// session and unavailability sets.
func (r *SpeakerRepository) UpsertSpeaker(ctx context.Context, speaker persistence.ConferenceSpeaker) error {
	if speaker.ConferenceID == "" || speaker.PersonID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conference_speakers (conference_id, person_id, display_name) VALUES (?, ?, ?)
			 ON CONFLICT(conference_id, person_id) DO UPDATE SET display_name = excluded.display_name`,
			speaker.ConferenceID, speaker.PersonID, speaker.DisplayName,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		if err := replaceSpeakerSet(ctx, tx, "speaker_unavailable_slots", "slot_id",
			speaker.ConferenceID, speaker.PersonID, speaker.UnavailableSlotIDs); err != nil {
			return r.mapper.MapError(err)
		}
		if err := replaceSpeakerSet(ctx, tx, "speaker_sessions", "session_id",
			speaker.ConferenceID, speaker.PersonID, speaker.SessionIDs); err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// GetSpeaker loads one speaker participation record.
func (r *SpeakerRepository) GetSpeaker(ctx context.Context, conferenceID, personID string) (persistence.ConferenceSpeaker, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT conference_id, person_id, display_name FROM conference_speakers
		 WHERE conference_id = ? AND person_id = ?`, conferenceID, personID)

	var speaker persistence.ConferenceSpeaker
	if err := row.Scan(&speaker.ConferenceID, &speaker.PersonID, &speaker.DisplayName); err != nil {
		return persistence.ConferenceSpeaker{}, r.mapper.MapError(err)
	}

	var err error
	if speaker.UnavailableSlotIDs, err = r.loadSpeakerSet(ctx, "speaker_unavailable_slots", "slot_id", conferenceID, personID); err != nil {
		return persistence.ConferenceSpeaker{}, err
	}
	if speaker.SessionIDs, err = r.loadSpeakerSet(ctx, "speaker_sessions", "session_id", conferenceID, personID); err != nil {
		return persistence.ConferenceSpeaker{}, err
	}
	return speaker, nil
}

// ListSpeakers returns every speaker participating in a conference.
func (r *SpeakerRepository) ListSpeakers(ctx context.Context, conferenceID string) ([]persistence.ConferenceSpeaker, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT person_id FROM conference_speakers WHERE conference_id = ? ORDER BY person_id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var personIDs []string
	for rows.Next() {
		var personID string
		if err := rows.Scan(&personID); err != nil {
			return nil, err
		}
		personIDs = append(personIDs, personID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	speakers := make([]persistence.ConferenceSpeaker, 0, len(personIDs))
	for _, personID := range personIDs {
		speaker, err := r.GetSpeaker(ctx, conferenceID, personID)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, speaker)
	}
	return speakers, nil
}

// ReplaceUnavailableSlots overwrites a speaker's unavailable slot set.
func (r *SpeakerRepository) ReplaceUnavailableSlots(ctx context.Context, conferenceID, personID string, slotIDs []string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM conference_speakers WHERE conference_id = ? AND person_id = ?`,
			conferenceID, personID).Scan(&exists)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}
		if err := replaceSpeakerSet(ctx, tx, "speaker_unavailable_slots", "slot_id",
			conferenceID, personID, slotIDs); err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

func replaceSpeakerSet(ctx context.Context, tx *sql.Tx, table, column, conferenceID, personID string, values []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE conference_id = ? AND person_id = ?`,
		conferenceID, personID); err != nil {
		return err
	}
	for _, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (conference_id, person_id, `+column+`) VALUES (?, ?, ?)`,
			conferenceID, personID, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *SpeakerRepository) loadSpeakerSet(ctx context.Context, table, column, conferenceID, personID string) ([]string, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT `+column+` FROM `+table+` WHERE conference_id = ? AND person_id = ? ORDER BY `+column,
		conferenceID, personID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}
