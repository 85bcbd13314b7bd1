package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/schedule"
)

// dateColumn is the storage format for conference day dates.
const dateColumn = "2006-01-02"

// ConferenceRepository implements persistence.ConferenceRepository using SQLite.
type ConferenceRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewConferenceRepository creates a new SQLite conference repository.
func NewConferenceRepository(pool *ConnectionPool) *ConferenceRepository {
	return &ConferenceRepository{pool: pool, mapper: NewErrorMapper()}
}

// CreateConference inserts a conference with its full planning structure.
func (r *ConferenceRepository) CreateConference(ctx context.Context, conference persistence.Conference) error {
	if conference.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if conference.CreatedAt.IsZero() {
		conference.CreatedAt = now
	}
	if conference.UpdatedAt.IsZero() {
		conference.UpdatedAt = now
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conferences (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			conference.ID, conference.Name, timeColumn(conference.CreatedAt), timeColumn(conference.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, room := range conference.Rooms {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO rooms (id, conference_id, name, capacity, is_session_room) VALUES (?, ?, ?, ?, ?)`,
				room.ID, conference.ID, room.Name, room.Capacity, boolColumn(room.IsSessionRoom),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}

		for _, st := range conference.SessionTypes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO session_types (id, conference_id, name, duration, max_speakers) VALUES (?, ?, ?, ?, ?)`,
				st.ID, conference.ID, st.Name, st.Duration, st.MaxSpeakers,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}

		for _, track := range conference.Tracks {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO tracks (id, conference_id, name, color) VALUES (?, ?, ?, ?)`,
				track.ID, conference.ID, track.Name, track.Color,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}

		for _, day := range conference.Days {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO conference_days (id, conference_id, date, day_index, begin_time, end_time) VALUES (?, ?, ?, ?, ?, ?)`,
				day.ID, conference.ID, day.Date.UTC().Format(dateColumn), day.Index, day.BeginTime, day.EndTime,
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
			for position, roomID := range day.DisabledRoomIDs {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO day_disabled_rooms (day_id, room_id, position) VALUES (?, ?, ?)`,
					day.ID, roomID, position,
				)
				if err != nil {
					return r.mapper.MapError(err)
				}
			}
			if err := insertSlots(ctx, tx, day.ID, day.Slots); err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// GetConference loads a conference with its days, slots, rooms, session types
// and tracks.
func (r *ConferenceRepository) GetConference(ctx context.Context, id string) (persistence.Conference, error) {
	var conference persistence.Conference

	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM conferences WHERE id = ?`, id)

	var createdAt, updatedAt string
	if err := row.Scan(&conference.ID, &conference.Name, &createdAt, &updatedAt); err != nil {
		return persistence.Conference{}, r.mapper.MapError(err)
	}
	var err error
	if conference.CreatedAt, err = parseTimeColumn(createdAt); err != nil {
		return persistence.Conference{}, err
	}
	if conference.UpdatedAt, err = parseTimeColumn(updatedAt); err != nil {
		return persistence.Conference{}, err
	}

	if conference.Rooms, err = r.loadRooms(ctx, id); err != nil {
		return persistence.Conference{}, err
	}
	if conference.SessionTypes, err = r.loadSessionTypes(ctx, id); err != nil {
		return persistence.Conference{}, err
	}
	if conference.Tracks, err = r.loadTracks(ctx, id); err != nil {
		return persistence.Conference{}, err
	}
	if conference.Days, err = r.loadDays(ctx, id); err != nil {
		return persistence.Conference{}, err
	}
	return conference, nil
}

// ListConferences returns every stored conference with its structure.
func (r *ConferenceRepository) ListConferences(ctx context.Context) ([]persistence.Conference, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `SELECT id FROM conferences ORDER BY created_at`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	conferences := make([]persistence.Conference, 0, len(ids))
	for _, id := range ids {
		conference, err := r.GetConference(ctx, id)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, conference)
	}
	return conferences, nil
}

// ReplaceDaySlots overwrites the slot list of one day in a single transaction.
func (r *ConferenceRepository) ReplaceDaySlots(ctx context.Context, conferenceID, dayID string, slots []schedule.Slot) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx,
			`SELECT conference_id FROM conference_days WHERE id = ?`, dayID).Scan(&owner)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if owner != conferenceID {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM slots WHERE day_id = ?`, dayID); err != nil {
			return r.mapper.MapError(err)
		}
		if err := insertSlots(ctx, tx, dayID, slots); err != nil {
			return r.mapper.MapError(err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE conferences SET updated_at = ? WHERE id = ?`,
			timeColumn(time.Now().UTC()), conferenceID,
		)
		return r.mapper.MapError(err)
	})
}

func insertSlots(ctx context.Context, tx *sql.Tx, dayID string, slots []schedule.Slot) error {
	for position, slot := range slots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO slots (id, day_id, start_time, end_time, duration, room_id, slot_type_id, session_type_id, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			slot.ID, dayID, slot.StartTime, slot.EndTime, slot.Duration,
			slot.RoomID, slot.SlotTypeID, slot.SessionTypeID, position,
		)
		if err != nil {
			return err
		}
		for overflowPosition, roomID := range slot.OverflowRoomIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO slot_overflow_rooms (slot_id, room_id, position) VALUES (?, ?, ?)`,
				slot.ID, roomID, overflowPosition,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *ConferenceRepository) loadRooms(ctx context.Context, conferenceID string) ([]schedule.Room, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, capacity, is_session_room FROM rooms WHERE conference_id = ? ORDER BY name, id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rooms []schedule.Room
	for rows.Next() {
		var room schedule.Room
		var isSessionRoom int
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &isSessionRoom); err != nil {
			return nil, err
		}
		room.IsSessionRoom = isSessionRoom != 0
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *ConferenceRepository) loadSessionTypes(ctx context.Context, conferenceID string) ([]schedule.SessionType, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, duration, max_speakers FROM session_types WHERE conference_id = ? ORDER BY name, id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessionTypes []schedule.SessionType
	for rows.Next() {
		var st schedule.SessionType
		if err := rows.Scan(&st.ID, &st.Name, &st.Duration, &st.MaxSpeakers); err != nil {
			return nil, err
		}
		sessionTypes = append(sessionTypes, st)
	}
	return sessionTypes, rows.Err()
}

func (r *ConferenceRepository) loadTracks(ctx context.Context, conferenceID string) ([]schedule.Track, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, color FROM tracks WHERE conference_id = ? ORDER BY name, id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var tracks []schedule.Track
	for rows.Next() {
		var track schedule.Track
		if err := rows.Scan(&track.ID, &track.Name, &track.Color); err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

func (r *ConferenceRepository) loadDays(ctx context.Context, conferenceID string) ([]schedule.Day, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, date, day_index, begin_time, end_time FROM conference_days
		 WHERE conference_id = ? ORDER BY date, day_index, id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var days []schedule.Day
	for rows.Next() {
		var day schedule.Day
		var date string
		if err := rows.Scan(&day.ID, &date, &day.Index, &day.BeginTime, &day.EndTime); err != nil {
			return nil, err
		}
		parsed, err := time.ParseInLocation(dateColumn, date, time.UTC)
		if err != nil {
			return nil, err
		}
		day.Date = parsed
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		disabled, err := r.loadDisabledRooms(ctx, days[i].ID)
		if err != nil {
			return nil, err
		}
		days[i].DisabledRoomIDs = disabled

		slots, err := r.loadSlots(ctx, days[i].ID)
		if err != nil {
			return nil, err
		}
		days[i].Slots = slots
	}
	return days, nil
}

func (r *ConferenceRepository) loadDisabledRooms(ctx context.Context, dayID string) ([]string, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT room_id FROM day_disabled_rooms WHERE day_id = ? ORDER BY position`, dayID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var roomIDs []string
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			return nil, err
		}
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs, rows.Err()
}

func (r *ConferenceRepository) loadSlots(ctx context.Context, dayID string) ([]schedule.Slot, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, start_time, end_time, duration, room_id, slot_type_id, session_type_id
		 FROM slots WHERE day_id = ? ORDER BY position`, dayID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var slots []schedule.Slot
	for rows.Next() {
		var slot schedule.Slot
		if err := rows.Scan(&slot.ID, &slot.StartTime, &slot.EndTime, &slot.Duration,
			&slot.RoomID, &slot.SlotTypeID, &slot.SessionTypeID); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range slots {
		overflow, err := r.loadOverflowRooms(ctx, slots[i].ID)
		if err != nil {
			return nil, err
		}
		slots[i].OverflowRoomIDs = overflow
	}
	return slots, nil
}

func (r *ConferenceRepository) loadOverflowRooms(ctx context.Context, slotID string) ([]string, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT room_id FROM slot_overflow_rooms WHERE slot_id = ? ORDER BY position`, slotID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var roomIDs []string
	for rows.Next() {
		var roomID string
		if err := rows.Scan(&roomID); err != nil {
			return nil, err
		}
		roomIDs = append(roomIDs, roomID)
	}
	return roomIDs, rows.Err()
}

// SlotTypeRepository implements persistence.SlotTypeRepository using SQLite.
type SlotTypeRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSlotTypeRepository creates a new SQLite slot type repository.
func NewSlotTypeRepository(pool *ConnectionPool) *SlotTypeRepository {
	return &SlotTypeRepository{pool: pool, mapper: NewErrorMapper()}
}

// UpsertSlotType inserts or updates a global slot type.
func (r *SlotTypeRepository) UpsertSlotType(ctx context.Context, slotType schedule.SlotType) error {
	if slotType.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.DB().ExecContext(ctx,
		`INSERT INTO slot_types (id, label, is_session) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET label = excluded.label, is_session = excluded.is_session`,
		slotType.ID, slotType.Label, boolColumn(slotType.IsSession),
	)
	return r.mapper.MapError(err)
}

// ListSlotTypes returns the global slot type reference list.
func (r *SlotTypeRepository) ListSlotTypes(ctx context.Context) ([]schedule.SlotType, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, label, is_session FROM slot_types ORDER BY label, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var slotTypes []schedule.SlotType
	for rows.Next() {
		var st schedule.SlotType
		var isSession int
		if err := rows.Scan(&st.ID, &st.Label, &isSession); err != nil {
			return nil, err
		}
		st.IsSession = isSession != 0
		slotTypes = append(slotTypes, st)
	}
	return slotTypes, rows.Err()
}

func boolColumn(value bool) int {
	if value {
		return 1
	}
	return 0
}
