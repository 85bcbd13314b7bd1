package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/conference-planner/internal/persistence"
)

// AllocationRepository implements persistence.AllocationRepository using
// SQLite. Unique indexes on (day_id, slot_id, room_id) and session_id back
// the one-allocation-per-triple and one-slot-per-session invariants; writes
// run in single transactions so concurrent editors cannot break them.
type AllocationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewAllocationRepository creates a new SQLite allocation repository.
func NewAllocationRepository(pool *ConnectionPool) *AllocationRepository {
	return &AllocationRepository{pool: pool, mapper: NewErrorMapper()}
}

const allocationColumns = `id, conference_id, day_id, slot_id, room_id, session_id, last_updated`

// PutAllocation inserts the allocation after removing, in the same
// transaction, any row holding the same (day, slot, room) triple and any row
// holding the same session. Displaced rows are returned for status
// compensation.
func (r *AllocationRepository) PutAllocation(ctx context.Context, alloc persistence.SessionAllocation) ([]persistence.SessionAllocation, error) {
	if alloc.ID == "" || alloc.SessionID == "" {
		return nil, persistence.ErrConstraintViolation
	}
	if alloc.LastUpdated.IsZero() {
		alloc.LastUpdated = time.Now().UTC()
	}

	var displaced []persistence.SessionAllocation
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+allocationColumns+` FROM session_allocations
			 WHERE (day_id = ? AND slot_id = ? AND room_id = ?) OR session_id = ?`,
			alloc.DayID, alloc.SlotID, alloc.RoomID, alloc.SessionID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		displaced, err = collectAllocations(rows)
		if err != nil {
			return err
		}

		for _, existing := range displaced {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM session_allocations WHERE id = ?`, existing.ID); err != nil {
				return r.mapper.MapError(err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_allocations (`+allocationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			alloc.ID, alloc.ConferenceID, alloc.DayID, alloc.SlotID, alloc.RoomID,
			alloc.SessionID, timeColumn(alloc.LastUpdated),
		)
		return r.mapper.MapError(err)
	})
	if err != nil {
		return nil, err
	}
	return displaced, nil
}

// GetAllocation loads one allocation by id.
func (r *AllocationRepository) GetAllocation(ctx context.Context, id string) (persistence.SessionAllocation, error) {
	row := r.pool.DB().QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM session_allocations WHERE id = ?`, id)
	alloc, err := scanAllocation(row)
	if err != nil {
		return persistence.SessionAllocation{}, r.mapper.MapError(err)
	}
	return alloc, nil
}

// ListAllocations returns every allocation of a conference.
func (r *AllocationRepository) ListAllocations(ctx context.Context, conferenceID string) ([]persistence.SessionAllocation, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM session_allocations
		 WHERE conference_id = ? ORDER BY day_id, slot_id, room_id`, conferenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return collectAllocations(rows)
}

// ListAllocationsForSession returns the allocations referencing one session.
// The unique session index keeps this at most one row in steady state, but
// transient duplicates from historical data are still surfaced.
func (r *AllocationRepository) ListAllocationsForSession(ctx context.Context, sessionID string) ([]persistence.SessionAllocation, error) {
	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM session_allocations WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	return collectAllocations(rows)
}

// DeleteAllocation removes one allocation row.
func (r *AllocationRepository) DeleteAllocation(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx,
		`DELETE FROM session_allocations WHERE id = ?`, id)
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

// DeleteAllocations removes a batch of allocation rows in one transaction.
// Either every row is removed or none are, so status compensation never runs
// against a half-cleared batch.
func (r *AllocationRepository) DeleteAllocations(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM session_allocations WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return r.mapper.MapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected != int64(len(ids)) {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func collectAllocations(rows *sql.Rows) ([]persistence.SessionAllocation, error) {
	defer rows.Close()

	var allocations []persistence.SessionAllocation
	for rows.Next() {
		alloc, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, alloc)
	}
	return allocations, rows.Err()
}

func scanAllocation(row rowScanner) (persistence.SessionAllocation, error) {
	var alloc persistence.SessionAllocation
	var lastUpdated string
	err := row.Scan(&alloc.ID, &alloc.ConferenceID, &alloc.DayID, &alloc.SlotID,
		&alloc.RoomID, &alloc.SessionID, &lastUpdated)
	if err != nil {
		return persistence.SessionAllocation{}, err
	}
	if alloc.LastUpdated, err = parseTimeColumn(lastUpdated); err != nil {
		return persistence.SessionAllocation{}, err
	}
	return alloc, nil
}
