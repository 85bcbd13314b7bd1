package sqlite

import (
	"context"
	"embed"
	"io/fs"

	"github.com/example/conference-planner/internal/logging"
	"github.com/example/conference-planner/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite-backed repositories over one connection pool.
type Storage struct {
	pool *ConnectionPool

	Conferences  *ConferenceRepository
	SlotTypes    *SlotTypeRepository
	Sessions     *SessionRepository
	Allocations  *AllocationRepository
	Speakers     *SpeakerRepository
	Users        *UserRepository
	AuthSessions *AuthSessionRepository
}

// Open connects to the SQLite database at dsn and constructs the repository
// set. Call Migrate before using the repositories on a fresh database.
func Open(dsn string) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:         pool,
		Conferences:  NewConferenceRepository(pool),
		SlotTypes:    NewSlotTypeRepository(pool),
		Sessions:     NewSessionRepository(pool),
		Allocations:  NewAllocationRepository(pool),
		Speakers:     NewSpeakerRepository(pool),
		Users:        NewUserRepository(pool),
		AuthSessions: NewAuthSessionRepository(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Migrate applies pending schema migrations. The logger attached to ctx, if
// any, receives migration progress.
func (s *Storage) Migrate(ctx context.Context) error {
	root, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	manager := migration.NewManager(
		migration.NewScanner(root),
		migration.NewExecutor(s.pool.DB()),
		logging.FromContext(ctx),
	)
	return manager.Run(ctx)
}
