package migration

import "time"

// Migration is one versioned schema change with its SQL content.
type Migration struct {
	Version     string
	Description string
	SQL         string
	FileName    string
	Checksum    string
}

// AppliedMigration records a migration that has been successfully applied.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// Status summarizes the migration state of a database.
type Status struct {
	CurrentVersion string
	PendingCount   int
	Applied        []AppliedMigration
	Pending        []Migration
}
