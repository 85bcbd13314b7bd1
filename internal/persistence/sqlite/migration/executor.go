package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Executor runs migrations against a SQLite database and tracks applied
// versions in the schema_migrations table.
type Executor struct {
	db *sql.DB
}

// NewExecutor constructs an Executor for the given database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if needed.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			execution_time_ms INTEGER NOT NULL,
			checksum TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return newError("", "", "initialize version table", err)
	}
	return nil
}

// Execute runs one migration inside a transaction and records it on success.
func (e *Executor) Execute(ctx context.Context, m Migration) error {
	statements := splitStatements(m.SQL)
	if len(statements) == 0 {
		return newError(m.Version, m.FileName, "parse SQL", fmt.Errorf("no SQL statements found"))
	}

	start := time.Now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return newError(m.Version, m.FileName, "begin transaction", err)
	}

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return newError(m.Version, m.FileName, fmt.Sprintf("execute statement %d (rollback failed: %v)", i+1, rbErr), execErr)
			}
			return newError(m.Version, m.FileName, fmt.Sprintf("execute statement %d", i+1), execErr)
		}
	}

	const record = `INSERT INTO schema_migrations (version, applied_at, execution_time_ms, checksum) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, record, m.Version, time.Now().UTC().Format(time.RFC3339), time.Since(start).Milliseconds(), m.Checksum); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return newError(m.Version, m.FileName, fmt.Sprintf("record migration (rollback failed: %v)", rbErr), err)
		}
		return newError(m.Version, m.FileName, "record migration", err)
	}

	if err := tx.Commit(); err != nil {
		return newError(m.Version, m.FileName, "commit", err)
	}
	return nil
}

// AppliedVersions returns all applied migrations ordered by version.
func (e *Executor) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const query = `SELECT version, applied_at, execution_time_ms FROM schema_migrations ORDER BY CAST(version AS INTEGER)`
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, newError("", "", "list applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version   string
			appliedAt string
			execMs    int64
		)
		if err := rows.Scan(&version, &appliedAt, &execMs); err != nil {
			return nil, newError(version, "", "scan applied version", err)
		}
		at, err := time.Parse(time.RFC3339, appliedAt)
		if err != nil {
			return nil, newError(version, "", "parse applied timestamp", err)
		}
		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     at,
			ExecutionTime: time.Duration(execMs) * time.Millisecond,
		})
	}
	return applied, rows.Err()
}

// splitStatements breaks a migration file into executable statements on
// semicolon boundaries, dropping comment-only and empty fragments.
func splitStatements(script string) []string {
	var statements []string
	for _, fragment := range strings.Split(script, ";") {
		var kept []string
		for _, line := range strings.Split(fragment, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			kept = append(kept, line)
		}
		if len(kept) == 0 {
			continue
		}
		statements = append(statements, strings.TrimSpace(strings.Join(kept, "\n")))
	}
	return statements
}
