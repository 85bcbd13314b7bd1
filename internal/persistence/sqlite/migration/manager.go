package migration

import (
	"context"
	"log/slog"
)

// Manager orchestrates scanning for pending migrations and executing them in
// order.
type Manager struct {
	scanner  *Scanner
	executor *Executor
	logger   *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(scanner *Scanner, executor *Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger}
}

// Run applies every pending migration in ascending version order. Already
// applied versions are skipped; the first failure aborts the run.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return err
	}

	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.InfoContext(ctx, "database schema is up to date")
		return nil
	}

	for _, migration := range pending {
		m.logger.InfoContext(ctx, "applying migration",
			"version", migration.Version,
			"description", migration.Description,
		)
		if err := m.executor.Execute(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				"version", migration.Version,
				"error", err,
			)
			return err
		}
	}

	m.logger.InfoContext(ctx, "migrations applied", "count", len(pending))
	return nil
}

// PendingMigrations returns the scanned migrations not yet applied, in order.
func (m *Manager) PendingMigrations(ctx context.Context) ([]Migration, error) {
	all, err := m.scanner.Scan()
	if err != nil {
		return nil, err
	}

	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, a := range applied {
		appliedSet[a.Version] = true
	}

	var pending []Migration
	for _, migration := range all {
		if !appliedSet[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// CurrentStatus reports the applied and pending migrations.
func (m *Manager) CurrentStatus(ctx context.Context) (*Status, error) {
	applied, err := m.executor.AppliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := m.PendingMigrations(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{
		PendingCount: len(pending),
		Applied:      applied,
		Pending:      pending,
	}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	return status, nil
}
