package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Manager orchestrates the migration process.
type Manager struct {
	executor *executor
	logger   *slog.Logger
}

// NewManager returns a Manager applying migrations to db.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		executor: &executor{db: db, now: time.Now},
		logger:   logger.With("component", "migration"),
	}
}

// Run applies every pending migration in version order. Applied files must
// keep their checksum, and the available versions must be contiguous.
func (m *Manager) Run(ctx context.Context, migrations []Migration) error {
	if err := m.executor.initializeVersionTable(ctx); err != nil {
		return err
	}

	pending, err := m.Pending(ctx, migrations)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.DebugContext(ctx, "schema up to date", "available", len(migrations))
		return nil
	}

	for i, migration := range pending {
		started := time.Now()
		if err := m.executor.execute(ctx, migration); err != nil {
			m.logger.ErrorContext(ctx, "migration failed", "version", migration.Version, "file", migration.FilePath, "error", err)
			return err
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(pending)),
			"duration", time.Since(started),
		)
	}
	return nil
}

// Pending returns the migrations not yet recorded in schema_migrations.
func (m *Manager) Pending(ctx context.Context, migrations []Migration) ([]Migration, error) {
	if err := validateSequence(migrations); err != nil {
		return nil, err
	}

	applied, err := m.executor.appliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	available := make(map[string]Migration, len(migrations))
	for _, migration := range migrations {
		available[migration.Version] = migration
	}

	done := make(map[string]bool, len(applied))
	for _, row := range applied {
		migration, ok := available[row.Version]
		if !ok {
			return nil, NewMigrationError(row.Version, "", "validate sequence",
				fmt.Errorf("%w: applied migration %s not found in available migrations", ErrVersionConflict, row.Version))
		}
		if row.Checksum != migration.Checksum {
			return nil, NewMigrationError(row.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		done[row.Version] = true
	}

	var pending []Migration
	for _, migration := range migrations {
		if !done[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Applied lists the recorded migrations.
func (m *Manager) Applied(ctx context.Context) ([]AppliedMigration, error) {
	if err := m.executor.initializeVersionTable(ctx); err != nil {
		return nil, err
	}
	return m.executor.appliedMigrations(ctx)
}

// validateSequence ensures there are no gaps in migration version numbers.
func validateSequence(migrations []Migration) error {
	for i := 1; i < len(migrations); i++ {
		previous, current := migrations[i-1].number(), migrations[i].number()
		if current != previous+1 {
			return NewMigrationError(migrations[i].Version, migrations[i].FilePath, "validate sequence",
				fmt.Errorf("%w: missing migration version %03d in sequence", ErrVersionConflict, previous+1))
		}
	}
	return nil
}
