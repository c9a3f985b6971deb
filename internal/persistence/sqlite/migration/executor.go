package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	Checksum      string
	AppliedAt     time.Time
	ExecutionTime time.Duration
}

// executor runs migrations against a SQLite database.
type executor struct {
	db  *sql.DB
	now func() time.Time
}

func (e *executor) initializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT NOT NULL,
			execution_time_ms INTEGER NOT NULL DEFAULT 0
		)`

	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewMigrationError("", "", "create schema_migrations table", err)
	}
	return nil
}

func (e *executor) appliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `
		SELECT version, checksum, applied_at, execution_time_ms
		FROM schema_migrations
		ORDER BY CAST(version AS INTEGER) ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewMigrationError("", "", "list applied migrations", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			row             AppliedMigration
			appliedAt       string
			executionTimeMs int64
		)
		if err := rows.Scan(&row.Version, &row.Checksum, &appliedAt, &executionTimeMs); err != nil {
			return nil, NewMigrationError("", "", "scan applied migration", err)
		}
		row.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
		row.ExecutionTime = time.Duration(executionTimeMs) * time.Millisecond
		applied = append(applied, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewMigrationError("", "", "iterate applied migrations", err)
	}
	return applied, nil
}

// execute runs every statement of migration and records it in one transaction.
func (e *executor) execute(ctx context.Context, migration Migration) (err error) {
	started := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewMigrationError(migration.Version, migration.FilePath, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback: %v)", err, rollbackErr)
			}
		}
	}()

	for i, stmt := range splitStatements(migration.SQL) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return NewMigrationError(migration.Version, migration.FilePath,
				fmt.Sprintf("execute statement %d", i+1), fmt.Errorf("%w: %v", ErrMigrationFailed, execErr))
		}
	}

	const insertSQL = `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)`

	finished := e.now()
	if _, execErr := tx.ExecContext(ctx, insertSQL,
		migration.Version,
		finished.UTC().Format(time.RFC3339Nano),
		migration.Checksum,
		finished.Sub(started).Milliseconds(),
	); execErr != nil {
		return NewMigrationError(migration.Version, migration.FilePath, "record migration", execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return NewMigrationError(migration.Version, migration.FilePath, "commit transaction", commitErr)
	}
	return nil
}
