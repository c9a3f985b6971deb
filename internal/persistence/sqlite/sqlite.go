package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/immersion-facile/convention-core/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is the SQLite backed persistence layer.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to the database at dsn with DefaultOptions.
func Open(dsn string) (*Storage, error) {
	return OpenWithOptions(dsn, DefaultOptions(), nil)
}

// OpenWithOptions connects to the database at dsn.
func OpenWithOptions(dsn string, opts Options, logger *slog.Logger) (*Storage, error) {
	db, err := openDB(dsn, opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection is alive.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	migrations, err := migration.Scan(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: scan migrations: %w", err)
	}
	if err := migration.NewManager(s.db, s.logger).Run(ctx, migrations); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}
