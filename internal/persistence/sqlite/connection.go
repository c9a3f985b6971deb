package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/immersion-facile/convention-core/internal/persistence"
	_ "modernc.org/sqlite"
)

// Options tunes the SQLite connection.
type Options struct {
	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, ...).
	JournalMode string
	// MaxOpenConns caps the pool; in-memory databases always use one connection.
	MaxOpenConns int
}

// DefaultOptions returns the settings used by Open.
func DefaultOptions() Options {
	return Options{
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		MaxOpenConns: 4,
	}
}

func openDB(dsn string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: DSN cannot be empty")
	}

	memory := isMemoryDSN(dsn)
	db, err := sql.Open("sqlite", withPragmas(dsn, opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	if memory {
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if !memory && opts.JournalMode != "" {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA journal_mode = %s", opts.JournalMode)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: set journal mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}
	return db, nil
}

// withPragmas appends the per-connection pragmas to the DSN so every pooled
// connection gets them.
func withPragmas(dsn string, opts Options) string {
	pragmas := []string{"foreign_keys(1)"}
	if opts.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	}

	values := url.Values{}
	for _, pragma := range pragmas {
		name, _, _ := strings.Cut(pragma, "(")
		if strings.Contains(dsn, name) {
			continue
		}
		values.Add("_pragma", pragma)
	}
	if len(values) == 0 {
		return dsn
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + values.Encode()
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// withTransaction executes fn within a transaction, rolling back when it
// returns an error or panics.
func withTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

// mapError maps SQLite errors to persistence layer errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	message := err.Error()
	switch {
	case strings.Contains(message, "UNIQUE constraint failed"),
		strings.Contains(message, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(message, "CHECK constraint failed"),
		strings.Contains(message, "NOT NULL constraint failed"),
		strings.Contains(message, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	default:
		return err
	}
}
