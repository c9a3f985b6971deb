package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migration.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/001_create_items.sql": {Data: []byte(`
-- items table
CREATE TABLE items (id TEXT PRIMARY KEY, name TEXT NOT NULL);
CREATE INDEX idx_items_name ON items(name);
`)},
		"migrations/002_add_notes.sql": {Data: []byte(`ALTER TABLE items ADD COLUMN notes TEXT;`)},
		"migrations/README.md":         {Data: []byte("ignored")},
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	migrations, err := Scan(sampleFS(), "migrations")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "001" || migrations[0].Description != "create items" {
		t.Fatalf("unexpected first migration %+v", migrations[0])
	}
	if migrations[0].Checksum == "" || migrations[0].Checksum == migrations[1].Checksum {
		t.Fatalf("expected distinct checksums")
	}
}

func TestScan_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		files fstest.MapFS
		want  error
	}{
		"bad name": {
			files: fstest.MapFS{"migrations/create.sql": {Data: []byte("SELECT 1;")}},
			want:  ErrInvalidMigrationFile,
		},
		"comments only": {
			files: fstest.MapFS{"migrations/001_empty.sql": {Data: []byte("-- nothing\n")}},
			want:  ErrInvalidMigrationFile,
		},
		"duplicate version": {
			files: fstest.MapFS{
				"migrations/001_a.sql":  {Data: []byte("SELECT 1;")},
				"migrations/0001_b.sql": {Data: []byte("SELECT 2;")},
			},
			want: ErrDuplicateVersion,
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Scan(tc.files, "migrations"); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestManager_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	manager := NewManager(db, quietLogger())

	migrations, err := Scan(sampleFS(), "migrations")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if err := manager.Run(ctx, migrations); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO items (id, name, notes) VALUES ('1', 'a', 'b')`); err != nil {
		t.Fatalf("expected migrated schema: %v", err)
	}

	// A second run is a no-op.
	if err := manager.Run(ctx, migrations); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	applied, err := manager.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied returned error: %v", err)
	}
	if len(applied) != 2 || applied[0].Version != "001" || applied[1].Version != "002" {
		t.Fatalf("unexpected applied migrations %+v", applied)
	}
}

func TestManager_RejectsEditedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	manager := NewManager(db, quietLogger())

	migrations, err := Scan(sampleFS(), "migrations")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if err := manager.Run(ctx, migrations); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	migrations[0].Checksum = "edited"
	if err := manager.Run(ctx, migrations); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestManager_RejectsGaps(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"migrations/001_a.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"migrations/003_c.sql": {Data: []byte("CREATE TABLE c (id INTEGER);")},
	}
	migrations, err := Scan(files, "migrations")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if err := NewManager(openTestDB(t), quietLogger()).Run(context.Background(), migrations); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestManager_RollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	files := fstest.MapFS{
		"migrations/001_broken.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); CREATE TABLE broken (;")},
	}
	migrations, err := Scan(files, "migrations")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	manager := NewManager(db, quietLogger())
	if err := manager.Run(ctx, migrations); !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok'`).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected the partial migration to be rolled back")
	}
	if applied, _ := manager.Applied(ctx); len(applied) != 0 {
		t.Fatalf("expected nothing recorded, got %+v", applied)
	}
}
