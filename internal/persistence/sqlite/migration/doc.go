// Package migration applies versioned SQL files to a SQLite database.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "001_create_conventions.sql") and are read from an fs.FS, usually an
// embedded directory. Applied versions and their checksums are tracked in the
// schema_migrations table; each file runs in its own transaction together with
// its bookkeeping row.
//
// Example usage:
//
//	migrations, err := migration.Scan(files, "migrations")
//	if err != nil {
//		return err
//	}
//	if err := migration.NewManager(db, logger).Run(ctx, migrations); err != nil {
//		return err
//	}
package migration
