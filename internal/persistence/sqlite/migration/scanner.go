package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version     string // Version identifier (e.g., "001", "002")
	Description string // Human-readable description of the migration
	SQL         string // SQL statements to execute
	FilePath    string // Path to the migration file within its fs.FS
	Checksum    string // SHA-256 of the file content
}

// number returns the numeric value of the version.
func (m Migration) number() int {
	n, _ := strconv.Atoi(m.Version)
	return n
}

// Pattern matches {version}_{description}.sql with a numeric version.
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Scan reads every migration file in dir of fsys, ordered by version.
func Scan(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, NewMigrationError("", dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[int]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		filePath := path.Join(dir, entry.Name())
		migration, err := parseFile(fsys, filePath)
		if err != nil {
			return nil, err
		}

		if existing, ok := seen[migration.number()]; ok {
			return nil, NewMigrationError(migration.Version, filePath, "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s", ErrDuplicateVersion, migration.Version, existing, entry.Name()))
		}
		seen[migration.number()] = entry.Name()

		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].number() < migrations[j].number()
	})
	return migrations, nil
}

// ValidateFileName checks if a migration file follows the naming convention.
func ValidateFileName(filename string) error {
	if !fileNamePattern.MatchString(filename) {
		return fmt.Errorf("%w: filename '%s' does not match pattern '{version}_{description}.sql'",
			ErrInvalidMigrationFile, filename)
	}
	return nil
}

func parseFile(fsys fs.FS, filePath string) (Migration, error) {
	filename := path.Base(filePath)
	if err := ValidateFileName(filename); err != nil {
		return Migration{}, NewMigrationError("", filePath, "validate filename", err)
	}
	matches := fileNamePattern.FindStringSubmatch(filename)
	version, description := matches[1], matches[2]

	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return Migration{}, NewMigrationError(version, filePath, "read file", err)
	}
	if len(splitStatements(string(content))) == 0 {
		return Migration{}, NewMigrationError(version, filePath, "validate content",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	sum := sha256.Sum256(content)
	return Migration{
		Version:     version,
		Description: strings.ReplaceAll(description, "_", " "),
		SQL:         string(content),
		FilePath:    filePath,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

// splitStatements splits SQL content on semicolons and drops comment lines.
func splitStatements(sql string) []string {
	var statements []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
