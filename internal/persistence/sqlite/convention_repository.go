package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/immersion-facile/convention-core/internal/persistence"
)

const conventionColumns = `id, status, internship_kind, agency_id, date_start, date_end, payload, version, created_at, updated_at`

// CreateConvention inserts a new convention at version 1.
func (s *Storage) CreateConvention(ctx context.Context, convention persistence.Convention) (persistence.Convention, error) {
	if convention.ID == "" {
		return persistence.Convention{}, fmt.Errorf("%w: convention id is empty", persistence.ErrConstraintViolation)
	}

	now := s.now().UTC()
	if convention.CreatedAt.IsZero() {
		convention.CreatedAt = now
	}
	if convention.UpdatedAt.IsZero() {
		convention.UpdatedAt = convention.CreatedAt
	}
	convention.Version = 1

	const query = `
		INSERT INTO conventions (` + conventionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		convention.ID,
		convention.Status,
		convention.InternshipKind,
		convention.AgencyID,
		convention.DateStart,
		convention.DateEnd,
		string(convention.Payload),
		convention.Version,
		formatTime(convention.CreatedAt),
		formatTime(convention.UpdatedAt),
	)
	if err != nil {
		return persistence.Convention{}, mapError(err)
	}
	return cloneConvention(convention), nil
}

// GetConvention retrieves a convention by ID.
func (s *Storage) GetConvention(ctx context.Context, id string) (persistence.Convention, error) {
	query := `SELECT ` + conventionColumns + ` FROM conventions WHERE id = ?`
	convention, err := scanConvention(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Convention{}, mapError(err)
	}
	return convention, nil
}

// UpdateConvention replaces the stored convention when its version matches
// expectedVersion.
func (s *Storage) UpdateConvention(ctx context.Context, convention persistence.Convention, expectedVersion int64) (persistence.Convention, error) {
	if convention.ID == "" {
		return persistence.Convention{}, fmt.Errorf("%w: convention id is empty", persistence.ErrConstraintViolation)
	}

	var updated persistence.Convention
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var (
			currentVersion int64
			createdAt      string
		)
		err := tx.QueryRowContext(ctx, `SELECT version, created_at FROM conventions WHERE id = ?`, convention.ID).
			Scan(&currentVersion, &createdAt)
		if err != nil {
			return mapError(err)
		}
		if currentVersion != expectedVersion {
			return fmt.Errorf("%w: convention %s is at version %d, not %d",
				persistence.ErrVersionConflict, convention.ID, currentVersion, expectedVersion)
		}

		convention.Version = currentVersion + 1
		convention.CreatedAt = parseTime(createdAt)
		convention.UpdatedAt = s.now().UTC()

		const query = `
			UPDATE conventions
			SET status = ?, internship_kind = ?, agency_id = ?, date_start = ?, date_end = ?,
				payload = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`

		result, err := tx.ExecContext(ctx, query,
			convention.Status,
			convention.InternshipKind,
			convention.AgencyID,
			convention.DateStart,
			convention.DateEnd,
			string(convention.Payload),
			convention.Version,
			formatTime(convention.UpdatedAt),
			convention.ID,
			currentVersion,
		)
		if err != nil {
			return mapError(err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return persistence.ErrVersionConflict
		}

		updated = cloneConvention(convention)
		return nil
	})
	if err != nil {
		return persistence.Convention{}, err
	}
	return updated, nil
}

// ListConventions returns the conventions matching filter ordered by creation time.
func (s *Storage) ListConventions(ctx context.Context, filter persistence.ConventionFilter) ([]persistence.Convention, error) {
	var (
		clauses []string
		args    []any
	)
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.AgencyID != "" {
		clauses = append(clauses, "agency_id = ?")
		args = append(args, filter.AgencyID)
	}

	query := `SELECT ` + conventionColumns + ` FROM conventions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var conventions []persistence.Convention
	for rows.Next() {
		convention, err := scanConvention(rows)
		if err != nil {
			return nil, mapError(err)
		}
		conventions = append(conventions, convention)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return conventions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConvention(row rowScanner) (persistence.Convention, error) {
	var (
		convention persistence.Convention
		payload    string
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(
		&convention.ID,
		&convention.Status,
		&convention.InternshipKind,
		&convention.AgencyID,
		&convention.DateStart,
		&convention.DateEnd,
		&payload,
		&convention.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Convention{}, persistence.ErrNotFound
		}
		return persistence.Convention{}, err
	}
	convention.Payload = []byte(payload)
	convention.CreatedAt = parseTime(createdAt)
	convention.UpdatedAt = parseTime(updatedAt)
	return convention, nil
}

func cloneConvention(convention persistence.Convention) persistence.Convention {
	out := convention
	out.Payload = append([]byte(nil), convention.Payload...)
	return out
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
