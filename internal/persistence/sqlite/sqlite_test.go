package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/immersion-facile/convention-core/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "conventions.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return storage
}

func newRecord(id, status string) persistence.Convention {
	return persistence.Convention{
		ID:             id,
		Status:         status,
		InternshipKind: "immersion",
		AgencyID:       "agency-1",
		DateStart:      "2022-06-13",
		DateEnd:        "2022-06-17",
		Payload:        []byte(fmt.Sprintf(`{"id":%q,"status":%q}`, id, status)),
	}
}

func TestStorage_MigrateIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestConventionRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	created := time.Date(2022, 6, 1, 8, 0, 0, 0, time.UTC)
	record := newRecord("conv-1", "DRAFT")
	record.CreatedAt = created

	stored, err := storage.CreateConvention(ctx, record)
	if err != nil {
		t.Fatalf("CreateConvention failed: %v", err)
	}
	if stored.Version != 1 || !stored.UpdatedAt.Equal(created) {
		t.Fatalf("unexpected stored record %+v", stored)
	}

	fetched, err := storage.GetConvention(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetConvention failed: %v", err)
	}
	if fetched.Status != "DRAFT" || fetched.Version != 1 || string(fetched.Payload) != string(record.Payload) {
		t.Fatalf("unexpected fetched record %+v", fetched)
	}
	if !fetched.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %s, got %s", created, fetched.CreatedAt)
	}

	if _, err := storage.CreateConvention(ctx, record); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := storage.GetConvention(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConventionRepository_RejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	if _, err := storage.CreateConvention(ctx, newRecord("", "DRAFT")); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for empty id, got %v", err)
	}

	broken := newRecord("conv-json", "DRAFT")
	broken.Payload = []byte("{not json")
	if _, err := storage.CreateConvention(ctx, broken); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for invalid payload, got %v", err)
	}
}

func TestConventionRepository_OptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	current := time.Date(2022, 6, 2, 9, 0, 0, 0, time.UTC)
	storage.now = func() time.Time { return current }

	if _, err := storage.CreateConvention(ctx, newRecord("conv-1", "DRAFT")); err != nil {
		t.Fatalf("CreateConvention failed: %v", err)
	}

	current = current.Add(time.Hour)
	next := newRecord("conv-1", "READY_TO_SIGN")
	updated, err := storage.UpdateConvention(ctx, next, 1)
	if err != nil {
		t.Fatalf("UpdateConvention failed: %v", err)
	}
	if updated.Version != 2 || updated.Status != "READY_TO_SIGN" || !updated.UpdatedAt.Equal(current) {
		t.Fatalf("unexpected updated record %+v", updated)
	}

	if _, err := storage.UpdateConvention(ctx, next, 1); !errors.Is(err, persistence.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for stale version, got %v", err)
	}
	if _, err := storage.UpdateConvention(ctx, newRecord("missing", "DRAFT"), 1); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	fetched, err := storage.GetConvention(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetConvention failed: %v", err)
	}
	if fetched.Version != 2 || fetched.Status != "READY_TO_SIGN" {
		t.Fatalf("stale update must not be applied, got %+v", fetched)
	}
}

func TestConventionRepository_List(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	base := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []persistence.Convention{
		newRecord("conv-b", "DRAFT"),
		newRecord("conv-a", "IN_REVIEW"),
		newRecord("conv-c", "VALIDATED"),
	}
	records[2].AgencyID = "agency-2"
	for i, record := range records {
		record.CreatedAt = base.Add(time.Duration(i) * 500 * time.Millisecond)
		if _, err := storage.CreateConvention(ctx, record); err != nil {
			t.Fatalf("CreateConvention(%s) failed: %v", record.ID, err)
		}
	}

	all, err := storage.ListConventions(ctx, persistence.ConventionFilter{})
	if err != nil {
		t.Fatalf("ListConventions failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "conv-b" || all[1].ID != "conv-a" || all[2].ID != "conv-c" {
		t.Fatalf("expected creation order, got %+v", all)
	}

	filtered, err := storage.ListConventions(ctx, persistence.ConventionFilter{
		Statuses: []string{"IN_REVIEW", "VALIDATED"},
		AgencyID: "agency-1",
	})
	if err != nil {
		t.Fatalf("ListConventions failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "conv-a" {
		t.Fatalf("unexpected filtered result %+v", filtered)
	}
}

func TestWithPragmas(t *testing.T) {
	t.Parallel()

	opts := Options{BusyTimeout: 2 * time.Second}
	if got := withPragmas("data.db", opts); got != "data.db?_pragma=foreign_keys%281%29&_pragma=busy_timeout%282000%29" {
		t.Fatalf("unexpected DSN %q", got)
	}
	if got := withPragmas("file:data.db?_pragma=foreign_keys(1)", Options{}); got != "file:data.db?_pragma=foreign_keys(1)" {
		t.Fatalf("expected existing pragma to be kept, got %q", got)
	}
}
