package testfixtures

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/persistence"
)

// MemoryConventions is an in-memory application.ConventionRepository with the
// same version semantics as the SQLite store.
type MemoryConventions struct {
	mu      sync.Mutex
	records map[string]application.ConventionRecord
	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryConventions returns a repository seeded with records.
func NewMemoryConventions(records ...application.ConventionRecord) *MemoryConventions {
	m := &MemoryConventions{records: make(map[string]application.ConventionRecord, len(records))}
	for _, record := range records {
		m.records[record.Convention.ID] = cloneRecord(record)
	}
	return m
}

func (m *MemoryConventions) CreateConvention(ctx context.Context, record application.ConventionRecord) (application.ConventionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return application.ConventionRecord{}, m.Err
	}
	if _, ok := m.records[record.Convention.ID]; ok {
		return application.ConventionRecord{}, persistence.ErrDuplicate
	}
	record.Version = 1
	m.records[record.Convention.ID] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (m *MemoryConventions) GetConvention(ctx context.Context, id string) (application.ConventionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return application.ConventionRecord{}, m.Err
	}
	record, ok := m.records[id]
	if !ok {
		return application.ConventionRecord{}, persistence.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (m *MemoryConventions) UpdateConvention(ctx context.Context, record application.ConventionRecord, expectedVersion int64) (application.ConventionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return application.ConventionRecord{}, m.Err
	}
	current, ok := m.records[record.Convention.ID]
	if !ok {
		return application.ConventionRecord{}, persistence.ErrNotFound
	}
	if current.Version != expectedVersion {
		return application.ConventionRecord{}, persistence.ErrVersionConflict
	}
	record.Version = current.Version + 1
	record.CreatedAt = current.CreatedAt
	m.records[record.Convention.ID] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (m *MemoryConventions) ListConventions(ctx context.Context, filter application.ConventionRepositoryFilter) ([]application.ConventionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []application.ConventionRecord
	for _, record := range m.records {
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, record.Convention.Status) {
			continue
		}
		if filter.AgencyID != "" && record.Convention.AgencyID != filter.AgencyID {
			continue
		}
		out = append(out, cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Convention.ID < out[j].Convention.ID
	})
	return out, nil
}

// Len reports how many conventions are stored.
func (m *MemoryConventions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func cloneRecord(record application.ConventionRecord) application.ConventionRecord {
	out := record
	out.Convention = record.Convention.Clone()
	return out
}
