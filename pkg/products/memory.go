package products

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/normalize"
	"github.com/mapwatch/mapwatch/pkg/profiles"
)

// MemoryStore is a thread-safe in-memory Store. It backs tests and
// short-lived interactive sessions; durable deployments use the SQLite
// store.
type MemoryStore struct {
	mu          sync.RWMutex
	records     []Record
	annotations []Annotation
	nextID      int
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Clear removes every record and annotation.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.annotations = nil
	return nil
}

// ReplaceAll atomically replaces the entire store contents.
func (s *MemoryStore) ReplaceAll(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.annotations = nil
	s.insertLocked(records)
	return nil
}

// Upsert inserts a batch of records, assigning identifiers.
func (s *MemoryStore) Upsert(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(records)
	return nil
}

func (s *MemoryStore) insertLocked(records []Record) {
	for _, r := range records {
		r.ID = fmt.Sprintf("p-%d", s.nextID)
		s.nextID++
		s.records = append(s.records, r)
	}
}

// All returns every record in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// UpdateField sets one canonical field on one record. Unknown field names
// land in the record's Extra map.
func (s *MemoryStore) UpdateField(_ context.Context, id, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		applyField(&s.records[i], field, value)
		return nil
	}
	return errors.NewNotFoundError("product", id)
}

// applyField routes a field-name/value pair onto a record, shared by store
// implementations.
func applyField(r *Record, field, value string) {
	switch field {
	case profiles.FieldSKU:
		r.SKU = strings.TrimSpace(value)
	case profiles.FieldName:
		r.Name = value
	case profiles.FieldPrice:
		r.Price = normalize.Price(value)
	case profiles.FieldColor:
		r.Color = value
	case profiles.FieldCategory:
		r.Category = value
	case profiles.FieldGender:
		r.Gender = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string, 1)
		}
		r.Extra[field] = value
	}
}

// SetAnnotations replaces the annotation set from a reconciliation run.
func (s *MemoryStore) SetAnnotations(_ context.Context, annotations []Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = make([]Annotation, len(annotations))
	copy(s.annotations, annotations)
	return nil
}

// Annotations returns the current annotation set.
func (s *MemoryStore) Annotations(_ context.Context) ([]Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out, nil
}

// ClearAnnotations drops the annotation overlay, keeping records.
func (s *MemoryStore) ClearAnnotations(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = nil
	return nil
}
