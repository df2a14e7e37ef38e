package products

import "context"

// Store is the record store contract the import pipeline and reconciliation
// engine work against. Implementations must assign Record.ID on insert and
// keep it stable across UpdateField.
type Store interface {
	// Clear removes every record and annotation. Runs before every import.
	Clear(ctx context.Context) error

	// ReplaceAll atomically replaces the entire store contents.
	ReplaceAll(ctx context.Context, records []Record) error

	// Upsert inserts a batch of records, assigning identifiers. Existing
	// records are untouched; the batch succeeds or fails as a unit.
	Upsert(ctx context.Context, records []Record) error

	// All returns every record in insertion order.
	All(ctx context.Context) ([]Record, error)

	// UpdateField sets one canonical field on one record.
	UpdateField(ctx context.Context, id, field, value string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// SetAnnotations replaces the annotation set from a reconciliation run.
	SetAnnotations(ctx context.Context, annotations []Annotation) error

	// Annotations returns the current annotation set.
	Annotations(ctx context.Context) ([]Annotation, error)

	// ClearAnnotations drops the annotation overlay, keeping records.
	ClearAnnotations(ctx context.Context) error
}
