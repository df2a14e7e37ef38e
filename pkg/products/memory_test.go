package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapwatch/mapwatch/pkg/errors"
)

func record(brand, sku string, price float64) Record {
	return Record{
		Brand: brand,
		SKU:   sku,
		Price: decimal.NullDecimal{Decimal: decimal.NewFromFloat(price), Valid: true},
	}
}

func TestMemoryStoreUpsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []Record{record("Nike", "N123", 120), record("Nike", "N456", 80)}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p-1", all[0].ID)
	assert.Equal(t, "p-2", all[1].ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []Record{record("Nike", "N123", 120)}))
	require.NoError(t, s.SetAnnotations(ctx, []Annotation{{RecordID: "p-1"}}))

	require.NoError(t, s.ReplaceAll(ctx, []Record{record("Adidas", "A1", 50)}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Adidas", all[0].Brand)

	// Replace wipes the annotation overlay too.
	ann, err := s.Annotations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ann)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Upsert(ctx, []Record{record("Nike", "N123", 120)}))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStoreUpdateField(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, []Record{record("Nike", "N123", 120)}))

	require.NoError(t, s.UpdateField(ctx, "p-1", "price", "$99.50"))
	require.NoError(t, s.UpdateField(ctx, "p-1", "color", "black"))
	require.NoError(t, s.UpdateField(ctx, "p-1", "promotion", "MAP"))

	all, err := s.All(ctx)
	require.NoError(t, err)
	got := all[0]
	require.True(t, got.Price.Valid)
	assert.True(t, got.Price.Decimal.Equal(decimal.NewFromFloat(99.50)))
	assert.Equal(t, "black", got.Color)
	assert.Equal(t, "MAP", got.Extra["promotion"])

	// Unparseable price becomes null, not an error.
	require.NoError(t, s.UpdateField(ctx, "p-1", "price", "N/A"))
	all, _ = s.All(ctx)
	assert.False(t, all[0].Price.Valid)

	err = s.UpdateField(ctx, "p-99", "price", "1")
	assert.True(t, errors.IsNotFound(err))
}

func TestMemoryStoreAnnotations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SetAnnotations(ctx, []Annotation{{RecordID: "p-1", IsViolation: true}}))
	ann, err := s.Annotations(ctx)
	require.NoError(t, err)
	require.Len(t, ann, 1)
	assert.True(t, ann[0].IsViolation)

	// Rerun replaces, clear drops.
	require.NoError(t, s.SetAnnotations(ctx, []Annotation{{RecordID: "p-2"}}))
	ann, _ = s.Annotations(ctx)
	require.Len(t, ann, 1)
	assert.Equal(t, "p-2", ann[0].RecordID)

	require.NoError(t, s.ClearAnnotations(ctx))
	ann, _ = s.Annotations(ctx)
	assert.Empty(t, ann)
}

func TestEffectiveFloor(t *testing.T) {
	r := record("Nike", "N123", 100)
	r.Tolerance = decimal.NewFromInt(5)

	floor, ok := r.EffectiveFloor()
	require.True(t, ok)
	assert.True(t, floor.Equal(decimal.NewFromInt(95)))

	r.Price = decimal.NullDecimal{}
	_, ok = r.EffectiveFloor()
	assert.False(t, ok)
}
