package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/products"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mapwatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(brand, sku string, price string) products.Record {
	r := products.Record{
		Brand:      brand,
		SKU:        sku,
		Name:       sku + " product",
		Tolerance:  decimal.NewFromFloat(0.05),
		ImportedAt: utc.Now(),
	}
	if price != "" {
		d, _ := decimal.NewFromString(price)
		r.Price = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return r
}

func TestUpsertAndAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	recs := []products.Record{
		testRecord("Nike", "N123", "120"),
		testRecord("Nike", "N456", ""),
	}
	recs[1].Extra = map[string]string{"promotion": "MAP"}
	require.NoError(t, s.Upsert(ctx, recs))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "p-1", all[0].ID)
	assert.True(t, all[0].Price.Valid)
	assert.True(t, all[0].Price.Decimal.Equal(decimal.NewFromInt(120)))
	assert.True(t, all[0].Tolerance.Equal(decimal.NewFromFloat(0.05)))
	assert.False(t, all[0].ImportedAt.IsZero())

	// Null price round-trips as null, extra fields survive.
	assert.False(t, all[1].Price.Valid)
	assert.Equal(t, "MAP", all[1].Extra["promotion"])

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReplaceAllDropsOldGeneration(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, []products.Record{testRecord("Nike", "N123", "120")}))
	require.NoError(t, s.SetAnnotations(ctx, []products.Annotation{{
		RecordID:  "p-1",
		OurPrice:  decimal.NewFromInt(100),
		MAPPrice:  decimal.NewFromInt(120),
		PriceUsed: decimal.NewFromInt(100),
	}}))

	require.NoError(t, s.ReplaceAll(ctx, []products.Record{testRecord("Adidas", "A1", "50")}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Adidas", all[0].Brand)

	ann, err := s.Annotations(ctx)
	require.NoError(t, err)
	assert.Empty(t, ann)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, []products.Record{testRecord("Nike", "N123", "120")}))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUpdateField(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Upsert(ctx, []products.Record{testRecord("Nike", "N123", "120")}))

	require.NoError(t, s.UpdateField(ctx, "p-1", "price", "$99.50"))
	require.NoError(t, s.UpdateField(ctx, "p-1", "color", "black"))
	require.NoError(t, s.UpdateField(ctx, "p-1", "mapEndDate", "12/31/2026"))

	all, err := s.All(ctx)
	require.NoError(t, err)
	got := all[0]
	require.True(t, got.Price.Valid)
	assert.True(t, got.Price.Decimal.Equal(decimal.NewFromFloat(99.50)))
	assert.Equal(t, "black", got.Color)
	assert.Equal(t, "12/31/2026", got.Extra["mapEndDate"])

	// Unparseable price nulls out the stored value.
	require.NoError(t, s.UpdateField(ctx, "p-1", "price", "N/A"))
	all, _ = s.All(ctx)
	assert.False(t, all[0].Price.Valid)

	err = s.UpdateField(ctx, "p-42", "price", "1")
	assert.True(t, errors.IsNotFound(err))

	err = s.UpdateField(ctx, "bogus", "price", "1")
	assert.True(t, errors.IsNotFound(err))
}

func TestAnnotationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sale := decimal.NullDecimal{Decimal: decimal.NewFromInt(90), Valid: true}
	in := []products.Annotation{{
		RecordID:    "p-1",
		OurPrice:    decimal.NewFromInt(110),
		SalePrice:   sale,
		MAPPrice:    decimal.NewFromInt(100),
		PriceUsed:   decimal.NewFromInt(90),
		IsViolation: true,
		Difference:  decimal.NewFromInt(-10),
		MatchedSKU:  "AB 123",
		Strategy:    "hyphen-to-space",
	}}
	require.NoError(t, s.SetAnnotations(ctx, in))

	got, err := s.Annotations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	a := got[0]
	assert.True(t, a.IsViolation)
	assert.True(t, a.SalePrice.Valid)
	assert.True(t, a.SalePrice.Decimal.Equal(decimal.NewFromInt(90)))
	assert.True(t, a.Difference.Equal(decimal.NewFromInt(-10)))
	assert.Equal(t, "AB 123", a.MatchedSKU)

	require.NoError(t, s.ClearAnnotations(ctx))
	got, err = s.Annotations(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
