package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/normalize"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/upload"
)

func record(id, sku string, price float64, tolerance float64) products.Record {
	return products.Record{
		ID:        id,
		SKU:       sku,
		Brand:     "Nike",
		Price:     decimal.NewNullDecimal(decimal.NewFromFloat(price)),
		Tolerance: decimal.NewFromFloat(tolerance),
	}
}

func TestEvaluateViolationBoundary(t *testing.T) {
	// MAP 100, tolerance 5: the floor is 95. Exactly at the floor is
	// compliant; a cent under is not.
	records := []products.Record{record("p-1", "SKU1", 100, 5)}

	result := Evaluate(records, []upload.Row{{SKU: "SKU1", Price: "95.00"}})
	require.Equal(t, 1, result.Checked)
	assert.Equal(t, 0, result.Violations)
	assert.False(t, result.Annotations[0].IsViolation)

	result = Evaluate(records, []upload.Row{{SKU: "SKU1", Price: "94.99"}})
	require.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Violations)
	a := result.Annotations[0]
	assert.True(t, a.IsViolation)
	assert.True(t, a.Difference.Equal(decimal.NewFromFloat(-5.01)))
}

func TestEvaluateSalePricePrecedence(t *testing.T) {
	records := []products.Record{record("p-1", "SKU1", 100, 0)}

	result := Evaluate(records, []upload.Row{{SKU: "SKU1", Price: "110", SalePrice: "90"}})
	require.Equal(t, 1, result.Checked)

	a := result.Annotations[0]
	assert.True(t, a.IsViolation)
	assert.True(t, a.PriceUsed.Equal(decimal.NewFromInt(90)))
	assert.True(t, a.OurPrice.Equal(decimal.NewFromInt(110)))
	assert.True(t, a.SalePrice.Valid)
	assert.True(t, a.Difference.Equal(decimal.NewFromInt(-10)))
}

func TestEvaluateUnparseableSalePriceFallsBack(t *testing.T) {
	records := []products.Record{record("p-1", "SKU1", 100, 0)}

	result := Evaluate(records, []upload.Row{{SKU: "SKU1", Price: "105", SalePrice: "CALL"}})
	require.Equal(t, 1, result.Checked)
	a := result.Annotations[0]
	assert.False(t, a.SalePrice.Valid)
	assert.True(t, a.PriceUsed.Equal(decimal.NewFromInt(105)))
	assert.False(t, a.IsViolation)
}

func TestEvaluateMultiStrategyMatch(t *testing.T) {
	// Stored space form, uploaded hyphen form: the hyphen-to-space probe
	// bridges them.
	records := []products.Record{record("p-1", "AB 123", 50, 0)}

	result := Evaluate(records, []upload.Row{{SKU: "AB-123", Price: "49"}})
	require.Equal(t, 1, result.Checked)
	a := result.Annotations[0]
	assert.Equal(t, "p-1", a.RecordID)
	assert.True(t, a.IsViolation)
	assert.Equal(t, normalize.StrategyHyphenToSpace, a.Strategy)
	assert.Equal(t, "AB-123", a.MatchedSKU)
}

func TestEvaluateEndToEndScenario(t *testing.T) {
	records := []products.Record{record("p-1", "N123", 120, 0.05)}

	result := Evaluate(records, []upload.Row{{SKU: "N-123", Price: "114.00"}})
	require.Equal(t, 1, result.Checked)
	require.Equal(t, 1, result.Violations)

	a := result.Annotations[0]
	assert.True(t, a.PriceUsed.Equal(decimal.NewFromInt(114)))
	assert.True(t, a.MAPPrice.Equal(decimal.NewFromInt(120)))
	assert.True(t, a.IsViolation)
	assert.True(t, a.Difference.Equal(decimal.NewFromInt(-6)))
}

func TestEvaluateUnmatchedRowsDropped(t *testing.T) {
	records := []products.Record{record("p-1", "SKU1", 100, 0)}

	result := Evaluate(records, []upload.Row{
		{SKU: "SKU1", Price: "99"},
		{SKU: "NOPE", Price: "10"},
	})
	assert.Equal(t, 2, result.RowsIn)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Unmatched)
	require.Len(t, result.Annotations, 1)
}

func TestEvaluateSkipCounters(t *testing.T) {
	records := []products.Record{
		record("p-1", "SKU1", 100, 0),
		{ID: "p-2", SKU: "SKU2", Brand: "Nike"}, // no MAP price
	}

	result := Evaluate(records, []upload.Row{
		{SKU: "SKU1", Price: "N/A"},
		{SKU: "SKU2", Price: "10"},
	})
	assert.Equal(t, 0, result.Checked)
	assert.Equal(t, 1, result.SkippedNoPrice)
	assert.Equal(t, 1, result.SkippedNoMAP)
	assert.Empty(t, result.Annotations)
}

func TestEvaluateFirstMatchWins(t *testing.T) {
	records := []products.Record{
		record("p-1", "AB123", 100, 0),
		record("p-2", "AB 123", 90, 0),
	}

	// Candidate order starts with the raw trimmed value; "AB 123" hits p-2
	// under the default strategy before any transformed candidate is tried.
	result := Evaluate(records, []upload.Row{{SKU: "AB 123", Price: "95"}})
	require.Equal(t, 1, result.Checked)
	assert.Equal(t, "p-2", result.Annotations[0].RecordID)
}

func TestCheckPersistsAndReplacesAnnotations(t *testing.T) {
	ctx := context.Background()
	store := products.NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []products.Record{
		{SKU: "SKU1", Brand: "Nike", Price: decimal.NewNullDecimal(decimal.NewFromInt(100))},
		{SKU: "SKU2", Brand: "Nike", Price: decimal.NewNullDecimal(decimal.NewFromInt(50))},
	}))

	checker := New(store, WithLogger(&logging.Nop))

	result, err := checker.Check(ctx, []upload.Row{{SKU: "SKU1", Price: "80"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Violations)

	ann, err := store.Annotations(ctx)
	require.NoError(t, err)
	require.Len(t, ann, 1)
	assert.Equal(t, "p-1", ann[0].RecordID)

	// A new run fully replaces the previous annotation set.
	_, err = checker.Check(ctx, []upload.Row{{SKU: "SKU2", Price: "50"}})
	require.NoError(t, err)
	ann, _ = store.Annotations(ctx)
	require.Len(t, ann, 1)
	assert.Equal(t, "p-2", ann[0].RecordID)
	assert.False(t, ann[0].IsViolation)

	require.NoError(t, checker.Clear(ctx))
	ann, _ = store.Annotations(ctx)
	assert.Empty(t, ann)
}

func TestResultSummary(t *testing.T) {
	r := &Result{Checked: 10, Violations: 3, Unmatched: 2, SkippedNoPrice: 1}
	assert.Equal(t, "10 rows checked, 3 violations (2 unmatched, 1 skipped)", r.Summary())
}
