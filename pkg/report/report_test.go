package report

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapwatch/mapwatch/pkg/products"
)

func rec(id, brand string) products.Record {
	return products.Record{ID: id, Brand: brand, SKU: id}
}

func TestSummarizeRecordsOnly(t *testing.T) {
	records := []products.Record{
		rec("p-1", "Nike"), rec("p-2", "Nike"), rec("p-3", "Nike"),
		rec("p-4", "Adidas"),
		rec("p-5", "Puma"),
	}

	s := Summarize(records, nil)
	assert.Equal(t, 5, s.TotalRecords)
	assert.False(t, s.Checked)
	require.Len(t, s.ByBrand, 3)
	assert.Equal(t, BrandCount{Brand: "Nike", Count: 3}, s.ByBrand[0])
	// Equal counts order by brand name.
	assert.Equal(t, "Adidas", s.ByBrand[1].Brand)
	assert.Equal(t, "Puma", s.ByBrand[2].Brand)
}

func TestSummarizeWithAnnotations(t *testing.T) {
	records := []products.Record{
		rec("p-1", "Nike"), rec("p-2", "Nike"), rec("p-3", "Adidas"),
	}
	annotations := []products.Annotation{
		{RecordID: "p-1", IsViolation: true, Difference: decimal.NewFromFloat(-6.00)},
		{RecordID: "p-2", IsViolation: false, Difference: decimal.NewFromInt(2)},
		{RecordID: "p-3", IsViolation: true, Difference: decimal.NewFromFloat(-3.50)},
	}

	s := Summarize(records, annotations)
	assert.True(t, s.Checked)
	assert.Equal(t, 3, s.CheckedRows)
	assert.Equal(t, 2, s.Violations)
	// Compliant rows do not contribute to savings at risk.
	assert.True(t, s.SavingsAtRisk.Equal(decimal.NewFromFloat(9.50)))
	require.Len(t, s.ViolationsByBrand, 2)
	assert.Equal(t, 1, s.ViolationsByBrand[0].Count)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)
	assert.Equal(t, 0, s.TotalRecords)
	assert.Empty(t, s.ByBrand)
	assert.False(t, s.Checked)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	store := products.NewMemoryStore()
	require.NoError(t, store.Upsert(ctx, []products.Record{
		{Brand: "Nike", SKU: "N1"},
		{Brand: "Nike", SKU: "N2"},
	}))
	require.NoError(t, store.SetAnnotations(ctx, []products.Annotation{
		{RecordID: "p-1", IsViolation: true, Difference: decimal.NewFromInt(-5)},
	}))

	s, err := Build(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalRecords)
	assert.True(t, s.Checked)
	assert.Equal(t, 1, s.Violations)
	assert.Equal(t, "Nike", s.ViolationsByBrand[0].Brand)
}
