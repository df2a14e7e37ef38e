// Package report aggregates the product store and its annotation overlay
// into the summary counts the CLI and callers present. All aggregations are
// pure reductions over the in-memory set.
package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/products"
)

// BrandCount is one brand's tally, used for both record and violation
// rollups.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// Summary is the aggregate view of the store.
type Summary struct {
	TotalRecords int          `json:"total_records"`
	ByBrand      []BrandCount `json:"by_brand"`

	// Checked is true when a non-empty annotation overlay exists; the
	// remaining fields are zero without one.
	Checked bool `json:"checked"`

	CheckedRows int `json:"checked_rows,omitempty"`
	Violations  int `json:"violations,omitempty"`

	// SavingsAtRisk is the sum of absolute differences over violations: the
	// total amount of underpricing a vendor could flag.
	SavingsAtRisk decimal.Decimal `json:"savings_at_risk"`

	ViolationsByBrand []BrandCount `json:"violations_by_brand,omitempty"`
}

// Build loads the store and summarizes it.
func Build(ctx context.Context, store products.Store) (*Summary, error) {
	records, err := store.All(ctx)
	if err != nil {
		return nil, errors.WrapStore("scan", err)
	}
	annotations, err := store.Annotations(ctx)
	if err != nil {
		return nil, errors.WrapStore("scan", err)
	}
	return Summarize(records, annotations), nil
}

// Summarize reduces records and annotations to a Summary. Brand rollups sort
// by count descending, brand name ascending on ties, so output order is
// stable.
func Summarize(records []products.Record, annotations []products.Annotation) *Summary {
	s := &Summary{TotalRecords: len(records)}

	brandOf := make(map[string]string, len(records))
	perBrand := make(map[string]int)
	for _, r := range records {
		perBrand[r.Brand]++
		brandOf[r.ID] = r.Brand
	}
	s.ByBrand = sortCounts(perBrand)

	if len(annotations) == 0 {
		return s
	}

	s.Checked = true
	s.CheckedRows = len(annotations)
	violations := make(map[string]int)
	for _, a := range annotations {
		if !a.IsViolation {
			continue
		}
		s.Violations++
		s.SavingsAtRisk = s.SavingsAtRisk.Add(a.Difference.Abs())
		violations[brandOf[a.RecordID]]++
	}
	s.ViolationsByBrand = sortCounts(violations)
	return s
}

func sortCounts(m map[string]int) []BrandCount {
	out := make([]BrandCount, 0, len(m))
	for brand, count := range m {
		out = append(out, BrandCount{Brand: brand, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Brand < out[j].Brand
	})
	return out
}
