package reconcile

import (
	"fmt"

	"github.com/mapwatch/mapwatch/pkg/products"
)

// Result is the outcome of one reconciliation run. Annotations holds one
// entry per uploaded row that matched a stored record and carried comparable
// prices; the counters account for every other row.
type Result struct {
	Annotations []products.Annotation

	// RowsIn is the total uploaded row count.
	RowsIn int

	// Checked counts rows that produced an annotation.
	Checked int

	// Violations counts annotations flagged below the tolerance floor.
	Violations int

	// Unmatched counts rows whose SKU hit nothing in the store under any
	// candidate form.
	Unmatched int

	// SkippedNoPrice counts matched rows whose own price failed to parse.
	SkippedNoPrice int

	// SkippedNoMAP counts matched rows whose record carries no MAP price.
	SkippedNoMAP int
}

// Summary returns a human-readable one-liner for the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d rows checked, %d violations (%d unmatched, %d skipped)",
		r.Checked, r.Violations, r.Unmatched, r.SkippedNoPrice+r.SkippedNoMAP)
}
