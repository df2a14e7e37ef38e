package importer

import (
	"fmt"

	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/profiles"
)

// Result is the outcome of importing one source: success with counts, an
// explicit skip, or a failure with its reason. Failures are values here, not
// suppressed exceptions, so the run summary can attribute them.
type Result struct {
	SourceID   profiles.ID
	SourceName string

	// Skipped is true for disabled profiles and profiles without a URL.
	Skipped bool

	// RowsIn counts data rows seen after header slicing and filtering.
	RowsIn int

	// RowsPersisted counts records written; rows without a usable SKU are
	// the usual difference.
	RowsPersisted int

	Err error
}

// OK reports whether the source imported successfully.
func (r *Result) OK() bool {
	return !r.Skipped && r.Err == nil
}

// Summary returns a human-readable one-liner for this source.
func (r *Result) Summary() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("%s: skipped", r.SourceID)
	case r.Err != nil:
		return fmt.Sprintf("%s: failed: %v", r.SourceID, r.Err)
	default:
		return fmt.Sprintf("%s: %d rows in, %d persisted", r.SourceID, r.RowsIn, r.RowsPersisted)
	}
}

// RunResult aggregates one whole import run.
type RunResult struct {
	Results        []Result
	TotalPersisted int

	// Log is the run's append-only entry stream, for UI consumption.
	Log []logging.Entry
}

// Failed returns the per-source results that failed.
func (rr *RunResult) Failed() []Result {
	var out []Result
	for _, r := range rr.Results {
		if !r.Skipped && r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Summary returns a human-readable summary of the run.
func (rr *RunResult) Summary() string {
	imported, failed, skipped := 0, 0, 0
	for _, r := range rr.Results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
		default:
			imported++
		}
	}
	return fmt.Sprintf("%d records persisted from %d sources (%d failed, %d skipped)",
		rr.TotalPersisted, imported, failed, skipped)
}
