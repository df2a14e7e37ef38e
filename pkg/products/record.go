// Package products defines the canonical product record that every vendor
// feed normalizes into, along with the compliance annotation overlay and the
// record store contract.
package products

import (
	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"

	"github.com/mapwatch/mapwatch/pkg/normalize"
)

// Record is the canonical, persisted product entity. Records are created in
// bulk during an import run (the previous generation is wholly discarded
// first), may be individually edited afterward, and are never partially
// deleted except via full replace.
type Record struct {
	// ID is the synthetic identifier assigned by the store. Stable across
	// field updates, regenerated on replace-all.
	ID string `json:"id"`

	Brand    string              `json:"brand"`
	SKU      string              `json:"sku"` // normalized per the brand's strategy; never empty
	Name     string              `json:"productName"`
	Price    decimal.NullDecimal `json:"price"` // MAP price; null when the feed had none
	Color    string              `json:"color,omitempty"`
	Category string              `json:"category,omitempty"`
	Gender   string              `json:"gender,omitempty"`

	// Tolerance is copied from the source profile at import time so the
	// violation check needs no profile lookup later.
	Tolerance decimal.Decimal `json:"tolerance"`

	// Extra holds brand-specific fields outside the canonical set, such as
	// promotion markers and MAP window end dates.
	Extra map[string]string `json:"extra,omitempty"`

	ImportedAt utc.Time `json:"imported_at"`
}

// Annotation is the compliance overlay attached to at most one record after
// a reconciliation run. A new run fully replaces the previous annotation
// set.
type Annotation struct {
	RecordID string `json:"record_id"`

	OurPrice  decimal.Decimal     `json:"our_price"`
	SalePrice decimal.NullDecimal `json:"sale_price"`
	MAPPrice  decimal.Decimal     `json:"map_price"`
	PriceUsed decimal.Decimal     `json:"price_used"`

	IsViolation bool `json:"is_violation"`

	// Difference is priceUsed - mapPrice; negative means underpriced by
	// that amount.
	Difference decimal.Decimal `json:"difference"`

	// MatchedSKU and Strategy record which candidate form and normalization
	// rule produced the match. Diagnostic only.
	MatchedSKU string             `json:"matched_sku,omitempty"`
	Strategy   normalize.Strategy `json:"strategy,omitempty"`
}

// EffectiveFloor returns the price floor the violation check compares
// against: the record's MAP price minus its tolerance. The second return is
// false when the record has no MAP price.
func (r *Record) EffectiveFloor() (decimal.Decimal, bool) {
	if !r.Price.Valid {
		return decimal.Decimal{}, false
	}
	return r.Price.Decimal.Sub(r.Tolerance), true
}
