// Package profiles defines the per-vendor source profile: the configuration
// record that maps a brand's published feed layout onto canonical product
// fields. New brands are added by appending a profile, never by branching
// code; profiles are selected by explicit identifier lookup.
package profiles

import (
	"github.com/shopspring/decimal"

	"github.com/mapwatch/mapwatch/pkg/columns"
	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/normalize"
)

// ID represents the stable identifier of a source profile.
type ID string

// String returns the string representation of a profile ID.
func (id ID) String() string {
	return string(id)
}

// Canonical field names every profile maps to source-specific columns.
// Fields whose name contains "price" normalize as prices and fields whose
// name contains "date" normalize as dates; everything else passes through as
// a raw string.
const (
	FieldSKU       = "sku"
	FieldName      = "productName"
	FieldPrice     = "price"
	FieldColor     = "color"
	FieldCategory  = "category"
	FieldGender    = "gender"
	FieldPromotion = "promotion"
	FieldMAPEnd    = "mapEndDate"
)

// RowFilter keeps only feed rows whose designated column equals a fixed
// token (case-insensitive). Vendors interleave MAP and non-MAP pricing
// windows in one feed; the filter keeps the MAP rows.
type RowFilter struct {
	Field  string `yaml:"field" json:"field"`
	Equals string `yaml:"equals" json:"equals"`
}

// Profile describes one vendor feed: where to fetch it, where its data
// begins, how its columns map to canonical fields, and the brand's tolerance
// and SKU normalization rule.
type Profile struct {
	ID          ID                 `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	URL         string             `yaml:"url" json:"url"`
	Enabled     bool               `yaml:"enabled" json:"enabled"`
	HeaderRow   int                `yaml:"header_row" json:"header_row"` // 1-based; data starts on the next row
	Tolerance   decimal.Decimal    `yaml:"tolerance" json:"tolerance"`
	Columns     map[string]string  `yaml:"columns" json:"columns"`
	SKUStrategy normalize.Strategy `yaml:"sku_strategy,omitempty" json:"sku_strategy,omitempty"`
	RowFilter   *RowFilter         `yaml:"row_filter,omitempty" json:"row_filter,omitempty"`
}

// Strategy returns the profile's SKU normalization strategy, defaulting to
// trim-only when unset.
func (p *Profile) Strategy() normalize.Strategy {
	if p.SKUStrategy.IsValid() {
		return p.SKUStrategy
	}
	return normalize.StrategyDefault
}

// Runnable reports whether the import pipeline should visit this profile at
// all. Disabled profiles and profiles without a feed URL are skipped, not
// failed.
func (p *Profile) Runnable() bool {
	return p.Enabled && p.URL != ""
}

// Validate checks the profile invariants: non-empty ID, header row >= 1,
// non-negative tolerance, well-formed column letters, and a known SKU
// strategy when one is set.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.NewValidationError("id", p.ID, "profile ID must not be empty")
	}
	if p.HeaderRow < 1 {
		return errors.NewValidationError("header_row", p.HeaderRow, "header row must be >= 1")
	}
	if p.Tolerance.IsNegative() {
		return errors.NewValidationError("tolerance", p.Tolerance.String(), "tolerance must not be negative")
	}
	for field, letter := range p.Columns {
		if columns.LetterToIndex(letter) == columns.NotFound {
			return errors.NewValidationError("columns."+field, letter, "not a column letter")
		}
	}
	if p.SKUStrategy != "" && !p.SKUStrategy.IsValid() {
		return errors.NewValidationError("sku_strategy", p.SKUStrategy.String(), "unknown SKU strategy")
	}
	if p.RowFilter != nil && p.RowFilter.Equals == "" {
		return errors.NewValidationError("row_filter.equals", "", "filter token must not be empty")
	}
	return nil
}
