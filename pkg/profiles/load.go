package profiles

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/normalize"
)

// Load reads a profile list from a YAML file and validates every entry.
// The returned slice is a fresh value each call; callers own it and nothing
// here retains it. Duplicate IDs are rejected.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("profiles", "reading "+path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a YAML profile list. The name argument is used
// for error attribution only.
func Parse(data []byte, name string) ([]Profile, error) {
	var list []Profile
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}

	seen := make(map[ID]struct{}, len(list))
	for i := range list {
		p := &list[i]
		if err := p.Validate(); err != nil {
			return nil, errors.NewConfigError("profiles", "profile "+p.ID.String(), err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.NewConfigError("profiles", "duplicate profile ID "+p.ID.String(), nil)
		}
		seen[p.ID] = struct{}{}
	}
	return list, nil
}

// ByID returns the profile with the given ID from a list.
func ByID(list []Profile, id ID) (*Profile, error) {
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, errors.NewNotFoundError("profile", id.String())
}

// Defaults returns the built-in profile set covering the vendor feeds the
// system ships with. Feed URLs are left empty; deployments point them at the
// published spreadsheets (or a pass-through proxy in front of them).
func Defaults() []Profile {
	return []Profile{
		{
			ID:        "nike",
			Name:      "Nike",
			Enabled:   true,
			HeaderRow: 1,
			Tolerance: decimal.NewFromFloat(0.05),
			Columns: map[string]string{
				FieldSKU:      "A",
				FieldName:     "B",
				FieldPrice:    "C",
				FieldColor:    "D",
				FieldCategory: "E",
				FieldGender:   "F",
			},
			SKUStrategy: normalize.StrategyHyphenToSpace,
		},
		{
			ID:        "adidas",
			Name:      "Adidas",
			Enabled:   true,
			HeaderRow: 2,
			Tolerance: decimal.Zero,
			Columns: map[string]string{
				FieldSKU:       "B",
				FieldName:      "C",
				FieldPrice:     "E",
				FieldColor:     "F",
				FieldCategory:  "G",
				FieldPromotion: "H",
				FieldMAPEnd:    "I",
			},
			// Adidas feeds interleave MAP and promo windows; only MAP
			// rows carry an advertised-price floor.
			RowFilter: &RowFilter{Field: FieldPromotion, Equals: "MAP"},
		},
	}
}
