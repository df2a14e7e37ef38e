package normalize

import (
	"slices"
	"strings"
)

// Strategy identifies a SKU normalization rule. Vendors disagree about how a
// SKU is written (some encode with hyphens where others use spaces), so
// comparison keys are built under an explicit, named rule rather than ad hoc
// string munging.
type Strategy string

const (
	// StrategyDefault trims surrounding whitespace only.
	StrategyDefault Strategy = "default"

	// StrategyHyphenToSpace additionally replaces every hyphen with a
	// single space. Used for hyphen-heavy vendor SKUs whose retailer-side
	// form uses spaces.
	StrategyHyphenToSpace Strategy = "hyphen-to-space"
)

// Strategies returns all defined strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyDefault, StrategyHyphenToSpace}
}

// IsValid returns true if the strategy is one of the defined constants.
func (s Strategy) IsValid() bool {
	return slices.Contains(Strategies(), s)
}

// String returns the string representation of a strategy.
func (s Strategy) String() string {
	return string(s)
}

// SKU normalizes a raw SKU under the given strategy. Empty or
// whitespace-only input yields "". An unrecognized strategy falls back to
// the default rule. The function is idempotent under every strategy.
func SKU(raw string, strategy Strategy) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	switch strategy {
	case StrategyHyphenToSpace:
		// Trim again after replacement: edge hyphens become edge spaces,
		// and a hyphen-only SKU must normalize to empty.
		return strings.TrimSpace(strings.ReplaceAll(s, "-", " "))
	default:
		return s
	}
}

// SKUCandidates derives the ordered list of candidate comparison keys for an
// uploaded SKU. The order is fixed and chosen to maximize recall across
// inconsistent vendor formatting: the raw trimmed value, the hyphen-to-space
// form, the value with all spaces removed, and the value with all hyphens
// removed. Duplicates collapse to the first occurrence; empty input yields
// nil.
func SKUCandidates(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	forms := []string{
		trimmed,
		strings.ReplaceAll(trimmed, "-", " "),
		strings.ReplaceAll(trimmed, " ", ""),
		strings.ReplaceAll(trimmed, "-", ""),
	}

	out := make([]string, 0, len(forms))
	for _, f := range forms {
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
