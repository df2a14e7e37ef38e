// Package reconcile joins an uploaded retailer price table against the
// product store and flags MAP violations. Matching runs multiple SKU
// normalization strategies because vendors and retailers rarely agree on
// SKU formatting; the violation rule itself is a single comparison against
// the record's tolerance-adjusted price floor.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/normalize"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/upload"
)

// Checker runs reconciliation passes against a record store.
type Checker struct {
	store  products.Store
	logger *zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger check runs report to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a Checker over the given store.
func New(store products.Store, opts ...Option) *Checker {
	c := &Checker{
		store:  store,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check evaluates the uploaded rows against the full store and persists the
// resulting annotation set, replacing any previous run's annotations.
func (c *Checker) Check(ctx context.Context, rows []upload.Row) (*Result, error) {
	records, err := c.store.All(ctx)
	if err != nil {
		return nil, errors.WrapStore("scan", err)
	}

	result := Evaluate(records, rows)

	if err := c.store.SetAnnotations(ctx, result.Annotations); err != nil {
		return nil, errors.WrapStore("annotate", err)
	}

	c.logger.Info().
		Int("rows", len(rows)).
		Int("checked", result.Checked).
		Int("violations", result.Violations).
		Int("unmatched", result.Unmatched).
		Msg("check complete")
	return result, nil
}

// Clear drops the current annotation set, returning the store to its
// unchecked state.
func (c *Checker) Clear(ctx context.Context) error {
	if err := c.store.ClearAnnotations(ctx); err != nil {
		return errors.WrapStore("annotate", err)
	}
	return nil
}

// Evaluate is the pure reconciliation engine: given the store contents and
// the uploaded rows it produces the annotation set and counts, touching
// nothing. Deterministic for a given input.
func Evaluate(records []products.Record, rows []upload.Row) *Result {
	ix := buildIndex(records)
	result := &Result{RowsIn: len(rows)}

	for _, row := range rows {
		record, matchedSKU, strategy, ok := ix.lookup(row.SKU)
		if !ok {
			// SKUs outside the vendor catalog are dropped, not reported.
			result.Unmatched++
			continue
		}

		ourPrice := normalize.Price(row.Price)
		if !ourPrice.Valid {
			result.SkippedNoPrice++
			continue
		}

		if !record.Price.Valid {
			result.SkippedNoMAP++
			continue
		}
		mapPrice := record.Price.Decimal

		salePrice := normalize.Price(row.SalePrice)
		priceUsed := ourPrice.Decimal
		if salePrice.Valid {
			priceUsed = salePrice.Decimal
		}

		// Strict less-than: a price exactly at the floor is compliant.
		floor := mapPrice.Sub(record.Tolerance)
		isViolation := priceUsed.LessThan(floor)

		result.Annotations = append(result.Annotations, products.Annotation{
			RecordID:    record.ID,
			OurPrice:    ourPrice.Decimal,
			SalePrice:   salePrice,
			MAPPrice:    mapPrice,
			PriceUsed:   priceUsed,
			IsViolation: isViolation,
			Difference:  priceUsed.Sub(mapPrice),
			MatchedSKU:  matchedSKU,
			Strategy:    strategy,
		})
		result.Checked++
		if isViolation {
			result.Violations++
		}
	}
	return result
}

// lookupStrategies is the probe order per candidate: the brand-agnostic form
// first, then the hyphen-to-space form.
var lookupStrategies = []normalize.Strategy{
	normalize.StrategyDefault,
	normalize.StrategyHyphenToSpace,
}

// index maps default-normalized stored SKUs to their records. When two
// records normalize to the same SKU the earlier one wins, matching store
// order.
type index struct {
	byKey map[string]*products.Record
}

func buildIndex(records []products.Record) *index {
	ix := &index{byKey: make(map[string]*products.Record, len(records))}
	for i := range records {
		key := normalize.SKU(records[i].SKU, normalize.StrategyDefault)
		if key == "" {
			continue
		}
		if _, exists := ix.byKey[key]; !exists {
			ix.byKey[key] = &records[i]
		}
	}
	return ix
}

// lookup probes every candidate form of the uploaded SKU, each under every
// strategy, and stops at the first hit.
func (ix *index) lookup(rawSKU string) (*products.Record, string, normalize.Strategy, bool) {
	for _, candidate := range normalize.SKUCandidates(rawSKU) {
		for _, strategy := range lookupStrategies {
			key := normalize.SKU(candidate, strategy)
			if key == "" {
				continue
			}
			if record, ok := ix.byKey[key]; ok {
				return record, candidate, strategy, true
			}
		}
	}
	return nil, "", "", false
}
