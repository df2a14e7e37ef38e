// Package importer runs the feed import pipeline: fetch each enabled vendor
// feed, parse it into rows, slice off headers, apply the profile's row
// filter, normalize every cell into a canonical product record, and persist
// the batch. Sources run sequentially and fail independently; only a failure
// to clear the store before the run aborts the whole import.
package importer

import (
	"context"
	"strings"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/mapwatch/mapwatch/internal/tabular"
	"github.com/mapwatch/mapwatch/internal/transport"
	"github.com/mapwatch/mapwatch/pkg/columns"
	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/normalize"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/profiles"
)

// Importer orchestrates import runs against a record store.
type Importer struct {
	store   products.Store
	fetcher transport.Fetcher
	logger  *zerolog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger run logs mirror to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

// New creates an Importer over the given store and fetcher.
func New(store products.Store, fetcher transport.Fetcher, opts ...Option) *Importer {
	i := &Importer{
		store:   store,
		fetcher: fetcher,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes a full import over the given profiles. Every import is a full
// refresh: the store is cleared first, and a clear failure aborts the run.
// Every other failure is scoped to its source.
func (i *Importer) Run(ctx context.Context, list []profiles.Profile) (*RunResult, error) {
	runLog := logging.NewRunLog(i.logger)
	runLog.Infof("", "starting import of %d sources", len(list))

	if err := i.store.Clear(ctx); err != nil {
		runLog.Errorf("", "clearing store: %v", err)
		return nil, errors.WrapStore("clear", err)
	}

	rr := &RunResult{}
	for idx := range list {
		p := &list[idx]
		result := Result{SourceID: p.ID, SourceName: p.Name}

		if !p.Runnable() {
			result.Skipped = true
			runLog.Infof(p.ID.String(), "skipping (disabled or no URL)")
			rr.Results = append(rr.Results, result)
			continue
		}

		srcCtx := logging.WithSource(ctx, p.ID.String())
		rowsIn, persisted, err := i.importSource(srcCtx, p, runLog)
		result.RowsIn = rowsIn
		result.RowsPersisted = persisted
		result.Err = err

		if err != nil {
			runLog.Errorf(p.ID.String(), "import failed: %v", err)
		} else {
			rr.TotalPersisted += persisted
			runLog.Successf(p.ID.String(), "persisted %d of %d rows", persisted, rowsIn)
		}
		rr.Results = append(rr.Results, result)
	}

	runLog.Infof("", "import finished: %d records persisted", rr.TotalPersisted)
	rr.Log = runLog.Entries()
	return rr, nil
}

// importSource runs the fetch-parse-map-persist pipeline for one source.
func (i *Importer) importSource(ctx context.Context, p *profiles.Profile, runLog *logging.RunLog) (rowsIn, persisted int, err error) {
	raw, err := i.fetcher.FetchText(ctx, p.URL)
	if err != nil {
		return 0, 0, errors.WrapSource(p.ID.String(), "fetch", err)
	}

	rows, err := tabular.Parse(raw)
	if err != nil {
		return 0, 0, errors.WrapSource(p.ID.String(), "parse", err)
	}

	data, err := tabular.SliceHeader(rows, p.HeaderRow)
	if err != nil {
		return 0, 0, errors.WrapSource(p.ID.String(), "parse", err)
	}

	extractor := columns.NewExtractor(p.Columns)
	data = applyRowFilter(p, extractor, data, runLog)
	rowsIn = len(data)

	importedAt := utc.Now()
	batch := make([]products.Record, 0, len(data))
	for _, row := range data {
		record, ok := buildRecord(p, extractor, row, importedAt)
		if !ok {
			continue // no usable SKU; expected and silent
		}
		batch = append(batch, record)
	}

	if err := i.store.Upsert(ctx, batch); err != nil {
		return rowsIn, 0, errors.WrapSource(p.ID.String(), "persist", err)
	}

	logging.Ctx(ctx).Debug().
		Int("rows_in", rowsIn).
		Int("persisted", len(batch)).
		Msg("source imported")
	return rowsIn, len(batch), nil
}

// applyRowFilter keeps only the rows matching the profile's filter token.
// When the filter column cannot be resolved the filter fails open: all rows
// pass, with a warning.
func applyRowFilter(p *profiles.Profile, extractor *columns.Extractor, rows [][]string, runLog *logging.RunLog) [][]string {
	if p.RowFilter == nil {
		return rows
	}

	if extractor.Index(p.RowFilter.Field) == columns.NotFound {
		runLog.Warnf(p.ID.String(), "row filter column %q not mapped; passing all rows", p.RowFilter.Field)
		return rows
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		cell, _ := extractor.Extract(row, p.RowFilter.Field)
		if strings.EqualFold(strings.TrimSpace(cell), p.RowFilter.Equals) {
			kept = append(kept, row)
		}
	}
	return kept
}

// buildRecord maps one raw row into a canonical record. Fields normalize by
// name convention: names containing "price" parse as prices, names
// containing "date" as dates, everything else passes through raw. Rows whose
// normalized SKU is empty are dropped.
func buildRecord(p *profiles.Profile, extractor *columns.Extractor, row []string, importedAt utc.Time) (products.Record, bool) {
	record := products.Record{
		Brand:      p.Name,
		Tolerance:  p.Tolerance,
		ImportedAt: importedAt,
	}

	for field := range p.Columns {
		cell, ok := extractor.Extract(row, field)
		if !ok {
			continue
		}
		applyCell(&record, field, cell)
	}

	record.SKU = normalize.SKU(record.SKU, p.Strategy())
	if record.SKU == "" {
		return products.Record{}, false
	}
	return record, true
}

func applyCell(record *products.Record, field, cell string) {
	lower := strings.ToLower(field)
	switch {
	case field == profiles.FieldSKU:
		record.SKU = cell
	case field == profiles.FieldName:
		record.Name = cell
	case field == profiles.FieldPrice:
		record.Price = normalize.Price(cell)
	case field == profiles.FieldColor:
		record.Color = cell
	case field == profiles.FieldCategory:
		record.Category = cell
	case field == profiles.FieldGender:
		record.Gender = cell
	case strings.Contains(lower, "price"):
		if d := normalize.Price(cell); d.Valid {
			setExtra(record, field, d.Decimal.String())
		}
	case strings.Contains(lower, "date"):
		if s := normalize.Date(cell); s != nil {
			setExtra(record, field, *s)
		}
	default:
		if strings.TrimSpace(cell) != "" {
			setExtra(record, field, cell)
		}
	}
}

func setExtra(record *products.Record, field, value string) {
	if record.Extra == nil {
		record.Extra = make(map[string]string, 2)
	}
	record.Extra[field] = value
}
