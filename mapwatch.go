// Package mapwatch is the façade over the MAP compliance engine: vendor
// feed import, retailer price-file checks, and store aggregation behind one
// handle. Construction wires the store, fetcher, and source profiles from
// options; callers that need finer control use the pkg/ packages directly.
package mapwatch

import (
	"context"
	"io"

	"github.com/mapwatch/mapwatch/internal/sqlite"
	"github.com/mapwatch/mapwatch/internal/transport"
	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/importer"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/profiles"
	"github.com/mapwatch/mapwatch/pkg/reconcile"
	"github.com/mapwatch/mapwatch/pkg/report"
	"github.com/mapwatch/mapwatch/pkg/upload"
)

// Mapwatch manages the product store and runs import and check passes
// against it.
type Mapwatch interface {
	// Profiles returns the configured feed source profiles.
	Profiles() []profiles.Profile

	// RunImport refreshes the store from every enabled source profile.
	RunImport(ctx context.Context) (*importer.RunResult, error)

	// Check reconciles uploaded rows against the store and persists the
	// annotation set.
	Check(ctx context.Context, rows []upload.Row) (*reconcile.Result, error)

	// CheckCSV parses delimited upload text and checks it.
	CheckCSV(ctx context.Context, raw string) (*reconcile.Result, error)

	// CheckXLSX parses an XLSX workbook and checks it.
	CheckXLSX(ctx context.Context, r io.Reader) (*reconcile.Result, error)

	// ClearCheck drops the current annotation overlay.
	ClearCheck(ctx context.Context) error

	// Summary aggregates the store and any annotation overlay.
	Summary(ctx context.Context) (*report.Summary, error)

	// UpdateProduct sets one field on one stored record. Unknown field names
	// land in the record's extra map.
	UpdateProduct(ctx context.Context, id, field, value string) error

	// Store exposes the underlying record store for direct edits.
	Store() products.Store

	// Close releases the store when this instance opened it.
	Close() error
}

// mapwatch is the internal implementation of the Mapwatch interface.
type mapwatch struct {
	config   *config
	store    products.Store
	importer *importer.Importer
	checker  *reconcile.Checker
	closer   io.Closer
}

// New creates a Mapwatch instance with the given options. Without options
// it runs in-memory with the built-in source profiles.
func New(opts ...Option) (Mapwatch, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.NewConfigError("mapwatch", "applying options", err)
		}
	}

	m := &mapwatch{config: cfg}

	switch {
	case cfg.store != nil:
		m.store = cfg.store
	case cfg.storePath != "":
		s, err := sqlite.Open(cfg.storePath)
		if err != nil {
			return nil, err
		}
		m.store = s
		m.closer = s
	default:
		m.store = products.NewMemoryStore()
	}

	if cfg.profilesPath != "" {
		list, err := profiles.Load(cfg.profilesPath)
		if err != nil {
			m.Close()
			return nil, err
		}
		cfg.profiles = list
	}
	if cfg.profiles == nil {
		cfg.profiles = profiles.Defaults()
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		var topts []transport.Option
		if cfg.proxyPrefix != "" {
			topts = append(topts, transport.WithProxyPrefix(cfg.proxyPrefix))
		}
		if cfg.timeout > 0 {
			topts = append(topts, transport.WithTimeout(cfg.timeout))
		}
		fetcher = transport.New(topts...)
	}

	m.importer = importer.New(m.store, fetcher, importer.WithLogger(cfg.logger))
	m.checker = reconcile.New(m.store, reconcile.WithLogger(cfg.logger))
	return m, nil
}

// Profiles returns a copy of the configured source profiles.
func (m *mapwatch) Profiles() []profiles.Profile {
	out := make([]profiles.Profile, len(m.config.profiles))
	copy(out, m.config.profiles)
	return out
}

// RunImport refreshes the store from every enabled source profile.
func (m *mapwatch) RunImport(ctx context.Context) (*importer.RunResult, error) {
	return m.importer.Run(ctx, m.config.profiles)
}

// Check reconciles uploaded rows against the store.
func (m *mapwatch) Check(ctx context.Context, rows []upload.Row) (*reconcile.Result, error) {
	return m.checker.Check(ctx, rows)
}

// CheckCSV parses delimited upload text and checks it.
func (m *mapwatch) CheckCSV(ctx context.Context, raw string) (*reconcile.Result, error) {
	rows, err := upload.ParseCSV(raw, m.config.uploadMapping)
	if err != nil {
		return nil, err
	}
	return m.checker.Check(ctx, rows)
}

// CheckXLSX parses an XLSX workbook and checks it.
func (m *mapwatch) CheckXLSX(ctx context.Context, r io.Reader) (*reconcile.Result, error) {
	rows, err := upload.ParseXLSX(r, m.config.uploadMapping)
	if err != nil {
		return nil, err
	}
	return m.checker.Check(ctx, rows)
}

// ClearCheck drops the current annotation overlay.
func (m *mapwatch) ClearCheck(ctx context.Context) error {
	return m.checker.Clear(ctx)
}

// Summary aggregates the store and any annotation overlay.
func (m *mapwatch) Summary(ctx context.Context) (*report.Summary, error) {
	return report.Build(ctx, m.store)
}

// UpdateProduct sets one field on one stored record.
func (m *mapwatch) UpdateProduct(ctx context.Context, id, field, value string) error {
	return m.store.UpdateField(ctx, id, field, value)
}

// Store exposes the underlying record store.
func (m *mapwatch) Store() products.Store {
	return m.store
}

// Close releases the store when this instance opened it. Safe on instances
// that did not.
func (m *mapwatch) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}
