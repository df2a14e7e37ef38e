// Package sqlite provides the embedded, durable product record store backed
// by modernc.org/sqlite (pure Go, no cgo). Each import batch writes inside a
// single transaction so a failed source never leaves half a batch behind.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/mapwatch/mapwatch/pkg/errors"
	"github.com/mapwatch/mapwatch/pkg/normalize"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/profiles"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	brand       TEXT NOT NULL,
	sku         TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	price       TEXT,
	color       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	gender      TEXT NOT NULL DEFAULT '',
	tolerance   TEXT NOT NULL DEFAULT '0',
	extra       TEXT NOT NULL DEFAULT '{}',
	imported_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS annotations (
	record_id    TEXT NOT NULL,
	our_price    TEXT NOT NULL,
	sale_price   TEXT,
	map_price    TEXT NOT NULL,
	price_used   TEXT NOT NULL,
	is_violation INTEGER NOT NULL,
	difference   TEXT NOT NULL,
	matched_sku  TEXT NOT NULL DEFAULT '',
	strategy     TEXT NOT NULL DEFAULT ''
);
`

// Store is the SQLite-backed products.Store.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ products.Store = (*Store)(nil)

// Open opens (creating if needed) the store at path. ":memory:" works for
// throwaway stores.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapStore("open", err)
	}
	// The store has exactly one writer at a time; a single connection keeps
	// SQLite's locking out of the picture.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapStore("migrate", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Clear removes every record and annotation.
func (s *Store) Clear(ctx context.Context) error {
	return s.inTx(ctx, "clear", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM annotations`)
		return err
	})
}

// ReplaceAll atomically replaces the entire store contents.
func (s *Store) ReplaceAll(ctx context.Context, records []products.Record) error {
	return s.inTx(ctx, "replace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM annotations`); err != nil {
			return err
		}
		return insertBatch(ctx, tx, records)
	})
}

// Upsert inserts a batch of records inside one transaction.
func (s *Store) Upsert(ctx context.Context, records []products.Record) error {
	return s.inTx(ctx, "upsert", func(tx *sql.Tx) error {
		return insertBatch(ctx, tx, records)
	})
}

func insertBatch(ctx context.Context, tx *sql.Tx, records []products.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (brand, sku, name, price, color, category, gender, tolerance, extra, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		extra, err := json.Marshal(orEmpty(r.Extra))
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			r.Brand, r.SKU, r.Name, nullPrice(r.Price), r.Color, r.Category, r.Gender,
			r.Tolerance.String(), string(extra), r.ImportedAt.Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
	}
	return nil
}

// All returns every record in insertion order.
func (s *Store) All(ctx context.Context) ([]products.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand, sku, name, price, color, category, gender, tolerance, extra, imported_at
		FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.WrapStore("scan", err)
	}
	defer func() { _ = rows.Close() }()

	var out []products.Record
	for rows.Next() {
		var (
			id         int64
			r          products.Record
			price      sql.NullString
			tolerance  string
			extra      string
			importedAt string
		)
		if err := rows.Scan(&id, &r.Brand, &r.SKU, &r.Name, &price, &r.Color, &r.Category, &r.Gender, &tolerance, &extra, &importedAt); err != nil {
			return nil, errors.WrapStore("scan", err)
		}
		r.ID = recordID(id)
		if price.Valid {
			if d, err := decimal.NewFromString(price.String); err == nil {
				r.Price = decimal.NullDecimal{Decimal: d, Valid: true}
			}
		}
		if d, err := decimal.NewFromString(tolerance); err == nil {
			r.Tolerance = d
		}
		if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
			return nil, errors.WrapStore("scan", err)
		}
		if len(r.Extra) == 0 {
			r.Extra = nil
		}
		if t, err := time.Parse(time.RFC3339Nano, importedAt); err == nil {
			r.ImportedAt = utc.Time{Time: t.UTC()}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	if err != nil {
		return 0, errors.WrapStore("scan", err)
	}
	return n, nil
}

// UpdateField sets one canonical field on one record. Unknown field names
// land in the record's extra map.
func (s *Store) UpdateField(ctx context.Context, id, field, value string) error {
	rowID, err := parseRecordID(id)
	if err != nil {
		return errors.NewNotFoundError("product", id)
	}

	var query string
	var arg any
	switch field {
	case profiles.FieldSKU:
		query, arg = `UPDATE products SET sku = ? WHERE id = ?`, strings.TrimSpace(value)
	case profiles.FieldName:
		query, arg = `UPDATE products SET name = ? WHERE id = ?`, value
	case profiles.FieldPrice:
		query, arg = `UPDATE products SET price = ? WHERE id = ?`, nullPrice(normalize.Price(value))
	case profiles.FieldColor:
		query, arg = `UPDATE products SET color = ? WHERE id = ?`, value
	case profiles.FieldCategory:
		query, arg = `UPDATE products SET category = ? WHERE id = ?`, value
	case profiles.FieldGender:
		query, arg = `UPDATE products SET gender = ? WHERE id = ?`, value
	default:
		return s.updateExtra(ctx, rowID, id, field, value)
	}

	res, err := s.db.ExecContext(ctx, query, arg, rowID)
	if err != nil {
		return errors.WrapStore("update", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WrapStore("update", err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("product", id)
	}
	return nil
}

func (s *Store) updateExtra(ctx context.Context, rowID int64, id, field, value string) error {
	return s.inTx(ctx, "update", func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT extra FROM products WHERE id = ?`, rowID).Scan(&raw)
		if err == sql.ErrNoRows {
			return errors.NewNotFoundError("product", id)
		}
		if err != nil {
			return err
		}

		extra := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			return err
		}
		extra[field] = value
		updated, err := json.Marshal(extra)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE products SET extra = ? WHERE id = ?`, string(updated), rowID)
		return err
	})
}

// SetAnnotations replaces the annotation set from a reconciliation run.
func (s *Store) SetAnnotations(ctx context.Context, annotations []products.Annotation) error {
	return s.inTx(ctx, "annotate", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM annotations`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO annotations (record_id, our_price, sale_price, map_price, price_used, is_violation, difference, matched_sku, strategy)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, a := range annotations {
			_, err := stmt.ExecContext(ctx,
				a.RecordID, a.OurPrice.String(), nullPrice(a.SalePrice), a.MAPPrice.String(),
				a.PriceUsed.String(), boolToInt(a.IsViolation), a.Difference.String(),
				a.MatchedSKU, a.Strategy.String())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Annotations returns the current annotation set.
func (s *Store) Annotations(ctx context.Context) ([]products.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_id, our_price, sale_price, map_price, price_used, is_violation, difference, matched_sku, strategy
		FROM annotations`)
	if err != nil {
		return nil, errors.WrapStore("scan", err)
	}
	defer func() { _ = rows.Close() }()

	var out []products.Annotation
	for rows.Next() {
		var (
			a          products.Annotation
			ourPrice   string
			salePrice  sql.NullString
			mapPrice   string
			priceUsed  string
			violation  int
			difference string
			strategy   string
		)
		if err := rows.Scan(&a.RecordID, &ourPrice, &salePrice, &mapPrice, &priceUsed, &violation, &difference, &a.MatchedSKU, &strategy); err != nil {
			return nil, errors.WrapStore("scan", err)
		}
		a.OurPrice = mustDecimal(ourPrice)
		if salePrice.Valid {
			a.SalePrice = decimal.NullDecimal{Decimal: mustDecimal(salePrice.String), Valid: true}
		}
		a.MAPPrice = mustDecimal(mapPrice)
		a.PriceUsed = mustDecimal(priceUsed)
		a.IsViolation = violation != 0
		a.Difference = mustDecimal(difference)
		a.Strategy = normalize.Strategy(strategy)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ClearAnnotations drops the annotation overlay, keeping records.
func (s *Store) ClearAnnotations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM annotations`)
	return errors.WrapStore("annotate", err)
}

func (s *Store) inTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapStore(operation, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return errors.WrapStore(operation, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.WrapStore(operation, err)
	}
	return nil
}

func recordID(rowID int64) string {
	return fmt.Sprintf("p-%d", rowID)
}

func parseRecordID(id string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(id, "p-"), 10, 64)
}

func nullPrice(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
