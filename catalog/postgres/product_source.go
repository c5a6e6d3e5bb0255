// Package postgres backs the catalog with a PostgreSQL product table, serving
// as the primary source the cache layer falls back to on a miss.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dnery/storecache/catalog"
	pgdb "github.com/dnery/storecache/db/sql/postgres"
)

// Schema creates the products table. Idempotent, applied through Migrate.
const Schema = `CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_cents BIGINT NOT NULL,
    currency    TEXT NOT NULL DEFAULT 'EUR',
    stock       INTEGER NOT NULL DEFAULT 0,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate applies the product schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	return pgdb.ApplyMigrations(ctx, db, Schema)
}

// ProductSource reads catalog products from PostgreSQL.
type ProductSource struct {
	db *sql.DB
}

// NewProductSource wraps an existing *sql.DB connection.
func NewProductSource(db *sql.DB) *ProductSource {
	return &ProductSource{db: db}
}

var _ catalog.Source = (*ProductSource)(nil)

func (s *ProductSource) Product(ctx context.Context, id string) (catalog.Product, error) {
	const query = `SELECT id, name, description, price_cents, currency, stock, updated_at
                   FROM products WHERE id = $1`
	var p catalog.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.Stock,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, translateError(err)
	}
	return p, nil
}

func (s *ProductSource) Products(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, description, price_cents, currency, stock, updated_at
                   FROM products WHERE id = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.Stock, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a product record.
func (s *ProductSource) Upsert(ctx context.Context, p catalog.Product) error {
	const query = `INSERT INTO products (id, name, description, price_cents, currency, stock, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)
                   ON CONFLICT (id) DO UPDATE SET
                       name = EXCLUDED.name,
                       description = EXCLUDED.description,
                       price_cents = EXCLUDED.price_cents,
                       currency = EXCLUDED.currency,
                       stock = EXCLUDED.stock,
                       updated_at = EXCLUDED.updated_at`
	_, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.PriceCents, p.Currency, p.Stock, p.UpdatedAt)
	return translateError(err)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return catalog.ErrProductNotFound
	}
	return fmt.Errorf("catalog: postgres: %w", err)
}
