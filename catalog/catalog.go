package catalog

import (
	"context"
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("catalog: product not found")

// Product is the canonical catalog record served by a Source.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CartItem is one line of a user's cart as held in the cache.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitCents int64  `json:"unit_cents"`
	Currency  string `json:"currency"`
	Quantity  int    `json:"quantity"`
}

// Source is the primary product store the cache layer falls back to on a miss.
type Source interface {
	// Product returns the record for id, or ErrProductNotFound.
	Product(ctx context.Context, id string) (Product, error)

	// Products returns the records for the ids it can find, in no particular
	// order. Unknown ids are skipped, not an error.
	Products(ctx context.Context, ids []string) ([]Product, error)
}
