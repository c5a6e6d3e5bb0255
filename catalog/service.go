package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/dnery/storecache/cache"
)

// Cache keys follow {feature}:{identifier}:{datatype}.
func ProductKey(id string) string  { return "product:" + id + ":details" }
func CartKey(userID string) string { return "cart:" + userID + ":items" }

// Service serves catalog reads cache-aside: cache first, source on a miss,
// then populate. Carts live only in the cache, keyed per user, with a sliding
// window so active carts stay warm.
type Service struct {
	cache      *cache.Service
	source     Source
	productTTL cache.Expiration
	cartWindow time.Duration
}

type ServiceOption func(*Service)

// WithProductTTL overrides the expiration used for cached product details.
// Zero falls through to the cache service's default TTL.
func WithProductTTL(exp cache.Expiration) ServiceOption {
	return func(s *Service) { s.productTTL = exp }
}

// WithCartWindow overrides the sliding window applied to cart entries.
func WithCartWindow(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.cartWindow = d
		}
	}
}

func NewService(cacheSvc *cache.Service, source Source, opts ...ServiceOption) *Service {
	s := &Service{
		cache:      cacheSvc,
		source:     source,
		cartWindow: time.Hour,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Product returns the record for id, serving from the cache when it can.
// A failed cache populate is not fatal: the source already answered.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	key := ProductKey(id)
	if p, ok := cache.Fetch[Product](ctx, s.cache, key); ok {
		return p, nil
	}

	p, err := s.source.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Set(ctx, key, p, s.productTTL)
	return p, nil
}

// Products returns the records it can find for ids: cached entries first, the
// rest from the source in one call, populating the cache along the way.
func (s *Service) Products(ctx context.Context, ids []string) ([]Product, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	cached := cache.FetchMultiple[Product](ctx, s.cache, keys)

	missing := make([]string, 0, len(ids))
	out := make([]Product, 0, len(ids))
	for i, id := range ids {
		if p, ok := cached[keys[i]]; ok {
			out = append(out, p)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.source.Products(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	for _, p := range fetched {
		_ = s.cache.Set(ctx, ProductKey(p.ID), p, s.productTTL)
		out = append(out, p)
	}
	return out, nil
}

// Cart returns the user's cart summary. A missing cart is an empty cart.
func (s *Service) Cart(ctx context.Context, userID string) CartSummary {
	items, _ := cache.Fetch[[]CartItem](ctx, s.cache, CartKey(userID))
	return NewCartSummary(userID, items)
}

// AddToCart puts quantity of a product into the user's cart and returns the
// updated summary. The cart write goes through the cache's write path, so a
// failed write surfaces instead of silently dropping the item.
func (s *Service) AddToCart(ctx context.Context, userID, productID string, quantity int) (CartSummary, error) {
	if quantity <= 0 {
		quantity = 1
	}
	p, err := s.Product(ctx, productID)
	if err != nil {
		return CartSummary{}, err
	}

	key := CartKey(userID)
	items, _ := cache.Fetch[[]CartItem](ctx, s.cache, key)

	merged := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitCents: p.PriceCents,
			Currency:  p.Currency,
			Quantity:  quantity,
		})
	}

	if err := s.cache.Set(ctx, key, items, cache.ExpireSliding(s.cartWindow)); err != nil {
		return CartSummary{}, fmt.Errorf("catalog: store cart: %w", err)
	}
	return NewCartSummary(userID, items), nil
}

// ClearCart drops the user's cart.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	return s.cache.Remove(ctx, CartKey(userID))
}

// InvalidateProduct drops every cached datatype for a product.
func (s *Service) InvalidateProduct(ctx context.Context, id string) error {
	return s.cache.RemoveByPattern(ctx, "product:"+id+":*")
}

// InvalidateUser drops every cache entry belonging to a user.
func (s *Service) InvalidateUser(ctx context.Context, userID string) error {
	return s.cache.RemoveByPattern(ctx, "cart:"+userID+":*")
}
