package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dnery/storecache/cache"
	"github.com/dnery/storecache/cache/memory"
	"github.com/dnery/storecache/catalog"
)

const adminToken = "letmein"

type testEnv struct {
	client *Client
	source *catalog.SimulatedSource
	cache  *cache.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New(memory.Options{})
	t.Cleanup(func() { _ = store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() error = %v", err)
	}

	source := catalog.NewSimulatedSource(6, 11)
	cacheSvc := cache.NewService(cache.NewProvider(store))
	handler := NewHandler(catalog.NewService(cacheSvc, source), cacheSvc, nil, string(hash))
	server := NewServer(handler)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		client: NewClient(ts.URL, WithAdminToken(adminToken), WithClientTimeout(2*time.Second)),
		source: source,
		cache:  cacheSvc,
	}
}

func TestProductEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.source.IDs()[0]

	view, err := env.client.Product(ctx, id)
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if view.ID != id || view.Name == "" || !strings.HasPrefix(view.Price, "EUR ") {
		t.Fatalf("Product() = %+v", view)
	}
}

func TestProductEndpointNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Product(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestProductsEndpointSubset(t *testing.T) {
	env := newTestEnv(t)
	ids := env.source.IDs()

	views, err := env.client.Products(context.Background(), []string{ids[0], "nope", ids[1]})
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("Products() returned %d views, want 2", len(views))
	}
}

func TestCartEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.source.IDs()[0]

	summary, err := env.client.AddToCart(ctx, "u1", id, 2)
	if err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if len(summary.Lines) != 1 || summary.Lines[0].Quantity != 2 {
		t.Fatalf("AddToCart() summary = %+v", summary)
	}

	summary, err = env.client.Cart(ctx, "u1")
	if err != nil {
		t.Fatalf("Cart() error = %v", err)
	}
	if len(summary.Lines) != 1 {
		t.Fatalf("Cart() summary = %+v", summary)
	}

	if err := env.client.ClearCart(ctx, "u1"); err != nil {
		t.Fatalf("ClearCart() error = %v", err)
	}
	summary, err = env.client.Cart(ctx, "u1")
	if err != nil {
		t.Fatalf("Cart() after clear error = %v", err)
	}
	if len(summary.Lines) != 0 {
		t.Fatalf("cart not empty after clear: %+v", summary)
	}
}

func TestAddToCartValidation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.client.AddToCart(context.Background(), "u1", "", 1); err == nil {
		t.Fatal("AddToCart() accepted an empty product id")
	}
}

func TestAdminInvalidateCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.source.IDs()[0]

	// Warm the cache, then blow the product keys away through the admin API.
	if _, err := env.client.Product(ctx, id); err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if !env.cache.Exists(ctx, catalog.ProductKey(id)) {
		t.Fatal("product was not cached after read")
	}

	if err := env.client.InvalidateCache(ctx, "product:*"); err != nil {
		t.Fatalf("InvalidateCache() error = %v", err)
	}
	if env.cache.Exists(ctx, catalog.ProductKey(id)) {
		t.Fatal("product key survived admin invalidation")
	}
}

func TestAdminRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)

	bad := NewClient(env.clientBaseURL(t), WithAdminToken("wrong"))
	err := bad.InvalidateCache(context.Background(), "product:*")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestAdminRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	anon := NewClient(env.clientBaseURL(t))
	err := anon.InvalidateCache(context.Background(), "product:*")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestAdminDisabledWithoutHash(t *testing.T) {
	store := memory.New(memory.Options{})
	t.Cleanup(func() { _ = store.Close() })

	source := catalog.NewSimulatedSource(2, 1)
	cacheSvc := cache.NewService(cache.NewProvider(store))
	handler := NewHandler(catalog.NewService(cacheSvc, source), cacheSvc, nil, "")
	ts := httptest.NewServer(NewServer(handler).Handler())
	t.Cleanup(ts.Close)

	client := NewClient(ts.URL, WithAdminToken(adminToken))
	err := client.InvalidateCache(context.Background(), "product:*")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

// clientBaseURL digs the test server address back out of the env's client.
func (e *testEnv) clientBaseURL(t *testing.T) string {
	t.Helper()
	url := e.client.resty.BaseURL
	if url == "" {
		t.Fatal("test client has no base URL")
	}
	return url
}
