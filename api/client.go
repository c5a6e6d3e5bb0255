package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dnery/storecache/catalog"
)

// Client is a typed HTTP client for the api routes, used by tests and tooling.
type Client struct {
	resty      *resty.Client
	adminToken string
}

type ClientOption func(*Client)

// WithClientTimeout overrides the request timeout.
func WithClientTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.resty.SetTimeout(d)
		}
	}
}

// WithAdminToken sets the bearer token sent on admin calls.
func WithAdminToken(token string) ClientOption {
	return func(c *Client) { c.adminToken = strings.TrimSpace(token) }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	c := &Client{resty: rc}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Client) Product(ctx context.Context, id string) (catalog.ProductView, error) {
	var view catalog.ProductView
	resp, err := c.resty.R().SetContext(ctx).SetResult(&view).Get("/products/" + id)
	if err := checkResponse(resp, err); err != nil {
		return catalog.ProductView{}, err
	}
	return view, nil
}

func (c *Client) Products(ctx context.Context, ids []string) ([]catalog.ProductView, error) {
	var views []catalog.ProductView
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&views).
		Get("/products")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) Cart(ctx context.Context, userID string) (catalog.CartSummary, error) {
	var summary catalog.CartSummary
	resp, err := c.resty.R().SetContext(ctx).SetResult(&summary).Get("/cart/" + userID)
	if err := checkResponse(resp, err); err != nil {
		return catalog.CartSummary{}, err
	}
	return summary, nil
}

func (c *Client) AddToCart(ctx context.Context, userID, productID string, quantity int) (catalog.CartSummary, error) {
	var summary catalog.CartSummary
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(map[string]any{"product_id": productID, "quantity": quantity}).
		SetResult(&summary).
		Post("/cart/" + userID + "/items")
	if err := checkResponse(resp, err); err != nil {
		return catalog.CartSummary{}, err
	}
	return summary, nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) error {
	resp, err := c.resty.R().SetContext(ctx).Delete("/cart/" + userID)
	return checkResponse(resp, err)
}

// InvalidateCache removes every cache entry matching pattern through the
// admin endpoint.
func (c *Client) InvalidateCache(ctx context.Context, pattern string) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.adminToken).
		SetQueryParam("pattern", pattern).
		Delete("/admin/cache")
	return checkResponse(resp, err)
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if msg == "" {
			msg = strconv.Itoa(resp.StatusCode())
		}
		return fmt.Errorf("api: http %d: %s", resp.StatusCode(), msg)
	}
	return nil
}
