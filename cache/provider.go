package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Provider layers typed values on top of a byte-level Store. Values cross the
// store boundary as opaque JSON text; the provider never inspects their shape
// beyond the encode/decode round-trip.
type Provider struct {
	store Store
}

// NewProvider wraps an existing store.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Set encodes value and stores it under key with the given expiration.
func (p *Provider) Set(ctx context.Context, key string, value any, exp Expiration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return p.store.Set(ctx, key, payload, exp)
}

// Get decodes the entry under key into dest. A miss reports (false, nil);
// missing keys are never an error.
func (p *Provider) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := p.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return true, nil
}

// Remove deletes the entry under key. Removing an absent key succeeds.
func (p *Provider) Remove(ctx context.Context, key string) error {
	return p.store.Delete(ctx, key)
}

// Exists reports whether key holds a live value without refreshing it.
func (p *Provider) Exists(ctx context.Context, key string) (bool, error) {
	return p.store.Exists(ctx, key)
}

// GetMultiple returns the still-encoded payloads for the subset of keys that
// hold a live value. Callers decode per key, typically through GetMultiple[T].
func (p *Provider) GetMultiple(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	payloads, err := p.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(payloads))
	for key, payload := range payloads {
		out[key] = json.RawMessage(payload)
	}
	return out, nil
}

// RemoveByPattern removes every key matching the anchored `*`-glob. The scan
// covers a snapshot of the key set taken at call time.
func (p *Provider) RemoveByPattern(ctx context.Context, pattern string) error {
	_, err := p.store.DeletePattern(ctx, pattern)
	return err
}

// Get fetches and decodes the value under key as a T.
func Get[T any](ctx context.Context, p *Provider, key string) (T, bool, error) {
	var value T
	ok, err := p.Get(ctx, key, &value)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	return value, true, nil
}

// GetMultiple fetches the live subset of keys and decodes each value as a T.
func GetMultiple[T any](ctx context.Context, p *Provider, keys []string) (map[string]T, error) {
	payloads, err := p.GetMultiple(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(payloads))
	for key, payload := range payloads {
		var value T
		if err := json.Unmarshal(payload, &value); err != nil {
			return nil, fmt.Errorf("cache: decode %q: %w", key, err)
		}
		out[key] = value
	}
	return out, nil
}
