package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is applied by the service when a write carries no expiration.
const DefaultTTL = 30 * time.Minute

// Service fronts a Provider with the failure policy upstream callers rely on:
// reads degrade to a miss so a cache fault can never become an application
// error, writes surface their error so a caller can tell the write did not
// stick, and writes without an explicit expiration get a uniform default TTL.
// Every absorbed or surfaced failure is logged with the offending key.
type Service struct {
	provider   *Provider
	logger     *zap.Logger
	defaultTTL time.Duration
}

type ServiceOption func(*Service)

// WithLogger sets the structured logger. Nil keeps the no-op default.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultTTL overrides the TTL substituted for zero expirations.
func WithDefaultTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

func NewService(provider *Provider, opts ...ServiceOption) *Service {
	s := &Service{
		provider:   provider,
		logger:     zap.NewNop(),
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get decodes the entry under key into dest and reports whether it hit.
// Provider failures are absorbed and reported as a miss.
func (s *Service) Get(ctx context.Context, key string, dest any) bool {
	ok, err := s.provider.Get(ctx, key, dest)
	if err != nil {
		s.logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// Set stores value under key. A zero expiration becomes the default TTL,
// absolute from now. Failures are logged and returned.
func (s *Service) Set(ctx context.Context, key string, value any, exp Expiration) error {
	if exp.IsZero() {
		exp = ExpireAfter(s.defaultTTL)
	}
	if err := s.provider.Set(ctx, key, value, exp); err != nil {
		s.logger.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Remove deletes the entry under key. Failures are logged and returned;
// removing an absent key succeeds.
func (s *Service) Remove(ctx context.Context, key string) error {
	if err := s.provider.Remove(ctx, key); err != nil {
		s.logger.Error("cache remove failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Exists reports whether key holds a live value. Provider failures are
// absorbed and reported as false.
func (s *Service) Exists(ctx context.Context, key string) bool {
	ok, err := s.provider.Exists(ctx, key)
	if err != nil {
		s.logger.Error("cache exists failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

// GetMultiple returns the encoded payloads for the live subset of keys.
// Provider failures are absorbed and reported as an empty map.
func (s *Service) GetMultiple(ctx context.Context, keys []string) map[string]json.RawMessage {
	payloads, err := s.provider.GetMultiple(ctx, keys)
	if err != nil {
		s.logger.Error("cache multi-get failed", zap.Strings("keys", keys), zap.Error(err))
		return map[string]json.RawMessage{}
	}
	return payloads
}

// RemoveByPattern removes every key matching the anchored `*`-glob.
// Failures are logged and returned.
func (s *Service) RemoveByPattern(ctx context.Context, pattern string) error {
	if err := s.provider.RemoveByPattern(ctx, pattern); err != nil {
		s.logger.Error("cache pattern remove failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Fetch fetches and decodes the value under key as a T through the service's
// read policy: any failure is a miss.
func Fetch[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var value T
	if !s.Get(ctx, key, &value) {
		var zero T
		return zero, false
	}
	return value, true
}

// FetchMultiple decodes the live subset of keys as T values. Entries that fail
// to decode are logged and dropped, matching the read-path policy.
func FetchMultiple[T any](ctx context.Context, s *Service, keys []string) map[string]T {
	payloads := s.GetMultiple(ctx, keys)
	out := make(map[string]T, len(payloads))
	for key, payload := range payloads {
		var value T
		if err := json.Unmarshal(payload, &value); err != nil {
			s.logger.Error("cache decode failed", zap.String("key", key), zap.Error(err))
			continue
		}
		out[key] = value
	}
	return out
}
