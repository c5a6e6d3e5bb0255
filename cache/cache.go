package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("cache: key not found")
	ErrClosed   = errors.New("cache: store closed")
)

// Expiration describes when an entry stops being live. The zero value asks the
// store for its default sliding window.
type Expiration struct {
	window  time.Duration
	sliding bool
}

// ExpireAfter fixes the deadline at insertion time.
func ExpireAfter(d time.Duration) Expiration {
	return Expiration{window: d}
}

// ExpireSliding resets the deadline to now+d on every read.
func ExpireSliding(d time.Duration) Expiration {
	return Expiration{window: d, sliding: true}
}

func (e Expiration) IsZero() bool          { return e.window <= 0 }
func (e Expiration) Window() time.Duration { return e.window }
func (e Expiration) Sliding() bool         { return e.sliding }

// Store is a byte-level cache that owns both the entries and the set of live
// keys, so bulk operations can iterate keys without external bookkeeping.
// Values must round-trip untouched: Get returns exactly the bytes given to Set.
//
// Operations accept a context for interface symmetry only; implementations are
// in-memory and never block on it.
type Store interface {
	// Get returns the value for key, refreshing a sliding deadline.
	// Misses (absent or expired keys) surface as ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero Expiration selects the store's
	// default sliding window.
	Set(ctx context.Context, key string, value []byte, exp Expiration) error

	// Delete removes key. Deleting an absent key is a successful no-op.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key holds a live value. It never refreshes a
	// sliding deadline.
	Exists(ctx context.Context, key string) (bool, error)

	// GetMulti returns the subset of keys that currently hold a live value.
	// Absent and expired keys are omitted, never mapped to nil.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// DeletePattern removes every key matching the anchored `*`-glob and
	// reports how many entries were removed. The match runs against a
	// snapshot of the key set taken at call time; keys written mid-scan may
	// survive.
	DeletePattern(ctx context.Context, pattern string) (int, error)

	// Keys returns a snapshot of the currently live keys.
	Keys(ctx context.Context) ([]string, error)

	// Close stops background maintenance. Safe to call more than once.
	Close() error
}
