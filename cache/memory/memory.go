// Package memory implements the in-process cache store: a concurrency-safe
// map with per-entry absolute or sliding expiration, lazy expiry on access, an
// optional background sweep, and anchored glob bulk removal. A single map holds
// both the entries and the live-key set, so pattern invalidation iterates keys
// without a second bookkeeping structure to keep consistent.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dnery/storecache/cache"
)

// Store is the in-memory cache backend.
//
// Store owns its sweep goroutine; call Close to stop it.
type Store struct {
	mu    sync.RWMutex
	items map[string]*entry
	opts  Options

	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

var _ cache.Store = (*Store)(nil)

type entry struct {
	value      []byte
	insertedAt time.Time
	deadline   time.Time
	window     time.Duration
	sliding    bool
}

func (e *entry) expired(now time.Time) bool { return !e.deadline.After(now) }

// New constructs a store and starts the background sweep when enabled.
func New(opts Options) *Store {
	s := &Store{
		items: make(map[string]*entry),
		opts:  opts.withDefaults(),
		stop:  make(chan struct{}),
	}
	if s.opts.SweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop()
	}
	return s
}

// Get returns the value stored under key, or cache.ErrNotFound when the key is
// absent or its deadline has passed. Sliding entries get their deadline pushed
// to now+window.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.items[key]
	if !ok {
		s.mu.RUnlock()
		return nil, cache.ErrNotFound
	}
	if e.expired(now) {
		s.mu.RUnlock()
		s.expireLazily(key, now)
		return nil, cache.ErrNotFound
	}
	if !e.sliding {
		value := cloneBytes(e.value)
		s.mu.RUnlock()
		return value, nil
	}
	s.mu.RUnlock()

	// Sliding reads refresh the deadline, which needs the write lock.
	// Re-check everything: the entry may have been replaced or removed
	// between the two locks.
	s.mu.Lock()
	e, ok = s.items[key]
	if !ok {
		s.mu.Unlock()
		return nil, cache.ErrNotFound
	}
	if e.expired(now) {
		delete(s.items, key)
		s.mu.Unlock()
		s.notifyEvict(key)
		return nil, cache.ErrNotFound
	}
	if e.sliding {
		e.deadline = now.Add(e.window)
	}
	value := cloneBytes(e.value)
	s.mu.Unlock()
	return value, nil
}

// Set stores value under key, replacing any previous entry. A zero expiration
// selects the default sliding window.
func (s *Store) Set(_ context.Context, key string, value []byte, exp cache.Expiration) error {
	now := time.Now()
	window := exp.Window()
	sliding := exp.Sliding()
	if exp.IsZero() {
		window = s.opts.DefaultWindow
		sliding = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cache.ErrClosed
	}
	s.items[key] = &entry{
		value:      cloneBytes(value),
		insertedAt: now,
		deadline:   now.Add(window),
		window:     window,
		sliding:    sliding,
	}
	return nil
}

// Delete removes key. Deleting an absent key (including one the sweep already
// reclaimed) is a successful no-op, so explicit removal and expiry can race
// freely.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cache.ErrClosed
	}
	delete(s.items, key)
	return nil
}

// Exists reports whether key holds a live value. It neither refreshes sliding
// deadlines nor reclaims expired entries.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	return ok && !e.expired(now), nil
}

// GetMulti returns the subset of keys holding a live value. Each hit counts as
// an access for sliding expiration.
func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if errors.Is(err, cache.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

// DeletePattern removes every key matching the anchored `*`-glob and reports
// how many entries went away. The glob runs against a snapshot of the key set
// taken at call time; keys written while the scan runs may survive.
func (s *Store) DeletePattern(_ context.Context, pattern string) (int, error) {
	re, err := cache.CompilePattern(pattern)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return 0, cache.ErrClosed
	}
	snapshot := make([]string, 0, len(s.items))
	for key := range s.items {
		snapshot = append(snapshot, key)
	}
	s.mu.RUnlock()

	matches := snapshot[:0]
	for _, key := range snapshot {
		if re.MatchString(key) {
			matches = append(matches, key)
		}
	}

	removed := 0
	s.mu.Lock()
	for _, key := range matches {
		if _, ok := s.items[key]; ok {
			delete(s.items, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed, nil
}

// Keys returns a snapshot of the currently live keys.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.items))
	for key, e := range s.items {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Len returns the number of stored entries, including expired ones the sweep
// has not reclaimed yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	s.wg.Wait()
	return nil
}

func (s *Store) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep reclaims every expired entry and fires the eviction callback for each,
// outside the lock.
func (s *Store) sweep(now time.Time) int {
	var evicted []string
	s.mu.Lock()
	for key, e := range s.items {
		if e.expired(now) {
			delete(s.items, key)
			evicted = append(evicted, key)
		}
	}
	s.mu.Unlock()

	for _, key := range evicted {
		s.notifyEvict(key)
	}
	return len(evicted)
}

// expireLazily reclaims key if it is still present and still expired, then
// fires the eviction callback.
func (s *Store) expireLazily(key string, now time.Time) {
	s.mu.Lock()
	e, ok := s.items[key]
	if !ok || !e.expired(now) {
		s.mu.Unlock()
		return
	}
	delete(s.items, key)
	s.mu.Unlock()
	s.notifyEvict(key)
}

func (s *Store) notifyEvict(key string) {
	if s.opts.OnEvict != nil {
		s.opts.OnEvict(key)
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
