package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mapStore is a minimal Store for exercising the typed layers without the
// memory backend's timing behavior.
type mapStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ Expiration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *mapStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	return ok, nil
}

func (s *mapStore) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

func (s *mapStore) DeletePattern(_ context.Context, pattern string) (int, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.items {
		if re.MatchString(key) {
			delete(s.items, key)
			removed++
		}
	}
	return removed, nil
}

func (s *mapStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *mapStore) Close() error { return nil }

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestProviderRoundTrip(t *testing.T) {
	p := NewProvider(newMapStore())
	ctx := context.Background()

	want := testRecord{Name: "kettle", Count: 3}
	if err := p.Set(ctx, "product:1:details", want, ExpireAfter(time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got testRecord
	ok, err := p.Get(ctx, "product:1:details", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() reported a miss for a stored key")
	}
	if got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}
}

func TestProviderMissIsNotAnError(t *testing.T) {
	p := NewProvider(newMapStore())

	var got testRecord
	ok, err := p.Get(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("Get() on absent key error = %v", err)
	}
	if ok {
		t.Fatal("Get() reported a hit for an absent key")
	}
}

func TestProviderSetRejectsUnencodableValue(t *testing.T) {
	store := newMapStore()
	p := NewProvider(store)

	if err := p.Set(context.Background(), "bad", make(chan int), ExpireAfter(time.Minute)); err == nil {
		t.Fatal("Set() accepted an unencodable value")
	}
	if ok, _ := store.Exists(context.Background(), "bad"); ok {
		t.Fatal("failed Set() still stored a payload")
	}
}

func TestProviderGetSurfacesDecodeFailure(t *testing.T) {
	store := newMapStore()
	if err := store.Set(context.Background(), "corrupt", []byte("{not json"), Expiration{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	p := NewProvider(store)
	var got testRecord
	if _, err := p.Get(context.Background(), "corrupt", &got); err == nil {
		t.Fatal("Get() swallowed a decode failure")
	}
}

func TestProviderRemoveIdempotent(t *testing.T) {
	p := NewProvider(newMapStore())
	ctx := context.Background()

	if err := p.Remove(ctx, "never-set"); err != nil {
		t.Fatalf("Remove() on absent key error = %v", err)
	}

	if err := p.Set(ctx, "k", "v", Expiration{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := p.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	var got string
	if ok, _ := p.Get(ctx, "k", &got); ok {
		t.Fatal("Get() hit after Remove")
	}
}

func TestProviderGetMultipleSubset(t *testing.T) {
	p := NewProvider(newMapStore())
	ctx := context.Background()

	if err := p.Set(ctx, "a", 1, Expiration{}); err != nil {
		t.Fatalf("Set(a) error = %v", err)
	}
	if err := p.Set(ctx, "c", 3, Expiration{}); err != nil {
		t.Fatalf("Set(c) error = %v", err)
	}

	got, err := GetMultiple[int](ctx, p, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("GetMultiple() error = %v", err)
	}
	if len(got) != 2 || got["a"] != 1 || got["c"] != 3 {
		t.Fatalf("GetMultiple() = %v, want map[a:1 c:3]", got)
	}
	if _, ok := got["b"]; ok {
		t.Fatal("GetMultiple() contains never-set key b")
	}
}

func TestProviderGenericGet(t *testing.T) {
	p := NewProvider(newMapStore())
	ctx := context.Background()

	if err := p.Set(ctx, "k", testRecord{Name: "lamp", Count: 7}, Expiration{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := Get[testRecord](ctx, p, "k")
	if err != nil {
		t.Fatalf("Get[T]() error = %v", err)
	}
	if !ok || got.Name != "lamp" || got.Count != 7 {
		t.Fatalf("Get[T]() = %+v, ok=%v", got, ok)
	}

	if _, ok, err := Get[testRecord](ctx, p, "absent"); err != nil || ok {
		t.Fatalf("Get[T]() on absent key = ok=%v err=%v", ok, err)
	}
}

func TestProviderRemoveByPattern(t *testing.T) {
	store := newMapStore()
	p := NewProvider(store)
	ctx := context.Background()

	for _, key := range []string{"cart:u1:items", "cart:u2:items", "product:1:details"} {
		if err := p.Set(ctx, key, key, Expiration{}); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	if err := p.RemoveByPattern(ctx, "cart:u1:*"); err != nil {
		t.Fatalf("RemoveByPattern() error = %v", err)
	}

	if ok, _ := p.Exists(ctx, "cart:u1:items"); ok {
		t.Fatal("matching key survived RemoveByPattern")
	}
	if ok, _ := p.Exists(ctx, "cart:u2:items"); !ok {
		t.Fatal("non-matching key was removed")
	}
}
