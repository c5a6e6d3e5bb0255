package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	simAdjectives = []string{"Compact", "Rugged", "Foldable", "Wireless", "Vintage", "Modular", "Heavy-Duty", "Slim"}
	simNouns      = []string{"Kettle", "Backpack", "Desk Lamp", "Notebook", "Headphones", "Thermos", "Toolkit", "Speaker"}
)

// SimulatedSource fabricates a stable pseudo catalog so the service can run
// and be exercised without a database behind it.
type SimulatedSource struct {
	mu       sync.RWMutex
	products map[string]Product
	ids      []string
}

// NewSimulatedSource generates size products from the given seed. The same
// seed yields the same names, prices, and stock levels; only the uuid IDs
// differ between runs.
func NewSimulatedSource(size int, seed int64) *SimulatedSource {
	if size <= 0 {
		size = 32
	}
	rng := rand.New(rand.NewSource(seed))

	s := &SimulatedSource{products: make(map[string]Product, size)}
	for i := 0; i < size; i++ {
		p := Product{
			ID:         uuid.NewString(),
			Name:       fmt.Sprintf("%s %s", simAdjectives[rng.Intn(len(simAdjectives))], simNouns[rng.Intn(len(simNouns))]),
			PriceCents: int64(rng.Intn(19900) + 100),
			Currency:   "EUR",
			Stock:      rng.Intn(50),
			UpdatedAt:  time.Now().UTC(),
		}
		p.Description = fmt.Sprintf("%s, item %03d of the simulated range.", p.Name, i+1)
		s.products[p.ID] = p
		s.ids = append(s.ids, p.ID)
	}
	return s
}

// Seed inserts or replaces products, keeping ID order stable for IDs().
func (s *SimulatedSource) Seed(products ...Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.ids = append(s.ids, p.ID)
		}
		s.products[p.ID] = p
	}
}

// IDs returns the product IDs in generation order.
func (s *SimulatedSource) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.ids...)
}

func (s *SimulatedSource) Product(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *SimulatedSource) Products(_ context.Context, ids []string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
