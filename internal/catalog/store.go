package catalog

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Store holds the product list fetched at startup. Readers never see a
// partially loaded list: Load swaps the slice wholesale.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[int64]int
	loaded   bool
}

func NewStore() *Store {
	return &Store{byID: make(map[int64]int)}
}

// Load replaces the held list.
func (s *Store) Load(products []domain.Product) {
	list := make([]domain.Product, len(products))
	copy(list, products)

	index := make(map[int64]int, len(list))
	for i, p := range list {
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = list
	s.byID = index
	s.loaded = true
}

// Filter returns every product for domain.AllCategories, otherwise the
// products of the given category in their original order.
func (s *Store) Filter(category string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == domain.AllCategories {
		out := make([]domain.Product, len(s.products))
		copy(out, s.products)
		return out
	}

	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Get(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Categories lists distinct categories in first-seen order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Loaded reports whether Load has been called at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
