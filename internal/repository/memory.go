package repository

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryRepository keeps carts in process memory. Carts survive engine
// eviction but not a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]domain.Cart)}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.carts[sessionID]
	if !ok {
		return domain.Cart{}, ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, cart domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = cart.Clone()
	return nil
}
