package view

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const catalogErrorMessage = "Could not load the products, please try again later"

type ProductView struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Price       string  `json:"price"`
	Rate        float64 `json:"rate"`
	RatingCount int     `json:"rating_count"`
}

func BuildProducts(products []domain.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Image:       p.Image,
			Price:       p.Price.StringFixed(2),
			Rate:        p.Rating.Rate,
			RatingCount: p.Rating.Count,
		})
	}
	return out
}

// CatalogView is either a product grid or an error state.
type CatalogView struct {
	Products []ProductView `json:"products"`
	Error    string        `json:"error,omitempty"`
}

// CatalogBoard is the catalog render collaborator. It remembers the outcome
// of the last load so pages rendered later can show the error state.
type CatalogBoard struct {
	mu     sync.RWMutex
	latest CatalogView
	cause  error
}

func NewCatalogBoard() *CatalogBoard {
	return &CatalogBoard{latest: CatalogView{Products: []ProductView{}}}
}

func (b *CatalogBoard) RenderProducts(products []domain.Product) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = CatalogView{Products: BuildProducts(products)}
	b.cause = nil
}

func (b *CatalogBoard) RenderError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = CatalogView{Products: []ProductView{}, Error: catalogErrorMessage}
	b.cause = err
}

// Failed reports the last load error, nil after a successful load.
func (b *CatalogBoard) Failed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cause
}

// Filtered renders a filtered list while keeping the error state if the
// last load failed.
func (b *CatalogBoard) Filtered(products []domain.Product) CatalogView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.cause != nil {
		return b.latest
	}
	return CatalogView{Products: BuildProducts(products)}
}
