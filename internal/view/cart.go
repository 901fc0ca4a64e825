package view

import (
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type LineView struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartView struct {
	Lines      []LineView `json:"lines"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
	Empty      bool       `json:"empty"`
	Version    uint64     `json:"version"`
}

// BuildCart formats a cart for display. Money is shown with two decimals.
func BuildCart(c domain.Cart) CartView {
	v := CartView{
		Lines:      make([]LineView, 0, len(c.Lines)),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice().StringFixed(2),
		Empty:      c.IsEmpty(),
	}
	for _, l := range c.Lines {
		v.Lines = append(v.Lines, LineView{
			ProductID: l.ProductID,
			Title:     l.Title,
			Image:     l.Image,
			Price:     l.Price.StringFixed(2),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}
	return v
}

// CartBoard is the render collaborator for one session. It keeps the latest
// rendered view; Version counts renders.
type CartBoard struct {
	mu     sync.RWMutex
	latest CartView
}

func NewCartBoard() *CartBoard {
	return &CartBoard{latest: BuildCart(domain.Cart{})}
}

func (b *CartBoard) RenderCart(c domain.Cart) {
	v := BuildCart(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	v.Version = b.latest.Version + 1
	b.latest = v
}

func (b *CartBoard) Latest() CartView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := b.latest
	out.Lines = append([]LineView(nil), b.latest.Lines...)
	return out
}
