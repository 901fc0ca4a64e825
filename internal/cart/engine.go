package cart

import (
	"math"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

const (
	MsgAdded   = "Product added to cart"
	MsgRemoved = "Product removed from cart"
	MsgCleared = "Cart emptied"
)

// Engine owns one cart. Every operation runs to completion under the engine
// lock, so callers never observe an intermediate state.
//
// After a successful mutation the engine renders, persists and, where the
// operation has a message, notifies, in that order. No-ops trigger nothing.
type Engine struct {
	mu        sync.Mutex
	cart      domain.Cart
	catalog   Catalog
	observers Observers
	now       func() time.Time
}

type Option func(*Engine)

// WithClock sets the time source used for receipts.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(catalog Catalog, observers Observers, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		observers: observers.withDefaults(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore replaces the cart wholesale with a persisted one. Observers are
// not called.
func (e *Engine) Restore(c domain.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = sanitize(c)
}

// Cart returns a copy of the current cart.
func (e *Engine) Cart() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone()
}

func (e *Engine) Line(productID int64) (domain.CartLine, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.cart.Index(productID)
	if i < 0 {
		return domain.CartLine{}, false
	}
	return e.cart.Lines[i], true
}

// Add puts one unit of the product in the cart. Unknown products are ignored.
func (e *Engine) Add(productID int64) domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.catalog.Get(productID)
	if !ok {
		return e.cart.Clone()
	}

	if i := e.cart.Index(productID); i >= 0 {
		if e.cart.Lines[i].Quantity == math.MaxInt {
			return e.cart.Clone()
		}
		e.cart.Lines[i].Quantity++
	} else {
		e.cart.Lines = append(e.cart.Lines, domain.CartLine{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  1,
		})
	}

	e.changed(MsgAdded)
	return e.cart.Clone()
}

// ChangeQuantity adds delta to the line's quantity. A line that would drop to
// zero or below is removed. An increase that overflows int is a no-op.
func (e *Engine) ChangeQuantity(productID int64, delta int) domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.cart.Index(productID)
	if i < 0 || delta == 0 {
		return e.cart.Clone()
	}

	old := e.cart.Lines[i].Quantity
	q := old + delta
	if delta > 0 && q < old {
		return e.cart.Clone()
	}
	if q <= 0 {
		e.removeAt(i)
		e.changed(MsgRemoved)
		return e.cart.Clone()
	}

	e.cart.Lines[i].Quantity = q
	e.changed("")
	return e.cart.Clone()
}

func (e *Engine) Remove(productID int64) domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.cart.Index(productID)
	if i < 0 {
		return e.cart.Clone()
	}

	e.removeAt(i)
	e.changed(MsgRemoved)
	return e.cart.Clone()
}

// Clear empties the cart without asking. Clearing an empty cart is a no-op.
func (e *Engine) Clear() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return domain.Cart{}
	}

	e.cart = domain.Cart{}
	e.changed(MsgCleared)
	return domain.Cart{}
}

func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.TotalItems()
}

func (e *Engine) TotalPrice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.TotalPrice().StringFixed(2)
}

// Checkout summarises the cart into a receipt and empties it in one step.
func (e *Engine) Checkout() (domain.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cart.IsEmpty() {
		return domain.Receipt{}, ErrEmptyCart
	}

	receipt := domain.Receipt{
		ID:          uuid.NewString(),
		Lines:       e.cart.Clone().Lines,
		TotalItems:  e.cart.TotalItems(),
		TotalPrice:  e.cart.TotalPrice(),
		CompletedAt: e.now().UTC(),
	}

	e.cart = domain.Cart{}
	e.changed("")
	return receipt, nil
}

func (e *Engine) removeAt(i int) {
	lines := make([]domain.CartLine, 0, len(e.cart.Lines)-1)
	lines = append(lines, e.cart.Lines[:i]...)
	lines = append(lines, e.cart.Lines[i+1:]...)
	e.cart.Lines = lines
}

// changed runs the side effects of a mutation. Caller holds e.mu.
func (e *Engine) changed(message string) {
	snapshot := e.cart.Clone()
	e.observers.Renderer.RenderCart(snapshot)
	e.observers.Persister.Save(snapshot.Clone())
	if message != "" {
		e.observers.Notifier.Notify(message)
	}
}

// sanitize enforces the cart invariants on restored data: one line per
// product, quantities of at least one.
func sanitize(c domain.Cart) domain.Cart {
	out := domain.Cart{}
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := out.Index(l.ProductID); i >= 0 {
			if q := out.Lines[i].Quantity + l.Quantity; q > 0 {
				out.Lines[i].Quantity = q
			} else {
				out.Lines[i].Quantity = math.MaxInt
			}
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}
