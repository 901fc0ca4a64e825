package cart

import "github.com/fjod/go_cart/storefront/internal/domain"

// Catalog is the product lookup the engine needs for Add.
type Catalog interface {
	Get(id int64) (domain.Product, bool)
}

// Renderer is called with the current cart after every mutation.
type Renderer interface {
	RenderCart(cart domain.Cart)
}

// Persister writes the current cart through after every mutation. It must
// not fail observably; implementations log their own errors.
type Persister interface {
	Save(cart domain.Cart)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(message string)
}

// Observers groups the collaborators the engine drives. Nil fields are
// replaced by no-ops.
type Observers struct {
	Renderer  Renderer
	Persister Persister
	Notifier  Notifier
}

type nopObserver struct{}

func (nopObserver) RenderCart(domain.Cart) {}
func (nopObserver) Save(domain.Cart)       {}
func (nopObserver) Notify(string)          {}

func (o Observers) withDefaults() Observers {
	if o.Renderer == nil {
		o.Renderer = nopObserver{}
	}
	if o.Persister == nil {
		o.Persister = nopObserver{}
	}
	if o.Notifier == nil {
		o.Notifier = nopObserver{}
	}
	return o
}
