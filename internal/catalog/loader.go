package catalog

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// Renderer receives the catalog after a load, or the error when it failed.
type Renderer interface {
	RenderProducts(products []domain.Product)
	RenderError(err error)
}

// Loader populates the store from the fetcher. A successful load is final;
// after a failure the next EnsureLoaded tries again.
type Loader struct {
	mu       sync.Mutex
	fetcher  Fetcher
	store    *Store
	renderer Renderer
	logger   *zap.Logger
}

func NewLoader(fetcher Fetcher, store *Store, renderer Renderer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		fetcher:  fetcher,
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// Load fetches unconditionally and replaces the store contents on success.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// EnsureLoaded fetches only when no load has succeeded yet.
func (l *Loader) EnsureLoaded(ctx context.Context) error {
	if l.store.Loaded() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store.Loaded() {
		return nil
	}
	return l.load(ctx)
}

func (l *Loader) load(ctx context.Context) error {
	products, err := l.fetcher.FetchCatalog(ctx)
	if err != nil {
		l.logger.Warn("catalog fetch failed", zap.Error(err))
		l.renderer.RenderError(err)
		return err
	}

	l.store.Load(products)
	l.logger.Info("catalog loaded", zap.Int("products", len(products)))
	l.renderer.RenderProducts(l.store.Filter(domain.AllCategories))
	return nil
}
