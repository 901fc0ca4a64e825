package http

import (
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Storefront is the application service the handlers drive.
type Storefront interface {
	Catalog(ctx context.Context, category string) view.CatalogView
	Categories(ctx context.Context) []string
	Cart(ctx context.Context, sessionID string) view.CartView
	Flashes(ctx context.Context, sessionID string) []view.Flash
	Notify(ctx context.Context, sessionID, message string)
	AddToCart(ctx context.Context, sessionID string, productID int64) view.CartView
	ChangeQuantity(ctx context.Context, sessionID string, productID int64, delta int) view.CartView
	RemoveFromCart(ctx context.Context, sessionID string, productID int64) view.CartView
	Clear(ctx context.Context, sessionID string, confirmer service.Confirmer) (view.CartView, error)
	Checkout(ctx context.Context, sessionID string) (domain.Receipt, error)
	Receipts(ctx context.Context, sessionID string) ([]domain.Receipt, error)
}

type Handler struct {
	svc    Storefront
	logger *zap.Logger
	pages  *template.Template
}

func NewHandler(svc Storefront, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := template.New("_root").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		svc:    svc,
		logger: logger,
		pages:  pages,
	}, nil
}
