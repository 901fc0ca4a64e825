package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/receipt"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
)

const (
	ClearPrompt = "Are you sure you want to empty the cart?"

	sideEffectTimeout = 5 * time.Second
)

// ErrNotConfirmed is returned by Clear when the user declines.
var ErrNotConfirmed = errors.New("clear not confirmed")

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

type CatalogLoader interface {
	EnsureLoaded(ctx context.Context) error
}

type Sessions interface {
	Acquire(ctx context.Context, id string) (*session.Session, func())
}

type StorefrontService struct {
	store     *catalog.Store
	loader    CatalogLoader
	board     *view.CatalogBoard
	sessions  Sessions
	ledger    receipt.Ledger
	publisher events.Publisher
	logger    *zap.Logger
}

func NewStorefrontService(
	store *catalog.Store,
	loader CatalogLoader,
	board *view.CatalogBoard,
	sessions Sessions,
	ledger receipt.Ledger,
	publisher events.Publisher,
	logger *zap.Logger,
) *StorefrontService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontService{
		store:     store,
		loader:    loader,
		board:     board,
		sessions:  sessions,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
	}
}

// Catalog returns the products of one category, or all of them for "all"
// and the empty string. A failed load yields the error view.
func (s *StorefrontService) Catalog(ctx context.Context, category string) view.CatalogView {
	if category == "" {
		category = domain.AllCategories
	}
	// the loader renders the failure onto the board
	_ = s.loader.EnsureLoaded(ctx)
	return s.board.Filtered(s.store.Filter(category))
}

func (s *StorefrontService) Categories(ctx context.Context) []string {
	_ = s.loader.EnsureLoaded(ctx)
	return s.store.Categories()
}

func (s *StorefrontService) Cart(ctx context.Context, sessionID string) view.CartView {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	return sess.Board.Latest()
}

func (s *StorefrontService) Flashes(ctx context.Context, sessionID string) []view.Flash {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	return sess.Flashes.Active()
}

// Notify shows a message to the session without touching the cart.
func (s *StorefrontService) Notify(ctx context.Context, sessionID, message string) {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	sess.Flashes.Notify(message)
}

func (s *StorefrontService) AddToCart(ctx context.Context, sessionID string, productID int64) view.CartView {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	sess.Engine.Add(productID)
	return sess.Board.Latest()
}

func (s *StorefrontService) ChangeQuantity(ctx context.Context, sessionID string, productID int64, delta int) view.CartView {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	sess.Engine.ChangeQuantity(productID, delta)
	return sess.Board.Latest()
}

func (s *StorefrontService) RemoveFromCart(ctx context.Context, sessionID string, productID int64) view.CartView {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()
	sess.Engine.Remove(productID)
	return sess.Board.Latest()
}

// Clear empties the cart once the confirmer agrees. An empty cart is
// reported as cart.ErrEmptyCart without asking.
func (s *StorefrontService) Clear(ctx context.Context, sessionID string, confirmer Confirmer) (view.CartView, error) {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()

	if sess.Engine.Cart().IsEmpty() {
		return sess.Board.Latest(), cart.ErrEmptyCart
	}
	if !confirmer.Confirm(ClearPrompt) {
		return sess.Board.Latest(), ErrNotConfirmed
	}

	sess.Engine.Clear()
	return sess.Board.Latest(), nil
}

// Checkout completes the session's cart. Recording the receipt and
// publishing the event are best effort: failures are logged and the
// receipt is still returned.
func (s *StorefrontService) Checkout(ctx context.Context, sessionID string) (domain.Receipt, error) {
	sess, release := s.sessions.Acquire(ctx, sessionID)
	defer release()

	rc, err := sess.Engine.Checkout()
	if err != nil {
		return domain.Receipt{}, err
	}
	rc.SessionID = sessionID

	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.ledger != nil {
		if err := s.ledger.Save(sideCtx, rc); err != nil {
			s.logger.Error("receipt save failed",
				zap.String("session_id", sessionID),
				zap.String("receipt_id", rc.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.publisher.PublishCheckout(sideCtx, rc); err != nil {
		s.logger.Error("checkout event publish failed",
			zap.String("session_id", sessionID),
			zap.String("receipt_id", rc.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("checkout completed",
		zap.String("session_id", sessionID),
		zap.String("receipt_id", rc.ID),
		zap.Int("total_items", rc.TotalItems),
		zap.String("total_price", rc.TotalPrice.StringFixed(2)),
	)
	return rc, nil
}

func (s *StorefrontService) Receipts(ctx context.Context, sessionID string) ([]domain.Receipt, error) {
	if s.ledger == nil {
		return []domain.Receipt{}, nil
	}
	return s.ledger.ListBySession(ctx, sessionID)
}
