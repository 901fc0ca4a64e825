package repository

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// WriteThrough adapts a CartRepository to the engine's fire-and-forget
// Persister: each save gets its own timeout and errors are only logged.
type WriteThrough struct {
	repo      CartRepository
	sessionID string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewWriteThrough(repo CartRepository, sessionID string, timeout time.Duration, logger *zap.Logger) *WriteThrough {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &WriteThrough{
		repo:      repo,
		sessionID: sessionID,
		timeout:   timeout,
		logger:    logger,
	}
}

func (w *WriteThrough) Save(cart domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.repo.Save(ctx, w.sessionID, cart); err != nil {
		w.logger.Error("cart save failed",
			zap.String("session_id", w.sessionID),
			zap.Int("lines", len(cart.Lines)),
			zap.Error(err),
		)
	}
}
