package view

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	MsgCartEmpty    = "Your cart is empty"
	MsgThankYou     = "Thank you for your purchase!"
	MsgPurchaseDone = "Purchase complete!"
)

type ReceiptView struct {
	ID          string     `json:"id"`
	Lines       []LineView `json:"lines"`
	TotalItems  int        `json:"total_items"`
	TotalPrice  string     `json:"total_price"`
	CompletedAt time.Time  `json:"completed_at"`
}

func BuildReceipt(r domain.Receipt) ReceiptView {
	lines := BuildCart(domain.Cart{Lines: r.Lines}).Lines
	return ReceiptView{
		ID:          r.ID,
		Lines:       lines,
		TotalItems:  r.TotalItems,
		TotalPrice:  r.TotalPrice.StringFixed(2),
		CompletedAt: r.CompletedAt,
	}
}

func BuildReceipts(rs []domain.Receipt) []ReceiptView {
	out := make([]ReceiptView, 0, len(rs))
	for _, r := range rs {
		out = append(out, BuildReceipt(r))
	}
	return out
}
