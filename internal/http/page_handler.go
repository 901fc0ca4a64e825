package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PageData struct {
	Catalog     view.CatalogView
	Categories  []string
	Selected    string
	Cart        view.CartView
	Flashes     []view.Flash
	Receipt     *view.ReceiptView
	Receipts    []view.ReceiptView
	ClearPrompt string
	ThankYou    string
	PurchaseMsg string
}

// Page renders the storefront: catalog, cart, flashes and, after a
// checkout, the receipt.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = domain.AllCategories
	}

	receipts, err := h.svc.Receipts(ctx, sessionID)
	if err != nil {
		h.logger.Warn("list receipts failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	receiptViews := view.BuildReceipts(receipts)

	data := PageData{
		Catalog:     h.svc.Catalog(ctx, selected),
		Categories:  append([]string{domain.AllCategories}, h.svc.Categories(ctx)...),
		Selected:    selected,
		Cart:        h.svc.Cart(ctx, sessionID),
		Flashes:     h.svc.Flashes(ctx, sessionID),
		Receipts:    receiptViews,
		ClearPrompt: service.ClearPrompt,
		ThankYou:    view.MsgThankYou,
		PurchaseMsg: view.MsgPurchaseDone,
	}
	if id := r.URL.Query().Get("receipt"); id != "" {
		for i := range receiptViews {
			if receiptViews[i].ID == id {
				data.Receipt = &receiptViews[i]
				break
			}
		}
	}

	h.render(w, data)
}

func (h *Handler) render(w http.ResponseWriter, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("template exec error", zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
	}
}

func (h *Handler) FormAdd(w http.ResponseWriter, r *http.Request) {
	if id, ok := formProductID(r); ok {
		h.svc.AddToCart(r.Context(), sessionIDFromContext(r.Context()), id)
	}
	redirectHome(w, r, nil)
}

func (h *Handler) FormIncrement(w http.ResponseWriter, r *http.Request) {
	if id, ok := formProductID(r); ok {
		h.svc.ChangeQuantity(r.Context(), sessionIDFromContext(r.Context()), id, 1)
	}
	redirectHome(w, r, nil)
}

func (h *Handler) FormDecrement(w http.ResponseWriter, r *http.Request) {
	if id, ok := formProductID(r); ok {
		h.svc.ChangeQuantity(r.Context(), sessionIDFromContext(r.Context()), id, -1)
	}
	redirectHome(w, r, nil)
}

func (h *Handler) FormRemove(w http.ResponseWriter, r *http.Request) {
	if id, ok := formProductID(r); ok {
		h.svc.RemoveFromCart(r.Context(), sessionIDFromContext(r.Context()), id)
	}
	redirectHome(w, r, nil)
}

// FormClear ignores an empty cart and a declined confirmation.
func (h *Handler) FormClear(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.Clear(r.Context(), sessionIDFromContext(r.Context()), FormConfirmer{r: r})
	if err != nil && !errors.Is(err, cart.ErrEmptyCart) && !errors.Is(err, service.ErrNotConfirmed) {
		h.logger.Error("clear cart failed", zap.Error(err))
	}
	redirectHome(w, r, nil)
}

func (h *Handler) FormCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFromContext(ctx)

	rc, err := h.svc.Checkout(ctx, sessionID)
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		h.svc.Notify(ctx, sessionID, view.MsgCartEmpty)
		redirectHome(w, r, nil)
	case err != nil:
		h.logger.Error("checkout failed", zap.Error(err))
		redirectHome(w, r, nil)
	default:
		redirectHome(w, r, url.Values{"receipt": {rc.ID}})
	}
}

func formProductID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	return id, err == nil && id > 0
}

// redirectHome sends the browser back to the page, keeping the selected
// category from the posted form.
func redirectHome(w http.ResponseWriter, r *http.Request, q url.Values) {
	if q == nil {
		q = url.Values{}
	}
	if c := r.FormValue("category"); c != "" && c != domain.AllCategories {
		q.Set("category", c)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
