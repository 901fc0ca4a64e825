package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

// MaxQuantityDelta bounds a single quantity change through the API.
const MaxQuantityDelta = 999

type ChangeQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type ReceiptsResponse struct {
	Receipts []view.ReceiptView `json:"receipts"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	v := h.svc.Catalog(r.Context(), r.URL.Query().Get("category"))
	if v.Error != "" {
		h.respondError(w, http.StatusServiceUnavailable, "catalog_unavailable", v.Error)
		return
	}
	h.respondJSON(w, http.StatusOK, v)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories(r.Context())})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.svc.Cart(r.Context(), sessionIDFromContext(r.Context())))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	v := h.svc.AddToCart(r.Context(), sessionIDFromContext(r.Context()), req.ProductID)
	h.respondJSON(w, http.StatusOK, v)
}

func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Delta < -MaxQuantityDelta || req.Delta > MaxQuantityDelta {
		h.respondError(w, http.StatusBadRequest, "invalid_delta", "delta must be between -999 and 999")
		return
	}

	v := h.svc.ChangeQuantity(r.Context(), sessionIDFromContext(r.Context()), productID, req.Delta)
	h.respondJSON(w, http.StatusOK, v)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	v := h.svc.RemoveFromCart(r.Context(), sessionIDFromContext(r.Context()), productID)
	h.respondJSON(w, http.StatusOK, v)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Clear(r.Context(), sessionIDFromContext(r.Context()), QueryConfirmer{r: r})
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		h.respondError(w, http.StatusConflict, "empty_cart", view.MsgCartEmpty)
	case errors.Is(err, service.ErrNotConfirmed):
		h.respondJSON(w, http.StatusPreconditionFailed, ErrorResponse{
			Error:   "clearing the cart must be confirmed with confirm=true",
			Code:    "confirmation_required",
			Details: service.ClearPrompt,
		})
	case err != nil:
		h.logger.Error("clear cart failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		h.respondJSON(w, http.StatusOK, v)
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.Checkout(r.Context(), sessionIDFromContext(r.Context()))
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		h.respondError(w, http.StatusConflict, "empty_cart", view.MsgCartEmpty)
	case err != nil:
		h.logger.Error("checkout failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		h.respondJSON(w, http.StatusCreated, view.BuildReceipt(rc))
	}
}

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.Receipts(r.Context(), sessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list receipts failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "could not load receipts")
		return
	}
	h.respondJSON(w, http.StatusOK, ReceiptsResponse{Receipts: view.BuildReceipts(receipts)})
}

func (h *Handler) productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}
