package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	name      string
	sessionID string
	productID int64
	delta     int
	message   string
}

type mockStorefront struct {
	mu          sync.Mutex
	calls       []call
	catalog     view.CatalogView
	categories  []string
	cart        view.CartView
	clearErr    error
	confirmed   *bool
	checkout    domain.Receipt
	checkoutErr error
	receipts    []domain.Receipt
	receiptsErr error
}

func (m *mockStorefront) record(c call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockStorefront) Catalog(_ context.Context, category string) view.CatalogView {
	m.record(call{name: "catalog", message: category})
	return m.catalog
}

func (m *mockStorefront) Categories(context.Context) []string { return m.categories }

func (m *mockStorefront) Cart(_ context.Context, sessionID string) view.CartView {
	m.record(call{name: "cart", sessionID: sessionID})
	return m.cart
}

func (m *mockStorefront) Flashes(context.Context, string) []view.Flash { return nil }

func (m *mockStorefront) Notify(_ context.Context, sessionID, message string) {
	m.record(call{name: "notify", sessionID: sessionID, message: message})
}

func (m *mockStorefront) AddToCart(_ context.Context, sessionID string, productID int64) view.CartView {
	m.record(call{name: "add", sessionID: sessionID, productID: productID})
	return m.cart
}

func (m *mockStorefront) ChangeQuantity(_ context.Context, sessionID string, productID int64, delta int) view.CartView {
	m.record(call{name: "change", sessionID: sessionID, productID: productID, delta: delta})
	return m.cart
}

func (m *mockStorefront) RemoveFromCart(_ context.Context, sessionID string, productID int64) view.CartView {
	m.record(call{name: "remove", sessionID: sessionID, productID: productID})
	return m.cart
}

func (m *mockStorefront) Clear(_ context.Context, sessionID string, confirmer service.Confirmer) (view.CartView, error) {
	m.record(call{name: "clear", sessionID: sessionID})
	ok := confirmer.Confirm(service.ClearPrompt)
	m.mu.Lock()
	m.confirmed = &ok
	m.mu.Unlock()
	return m.cart, m.clearErr
}

func (m *mockStorefront) Checkout(_ context.Context, sessionID string) (domain.Receipt, error) {
	m.record(call{name: "checkout", sessionID: sessionID})
	return m.checkout, m.checkoutErr
}

func (m *mockStorefront) Receipts(context.Context, string) ([]domain.Receipt, error) {
	return m.receipts, m.receiptsErr
}

func (m *mockStorefront) lastCall() call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return call{}
	}
	return m.calls[len(m.calls)-1]
}

func newTestRouter(t *testing.T, svc Storefront) http.Handler {
	t.Helper()
	h, err := NewHandler(svc, zap.NewNop())
	require.NoError(t, err)
	return NewRouter(h, zap.NewNop(), 5*time.Second)
}

func do(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthz_NoSessionCookie(t *testing.T) {
	router := newTestRouter(t, &mockStorefront{})

	rec := do(t, router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestListProducts(t *testing.T) {
	svc := &mockStorefront{catalog: view.CatalogView{Products: []view.ProductView{{ID: 1, Title: "Backpack", Price: "10.00"}}}}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodGet, "/api/v1/products?category=bags", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bags", svc.lastCall().message)

	var v view.CatalogView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	require.Len(t, v.Products, 1)
	assert.Equal(t, "10.00", v.Products[0].Price)
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	svc := &mockStorefront{catalog: view.CatalogView{Error: "Could not load the products"}}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "catalog_unavailable", decodeError(t, rec).Code)
}

func TestListCategories(t *testing.T) {
	router := newTestRouter(t, &mockStorefront{categories: []string{"bags", "jewelery"}})

	rec := do(t, router, http.MethodGet, "/api/v1/categories", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CategoriesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"bags", "jewelery"}, resp.Categories)
}

func TestAddItem(t *testing.T) {
	svc := &mockStorefront{cart: view.CartView{TotalItems: 1, TotalPrice: "10.00"}}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: 7})

	require.Equal(t, http.StatusOK, rec.Code)
	last := svc.lastCall()
	assert.Equal(t, "add", last.name)
	assert.Equal(t, int64(7), last.productID)
	assert.NotEmpty(t, last.sessionID)

	var v view.CartView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, "10.00", v.TotalPrice)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"invalid json", "{not json", "invalid_request"},
		{"zero id", AddItemRequestDTO{ProductID: 0}, "invalid_product_id"},
		{"negative id", AddItemRequestDTO{ProductID: -3}, "invalid_product_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockStorefront{}
			router := newTestRouter(t, svc)

			rec := do(t, router, http.MethodPost, "/api/v1/cart/items", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			assert.Empty(t, svc.calls)
		})
	}
}

func TestChangeQuantity(t *testing.T) {
	svc := &mockStorefront{}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodPatch, "/api/v1/cart/items/3", ChangeQuantityRequestDTO{Delta: -2})

	require.Equal(t, http.StatusOK, rec.Code)
	last := svc.lastCall()
	assert.Equal(t, "change", last.name)
	assert.Equal(t, int64(3), last.productID)
	assert.Equal(t, -2, last.delta)
}

func TestChangeQuantity_DeltaOutOfRange(t *testing.T) {
	for _, delta := range []int{MaxQuantityDelta + 1, -MaxQuantityDelta - 1, math.MaxInt} {
		svc := &mockStorefront{}
		router := newTestRouter(t, svc)

		rec := do(t, router, http.MethodPatch, "/api/v1/cart/items/3", ChangeQuantityRequestDTO{Delta: delta})

		assert.Equal(t, http.StatusBadRequest, rec.Code, "delta %d", delta)
		assert.Equal(t, "invalid_delta", decodeError(t, rec).Code)
		assert.Empty(t, svc.calls)
	}
}

func TestChangeQuantity_BadProductID(t *testing.T) {
	router := newTestRouter(t, &mockStorefront{})

	rec := do(t, router, http.MethodPatch, "/api/v1/cart/items/abc", ChangeQuantityRequestDTO{Delta: 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_product_id", decodeError(t, rec).Code)
}

func TestRemoveItem(t *testing.T) {
	svc := &mockStorefront{}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodDelete, "/api/v1/cart/items/4", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "remove", svc.lastCall().name)
	assert.Equal(t, int64(4), svc.lastCall().productID)
}

func TestClearCart_StatusMapping(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		err           error
		wantStatus    int
		wantCode      string
		wantConfirmed bool
	}{
		{"confirmed", "/api/v1/cart?confirm=true", nil, http.StatusOK, "", true},
		{"empty cart", "/api/v1/cart?confirm=yes", cart.ErrEmptyCart, http.StatusConflict, "empty_cart", true},
		{"not confirmed", "/api/v1/cart", service.ErrNotConfirmed, http.StatusPreconditionFailed, "confirmation_required", false},
		{"unexpected", "/api/v1/cart?confirm=on", errors.New("boom"), http.StatusInternalServerError, "internal_error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockStorefront{clearErr: tt.err}
			router := newTestRouter(t, svc)

			rec := do(t, router, http.MethodDelete, tt.target, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
			require.NotNil(t, svc.confirmed)
			assert.Equal(t, tt.wantConfirmed, *svc.confirmed)
		})
	}
}

func TestCheckout(t *testing.T) {
	svc := &mockStorefront{checkout: domain.Receipt{
		ID:         "r-1",
		TotalItems: 3,
		TotalPrice: decimal.RequireFromString("25.5"),
	}}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodPost, "/api/v1/checkout", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var v view.ReceiptView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.Equal(t, "r-1", v.ID)
	assert.Equal(t, "25.50", v.TotalPrice)
}

func TestCheckout_EmptyCart(t *testing.T) {
	router := newTestRouter(t, &mockStorefront{checkoutErr: cart.ErrEmptyCart})

	rec := do(t, router, http.MethodPost, "/api/v1/checkout", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", decodeError(t, rec).Code)
}

func TestListReceipts(t *testing.T) {
	svc := &mockStorefront{receipts: []domain.Receipt{{ID: "r-2", TotalPrice: decimal.RequireFromString("1")}}}
	router := newTestRouter(t, svc)

	rec := do(t, router, http.MethodGet, "/api/v1/receipts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReceiptsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Receipts, 1)
	assert.Equal(t, "1.00", resp.Receipts[0].TotalPrice)
}

func TestListReceipts_Error(t *testing.T) {
	router := newTestRouter(t, &mockStorefront{receiptsErr: errors.New("db locked")})

	rec := do(t, router, http.MethodGet, "/api/v1/receipts", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
