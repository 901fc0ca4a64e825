package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultRequestTimeout = 30 * time.Second

// NewRouter builds the HTML and JSON routes. Everything except /healthz
// runs inside a session.
func NewRouter(h *Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/", h.Page)
		r.Post("/cart/add/{product_id}", h.FormAdd)
		r.Post("/cart/inc/{product_id}", h.FormIncrement)
		r.Post("/cart/dec/{product_id}", h.FormDecrement)
		r.Post("/cart/remove/{product_id}", h.FormRemove)
		r.Post("/cart/clear", h.FormClear)
		r.Post("/checkout", h.FormCheckout)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/products", h.ListProducts)
			r.Get("/categories", h.ListCategories)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddItem)
				r.Patch("/items/{product_id}", h.ChangeQuantity)
				r.Delete("/items/{product_id}", h.RemoveItem)
			})
			r.Post("/checkout", h.Checkout)
			r.Get("/receipts", h.ListReceipts)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
