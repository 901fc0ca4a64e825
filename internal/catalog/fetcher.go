package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxCatalogBody = 8 << 20 // 8MB

// Fetcher is the catalog fetch collaborator.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]domain.Product, error)
}

type HTTPFetcher struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]domain.Product]
}

type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithBreakerSettings overrides the circuit breaker configuration.
func WithBreakerSettings(st gobreaker.Settings) FetcherOption {
	return func(f *HTTPFetcher) {
		f.breaker = gobreaker.NewCircuitBreaker[[]domain.Product](st)
	}
}

func NewHTTPFetcher(url string, timeout time.Duration, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]domain.Product](DefaultBreakerSettings()),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultBreakerSettings opens the circuit after three consecutive failures
// and probes again after thirty seconds.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "catalog-fetch",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

func (f *HTTPFetcher) FetchCatalog(ctx context.Context) ([]domain.Product, error) {
	products, err := f.breaker.Execute(func() ([]domain.Product, error) {
		return f.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("%w: %v", ErrBreakerOpen, err)}
		}
		return nil, err
	}
	return products, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &NetworkError{URL: f.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxCatalogBody))
		return nil, &NetworkError{URL: f.url, StatusCode: resp.StatusCode}
	}

	var products []domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBody)).Decode(&products); err != nil {
		return nil, &NetworkError{URL: f.url, Err: fmt.Errorf("decode products: %w", err)}
	}
	return products, nil
}
