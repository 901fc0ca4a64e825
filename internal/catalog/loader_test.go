package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	m        sync.Mutex
	products []domain.Product
	err      error
	calls    int
}

func (f *mockFetcher) FetchCatalog(context.Context) ([]domain.Product, error) {
	f.m.Lock()
	defer f.m.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type mockRenderer struct {
	products []domain.Product
	err      error
}

func (r *mockRenderer) RenderProducts(p []domain.Product) { r.products = p; r.err = nil }
func (r *mockRenderer) RenderError(err error)             { r.err = err }

func TestLoader_Load_Success(t *testing.T) {
	f := &mockFetcher{products: []domain.Product{product(1, "x")}}
	r := &mockRenderer{}
	store := NewStore()

	err := NewLoader(f, store, r, nil).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, store.Loaded())
	assert.Len(t, r.products, 1)
	assert.NoError(t, r.err)
}

func TestLoader_Load_FailureLeavesStoreEmpty(t *testing.T) {
	fetchErr := &NetworkError{URL: "http://x", Err: errors.New("boom")}
	f := &mockFetcher{err: fetchErr}
	r := &mockRenderer{}
	store := NewStore()

	err := NewLoader(f, store, r, nil).Load(context.Background())
	assert.ErrorIs(t, err, fetchErr)
	assert.False(t, store.Loaded())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, fetchErr, r.err)
}

func TestLoader_EnsureLoaded_RetriesOnlyAfterFailure(t *testing.T) {
	f := &mockFetcher{err: errors.New("down")}
	r := &mockRenderer{}
	l := NewLoader(f, NewStore(), r, nil)

	require.Error(t, l.EnsureLoaded(context.Background()))

	f.err = nil
	f.products = []domain.Product{product(1, "x")}
	require.NoError(t, l.EnsureLoaded(context.Background()))
	require.NoError(t, l.EnsureLoaded(context.Background()))

	assert.Equal(t, 2, f.calls)
}
