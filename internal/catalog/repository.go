// Package catalog caches categories and products fetched from the backend and
// tracks the active product filter.
package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"affiliate-catalog/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by a refresh whose result was dropped because a
// newer refresh of the same cache was issued after it.
var ErrSuperseded = errors.New("refresh superseded")

// Backend is what the repository needs from the REST client.
type Backend interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	FiltersServerSide() bool

	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id domain.ID, c domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id domain.ID) error
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ID, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ID) error
}

// Repository is safe for concurrent use. Backend calls run without holding
// the lock; each cache carries a sequence number and only the latest issued
// refresh may replace it.
type Repository struct {
	backend Backend
	logger  *log.Logger

	mu         sync.RWMutex
	categories []domain.Category
	products   []domain.Product
	filter     domain.ProductFilter

	catSeq      uint64
	prodSeq     uint64
	catLoading  bool
	prodLoading bool
	cancelProds context.CancelFunc
	catErr      string
	prodErr     string
}

func New(backend Backend, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Repository{
		backend:    backend,
		logger:     logger,
		categories: []domain.Category{},
		products:   []domain.Product{},
	}
}

// RefreshCategories replaces the category cache. On failure the previous
// cache stays and the error is kept for LastError.
func (r *Repository) RefreshCategories(ctx context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	r.catSeq++
	seq := r.catSeq
	r.catLoading = true
	r.mu.Unlock()

	cats, err := r.backend.ListCategories(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.catSeq {
		return nil, ErrSuperseded
	}
	r.catLoading = false
	if err != nil {
		err = asFetchError("categories", err)
		r.catErr = err.Error()
		r.logger.Printf("catalog: refresh categories error=%v", err)
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	r.categories = cats
	r.catErr = ""
	return cloneCategories(cats), nil
}

// RefreshProducts makes filter the active one and fetches for it. An
// in-flight product fetch for an older filter is cancelled and its result
// discarded. The returned slice is what Products would return afterwards.
func (r *Repository) RefreshProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.Lock()
	r.filter = filter
	r.prodSeq++
	seq := r.prodSeq
	if r.cancelProds != nil {
		r.cancelProds()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	r.cancelProds = cancel
	r.prodLoading = true
	r.mu.Unlock()
	defer cancel()

	items, err := r.backend.ListProducts(fetchCtx, filter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.prodSeq {
		return nil, ErrSuperseded
	}
	r.cancelProds = nil
	r.prodLoading = false
	if err != nil {
		err = asFetchError("products", err)
		r.prodErr = err.Error()
		r.logger.Printf("catalog: refresh products filter=%+v error=%v", filter.Key(), err)
		return nil, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	r.products = items
	r.prodErr = ""
	return r.visibleLocked(), nil
}

// RefreshAll fetches both caches in parallel using the active filter. Both
// fetches run to completion; the first error is returned.
func (r *Repository) RefreshAll(ctx context.Context) error {
	filter := r.ActiveFilter()
	var g errgroup.Group
	g.Go(func() error {
		_, err := r.RefreshCategories(ctx)
		return err
	})
	g.Go(func() error {
		_, err := r.RefreshProducts(ctx, filter)
		return err
	})
	return g.Wait()
}

func (r *Repository) SelectCategory(ctx context.Context, id domain.ID) ([]domain.Product, error) {
	f := r.ActiveFilter()
	f.CategoryID = id
	return r.RefreshProducts(ctx, f)
}

func (r *Repository) SetQuery(ctx context.Context, q string) ([]domain.Product, error) {
	f := r.ActiveFilter()
	f.Query = q
	return r.RefreshProducts(ctx, f)
}

func (r *Repository) ClearFilter(ctx context.Context) ([]domain.Product, error) {
	return r.RefreshProducts(ctx, domain.ProductFilter{})
}

// FilterLocally keeps products whose category equals filter.CategoryID (when
// set) and whose title contains filter.Query ignoring case (when set).
func FilterLocally(products []domain.Product, filter domain.ProductFilter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Repository) Categories() []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCategories(r.categories)
}

// Products returns the cached products narrowed to the active filter when
// the backend leaves filtering to the client.
func (r *Repository) Products() []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visibleLocked()
}

func (r *Repository) ActiveFilter() domain.ProductFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// Loading reports whether a refresh of either cache is outstanding.
func (r *Repository) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catLoading || r.prodLoading
}

// LastError is the message of a failed refresh, cleared by the next
// successful refresh of the same cache. Category errors win.
func (r *Repository) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catErr != "" {
		return r.catErr
	}
	return r.prodErr
}

func (r *Repository) Category(id domain.ID) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID.Equal(id) {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (r *Repository) Product(id domain.ID) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID.Equal(id) {
			return cloneProduct(p), nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (r *Repository) visibleLocked() []domain.Product {
	src := r.products
	if !r.backend.FiltersServerSide() {
		src = FilterLocally(src, r.filter)
	}
	out := make([]domain.Product, len(src))
	for i, p := range src {
		out[i] = cloneProduct(p)
	}
	return out
}

func asFetchError(resource string, err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &domain.FetchError{Resource: resource, Err: err}
}

func cloneCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	copy(out, in)
	return out
}

func cloneProduct(p domain.Product) domain.Product {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	if p.Price != nil {
		v := *p.Price
		p.Price = &v
	}
	return p
}
