package catalog

import (
	"context"
	"errors"

	"affiliate-catalog/internal/domain"
)

// Mutations issue one authenticated call. A failed call leaves the caches
// alone. After a successful call the affected cache is refetched; a failed
// refetch shows up in LastError and does not fail the write.

func (r *Repository) CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	out, err := r.backend.CreateCategory(ctx, c)
	if err != nil {
		return nil, asSubmitError("create category", err)
	}
	r.refreshCategoriesAfterWrite(ctx)
	return out, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id domain.ID, c domain.Category) (*domain.Category, error) {
	out, err := r.backend.UpdateCategory(ctx, id, c)
	if err != nil {
		return nil, asSubmitError("update category", err)
	}
	r.refreshCategoriesAfterWrite(ctx)
	return out, nil
}

// DeleteCategory refreshes both caches, since products may have pointed at
// the category. When it was the active filter the filter falls back to all.
func (r *Repository) DeleteCategory(ctx context.Context, id domain.ID) error {
	if err := r.backend.DeleteCategory(ctx, id); err != nil {
		return asSubmitError("delete category", err)
	}
	r.mu.Lock()
	if !id.IsZero() && r.filter.CategoryID.Equal(id) {
		r.filter.CategoryID = domain.ID{}
		r.logger.Printf("catalog: active category %s deleted, filter reset", id)
	}
	r.mu.Unlock()
	if err := r.RefreshAll(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		r.logger.Printf("catalog: refresh after delete category error=%v", err)
	}
	return nil
}

func (r *Repository) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	out, err := r.backend.CreateProduct(ctx, p)
	if err != nil {
		return nil, asSubmitError("create product", err)
	}
	r.refreshProductsAfterWrite(ctx)
	return out, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, id domain.ID, p domain.Product) (*domain.Product, error) {
	out, err := r.backend.UpdateProduct(ctx, id, p)
	if err != nil {
		return nil, asSubmitError("update product", err)
	}
	r.refreshProductsAfterWrite(ctx)
	return out, nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id domain.ID) error {
	if err := r.backend.DeleteProduct(ctx, id); err != nil {
		return asSubmitError("delete product", err)
	}
	r.refreshProductsAfterWrite(ctx)
	return nil
}

func (r *Repository) refreshCategoriesAfterWrite(ctx context.Context) {
	if _, err := r.RefreshCategories(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		r.logger.Printf("catalog: refresh after write error=%v", err)
	}
}

func (r *Repository) refreshProductsAfterWrite(ctx context.Context) {
	if _, err := r.RefreshProducts(ctx, r.ActiveFilter()); err != nil && !errors.Is(err, ErrSuperseded) {
		r.logger.Printf("catalog: refresh after write error=%v", err)
	}
}

func asSubmitError(op string, err error) error {
	var se *domain.SubmitError
	if errors.As(err, &se) {
		return err
	}
	return &domain.SubmitError{Op: op, Err: err}
}
