package forms

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/media"
)

// User-facing messages, in both languages like the login alert.
const (
	MsgSaveCategoryFailed   = "Gagal menyimpan kategori / Failed to save category"
	MsgDeleteCategoryFailed = "Gagal menghapus kategori / Failed to delete category"
	MsgSaveProductFailed    = "Gagal menyimpan barang / Failed to save item"
	MsgDeleteProductFailed  = "Gagal menghapus barang / Failed to delete item"
	MsgConfirmDeleteCat     = "Hapus kategori ini? / Delete this category?"
	MsgConfirmDeleteProduct = "Hapus barang ini? / Delete this item?"
)

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(message string) bool
}

// Notifier shows a failure to the user.
type Notifier interface {
	Notify(message string)
}

type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

// CategoryWriter is the part of the catalog repository the category form uses.
type CategoryWriter interface {
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id domain.ID, c domain.Category) (*domain.Category, error)
}

type ProductWriter interface {
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id domain.ID, p domain.Product) (*domain.Product, error)
}

// CategoryForm holds one category draft. A failed submit keeps the draft so
// the user can retry; a successful one resets it.
type CategoryForm struct {
	mu     sync.Mutex
	draft  CategoryDraft
	repo   CategoryWriter
	notify Notifier
	logger *log.Logger
}

func NewCategoryForm(repo CategoryWriter, notify Notifier, logger *log.Logger) *CategoryForm {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notify == nil {
		notify = NotifyFunc(func(string) {})
	}
	return &CategoryForm{draft: NewCategoryDraft(), repo: repo, notify: notify, logger: logger}
}

// Load seeds the form from c, or clears it when c is nil.
func (f *CategoryForm) Load(c *domain.Category) CategoryDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = CategoryDraftFrom(c)
	return f.draft
}

func (f *CategoryForm) Draft() CategoryDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Submit creates when d has no ID and updates otherwise.
func (f *CategoryForm) Submit(ctx context.Context, d CategoryDraft) (*domain.Category, error) {
	f.mu.Lock()
	f.draft = d
	f.mu.Unlock()

	op := "create category"
	if !d.ID.IsZero() {
		op = "update category"
	}
	if err := d.Validate(); err != nil {
		f.notify.Notify(MsgSaveCategoryFailed)
		return nil, &domain.SubmitError{Op: op, Err: err}
	}

	var (
		out *domain.Category
		err error
	)
	if d.ID.IsZero() {
		out, err = f.repo.CreateCategory(ctx, d.Category())
	} else {
		out, err = f.repo.UpdateCategory(ctx, d.ID, d.Category())
	}
	if err != nil {
		f.logger.Printf("forms: %s error=%v", op, err)
		f.notify.Notify(MsgSaveCategoryFailed)
		return nil, asSubmitError(op, err)
	}

	f.mu.Lock()
	f.draft = NewCategoryDraft()
	f.mu.Unlock()
	return out, nil
}

// ProductForm is CategoryForm for products, with an optional image upload.
type ProductForm struct {
	mu       sync.Mutex
	draft    ProductDraft
	repo     ProductWriter
	uploader media.Uploader
	notify   Notifier
	logger   *log.Logger
}

// NewProductForm accepts a nil uploader; drafts with an ImageFile then fail.
func NewProductForm(repo ProductWriter, uploader media.Uploader, notify Notifier, logger *log.Logger) *ProductForm {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notify == nil {
		notify = NotifyFunc(func(string) {})
	}
	return &ProductForm{draft: NewProductDraft(), repo: repo, uploader: uploader, notify: notify, logger: logger}
}

func (f *ProductForm) Load(p *domain.Product) ProductDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = ProductDraftFrom(p)
	return f.draft
}

func (f *ProductForm) Draft() ProductDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *ProductForm) Submit(ctx context.Context, d ProductDraft) (*domain.Product, error) {
	f.setDraft(d)

	op := "create product"
	if !d.ID.IsZero() {
		op = "update product"
	}
	if err := d.Validate(); err != nil {
		f.notify.Notify(MsgSaveProductFailed)
		return nil, &domain.SubmitError{Op: op, Err: err}
	}

	if d.ImageFile != "" {
		if f.uploader == nil {
			f.notify.Notify(MsgSaveProductFailed)
			return nil, &domain.SubmitError{Op: "upload image", Err: errors.New("no uploader configured")}
		}
		url, err := f.uploader.Upload(ctx, d.ImageFile)
		if err != nil {
			f.logger.Printf("forms: upload image error=%v", err)
			f.notify.Notify(MsgSaveProductFailed)
			return nil, &domain.SubmitError{Op: "upload image", Err: err}
		}
		// Keep the uploaded URL in the draft so a retry does not upload again.
		d.ImageURL, d.ImageFile = url, ""
		f.setDraft(d)
	}

	var (
		out *domain.Product
		err error
	)
	if d.ID.IsZero() {
		out, err = f.repo.CreateProduct(ctx, d.Product())
	} else {
		out, err = f.repo.UpdateProduct(ctx, d.ID, d.Product())
	}
	if err != nil {
		f.logger.Printf("forms: %s error=%v", op, err)
		f.notify.Notify(MsgSaveProductFailed)
		return nil, asSubmitError(op, err)
	}

	f.setDraft(NewProductDraft())
	return out, nil
}

func (f *ProductForm) setDraft(d ProductDraft) {
	f.mu.Lock()
	f.draft = d
	f.mu.Unlock()
}

func asSubmitError(op string, err error) error {
	var se *domain.SubmitError
	if errors.As(err, &se) {
		return err
	}
	return &domain.SubmitError{Op: op, Err: err}
}
