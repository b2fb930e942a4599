package forms

import (
	"context"
	"io"
	"log"

	"affiliate-catalog/internal/domain"
)

type Deleter interface {
	DeleteCategory(ctx context.Context, id domain.ID) error
	DeleteProduct(ctx context.Context, id domain.ID) error
}

// Remover deletes only after the Confirmer agrees.
type Remover struct {
	repo    Deleter
	confirm Confirmer
	notify  Notifier
	logger  *log.Logger
}

func NewRemover(repo Deleter, confirm Confirmer, notify Notifier, logger *log.Logger) *Remover {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notify == nil {
		notify = NotifyFunc(func(string) {})
	}
	return &Remover{repo: repo, confirm: confirm, notify: notify, logger: logger}
}

// DeleteCategory reports whether a delete was issued and succeeded. A
// declined confirmation is (false, nil) and sends no request.
func (r *Remover) DeleteCategory(ctx context.Context, id domain.ID) (bool, error) {
	if !r.confirm.Confirm(MsgConfirmDeleteCat) {
		return false, nil
	}
	if err := r.repo.DeleteCategory(ctx, id); err != nil {
		r.logger.Printf("forms: delete category id=%s error=%v", id, err)
		r.notify.Notify(MsgDeleteCategoryFailed)
		return false, asSubmitError("delete category", err)
	}
	return true, nil
}

func (r *Remover) DeleteProduct(ctx context.Context, id domain.ID) (bool, error) {
	if !r.confirm.Confirm(MsgConfirmDeleteProduct) {
		return false, nil
	}
	if err := r.repo.DeleteProduct(ctx, id); err != nil {
		r.logger.Printf("forms: delete product id=%s error=%v", id, err)
		r.notify.Notify(MsgDeleteProductFailed)
		return false, asSubmitError("delete product", err)
	}
	return true, nil
}
