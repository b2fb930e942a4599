package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/forms"
	"github.com/gin-gonic/gin"
)

// requireSession rejects admin calls until the session store holds a token.
func requireSession(sess SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sess.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// categoryDraft seeds the edit form. The id "new" gives an empty draft.
func (h *handlers) categoryDraft(c *gin.Context) {
	if c.Param("id") == "new" {
		c.JSON(http.StatusOK, h.deps.CategoryForm.Load(nil))
		return
	}
	cat, err := h.deps.Catalog.Category(domain.NewID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.CategoryForm.Load(&cat))
}

func (h *handlers) productDraft(c *gin.Context) {
	if c.Param("id") == "new" {
		c.JSON(http.StatusOK, h.deps.ProductForm.Load(nil))
		return
	}
	p, err := h.deps.Catalog.Product(domain.NewID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.ProductForm.Load(&p))
}

// submitCategory serves both POST (create) and PUT /:id (update). On PUT the
// path id wins over any id in the body.
func (h *handlers) submitCategory(c *gin.Context) {
	draft := forms.NewCategoryDraft()
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	draft.ID = domain.NewID(c.Param("id"))
	out, err := h.deps.CategoryForm.Submit(c.Request.Context(), draft)
	if err != nil {
		writeAdminError(c, err, "category save")
		return
	}
	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

func (h *handlers) submitProduct(c *gin.Context) {
	draft := forms.NewProductDraft()
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if draft.ImageFile != "" && !remoteImage(draft.ImageFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_file must be an http or https url", "message": failureMessage("product save")})
		return
	}
	draft.ID = domain.NewID(c.Param("id"))
	out, err := h.deps.ProductForm.Submit(c.Request.Context(), draft)
	if err != nil {
		writeAdminError(c, err, "product save")
		return
	}
	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

// remoteImage accepts only absolute http(s) urls. Local paths are for the
// admin CLIs, never for request bodies.
func remoteImage(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (h *handlers) deleteCategory(c *gin.Context) {
	h.remove(c, "category delete", func(r *forms.Remover, id domain.ID) (bool, error) {
		return r.DeleteCategory(c.Request.Context(), id)
	})
}

func (h *handlers) deleteProduct(c *gin.Context) {
	h.remove(c, "product delete", func(r *forms.Remover, id domain.ID) (bool, error) {
		return r.DeleteProduct(c.Request.Context(), id)
	})
}

// remove confirms through the confirm query flag. Without it the answer is
// 409 carrying the prompt, and no backend request is made.
func (h *handlers) remove(c *gin.Context, op string, del func(*forms.Remover, domain.ID) (bool, error)) {
	confirmed := c.Query("confirm") == "true"
	var prompt string
	remover := forms.NewRemover(h.deps.Catalog, forms.ConfirmFunc(func(msg string) bool {
		prompt = msg
		return confirmed
	}), nil, h.logger)

	ok, err := del(remover, domain.NewID(c.Param("id")))
	if err != nil {
		writeAdminError(c, err, op)
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"confirm": prompt})
		return
	}
	c.Status(http.StatusNoContent)
}

// writeAdminError adds the user-facing alert text to failed writes.
func writeAdminError(c *gin.Context, err error, op string) {
	var submitErr *domain.SubmitError
	if !errors.As(err, &submitErr) {
		writeError(c, err)
		return
	}
	status := http.StatusBadGateway
	if errors.Is(err, domain.ErrRequired) {
		status = http.StatusBadRequest
	}
	if submitErr.Status == http.StatusUnauthorized {
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error(), "message": failureMessage(op)})
}
