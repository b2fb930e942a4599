package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"affiliate-catalog/internal/catalog"
	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/forms"
	"affiliate-catalog/internal/view"
	"github.com/gin-gonic/gin"
)

const msgLoginFailed = "Login gagal / failed"

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type modeRequest struct {
	Mode view.Mode `json:"mode" binding:"required"`
}

type preferencesRequest struct {
	Language *string `json:"language"`
	Dark     *bool   `json:"dark"`
}

// filterRequest keeps category_id raw so that an explicit null can be told
// apart from an absent field.
type filterRequest struct {
	CategoryID json.RawMessage `json:"category_id"`
	Query      *string         `json:"q"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h *handlers) getView(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode required"})
		return
	}
	if err := h.deps.View.SetMode(req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) setPreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ctx := c.Request.Context()
	if req.Language != nil {
		if err := h.deps.Preferences.SetLanguage(ctx, *req.Language); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Dark != nil {
		if err := h.deps.Preferences.SetDark(ctx, *req.Dark); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

// setFilter changes only the fields present in the body. A failed fetch is
// reported inline in the snapshot, like any other read.
func (h *handlers) setFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	f := h.deps.Catalog.ActiveFilter()
	if len(req.CategoryID) > 0 {
		var id domain.ID
		if err := json.Unmarshal(req.CategoryID, &id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		f.CategoryID = id
	}
	if req.Query != nil {
		f.Query = strings.TrimSpace(*req.Query)
	}
	if _, err := h.deps.Catalog.RefreshProducts(c.Request.Context(), f); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
		h.logger.Printf("http: set filter error=%v", err)
	}
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) refresh(c *gin.Context) {
	if err := h.deps.Catalog.RefreshAll(c.Request.Context()); err != nil && !errors.Is(err, catalog.ErrSuperseded) {
		h.logger.Printf("http: refresh error=%v", err)
	}
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and password required"})
		return
	}
	if _, err := h.deps.Session.Login(c.Request.Context(), req.Identifier, req.Password); err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "message": msgLoginFailed})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) logout(c *gin.Context) {
	h.deps.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, h.deps.View.Compose())
}

func (h *handlers) diagnostics(c *gin.Context) {
	if h.deps.Health == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend not configured"})
		return
	}
	body, err := h.deps.Health.Health(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// writeError maps the domain error taxonomy onto status codes.
func writeError(c *gin.Context, err error) {
	var (
		authErr   *domain.AuthError
		fetchErr  *domain.FetchError
		submitErr *domain.SubmitError
	)
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &submitErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "status": submitErr.Status})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// failureMessage picks the alert text matching a failed admin write.
func failureMessage(op string) string {
	switch op {
	case "category save":
		return forms.MsgSaveCategoryFailed
	case "category delete":
		return forms.MsgDeleteCategoryFailed
	case "product save":
		return forms.MsgSaveProductFailed
	default:
		return forms.MsgDeleteProductFailed
	}
}
