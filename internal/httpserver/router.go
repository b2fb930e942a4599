package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"affiliate-catalog/internal/domain"
	"affiliate-catalog/internal/forms"
	"affiliate-catalog/internal/view"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SessionService is the session store as seen by the handlers.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (domain.Session, error)
	Logout(ctx context.Context)
	Authenticated() bool
}

type PreferenceService interface {
	SetLanguage(ctx context.Context, lang string) error
	SetDark(ctx context.Context, dark bool) error
}

// CatalogService covers reads, filter changes and deletes.
type CatalogService interface {
	RefreshAll(ctx context.Context) error
	RefreshProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ActiveFilter() domain.ProductFilter
	Category(id domain.ID) (domain.Category, error)
	Product(id domain.ID) (domain.Product, error)
	forms.Deleter
}

type ViewService interface {
	Compose() view.Snapshot
	SetMode(m view.Mode) error
}

type CategoryFormService interface {
	Load(c *domain.Category) forms.CategoryDraft
	Submit(ctx context.Context, d forms.CategoryDraft) (*domain.Category, error)
}

type ProductFormService interface {
	Load(p *domain.Product) forms.ProductDraft
	Submit(ctx context.Context, d forms.ProductDraft) (*domain.Product, error)
}

type HealthChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// Deps groups everything the router needs.
type Deps struct {
	Session      SessionService
	Preferences  PreferenceService
	Catalog      CatalogService
	View         ViewService
	CategoryForm CategoryFormService
	ProductForm  ProductFormService
	Health       HealthChecker
}

func (d Deps) validate() error {
	if d.Session == nil || d.Preferences == nil || d.Catalog == nil || d.View == nil {
		return errors.New("session, preferences, catalog and view are required")
	}
	if d.CategoryForm == nil || d.ProductForm == nil {
		return errors.New("category and product forms are required")
	}
	return nil
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Health))

	api := router.Group("/api")
	api.GET("/view", h.getView)
	api.PUT("/view/mode", h.setMode)
	api.PUT("/preferences", h.setPreferences)
	api.PUT("/filter", h.setFilter)
	api.POST("/refresh", h.refresh)
	api.POST("/session/login", h.login)
	api.POST("/session/logout", h.logout)
	api.GET("/diagnostics", h.diagnostics)

	admin := api.Group("/admin", requireSession(deps.Session))
	admin.GET("/categories/:id/draft", h.categoryDraft)
	admin.POST("/categories", h.submitCategory)
	admin.PUT("/categories/:id", h.submitCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
	admin.GET("/products/:id/draft", h.productDraft)
	admin.POST("/products", h.submitProduct)
	admin.PUT("/products/:id", h.submitProduct)
	admin.DELETE("/products/:id", h.deleteProduct)

	return router, nil
}
