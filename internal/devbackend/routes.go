package devbackend

import (
	"net/http"
	"strings"
	"time"

	"affiliate-catalog/internal/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(s.logger.Writer()), gin.Recovery())

	router.GET("/test", s.handleTest)

	// Legacy convention.
	router.GET("/categories", s.listCategories)
	router.GET("/items", s.listItems)
	router.POST("/auth/login", s.login("username", false))
	legacy := router.Group("/admin", s.requireToken)
	legacy.POST("/categories", s.createCategory)
	legacy.PUT("/categories/:id", s.updateCategory)
	legacy.DELETE("/categories/:id", s.deleteCategory)
	legacy.POST("/items", s.createProduct)
	legacy.PUT("/items/:id", s.updateProduct)
	legacy.DELETE("/items/:id", s.deleteProduct)

	// /api convention. Reads are public, writes need a token.
	api := router.Group("/api")
	api.GET("/categories", s.listCategories)
	api.GET("/products", s.listAPIProducts)
	api.POST("/auth/login", s.login("email", true))
	api.POST("/categories", s.requireToken, s.createCategory)
	api.PUT("/categories/:id", s.requireToken, s.updateCategory)
	api.DELETE("/categories/:id", s.requireToken, s.deleteCategory)
	api.POST("/products", s.requireToken, s.createProduct)
	api.PUT("/products/:id", s.requireToken, s.updateProduct)
	api.DELETE("/products/:id", s.requireToken, s.deleteProduct)

	return router
}

func (s *Server) handleTest(c *gin.Context) {
	echo := map[string]string{}
	for k := range c.Request.URL.Query() {
		echo[k] = c.Query(k)
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"echo":   echo,
	})
}

func (s *Server) requireToken(c *gin.Context) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, prefix) {
		c.Header("WWW-Authenticate", `Bearer realm="catalog"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	if _, ok := s.tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, prefix))); !ok {
		c.Header("WWW-Authenticate", `Bearer realm="catalog", error="invalid_token"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Next()
}

// login reads the identifier from field. The /api flavour also returns the
// display identity.
func (s *Server) login(field string, withIdentity bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if !s.checkPassword(body[field], body["password"]) {
			s.logger.Printf("devbackend: login rejected field=%s", field)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		token, err := s.tokens.Issue(s.admin.AdminUser, s.admin.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token"})
			return
		}
		if !withIdentity {
			c.JSON(http.StatusOK, gin.H{"token": token})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "name": s.admin.AdminName, "email": s.admin.AdminEmail})
	}
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.Categories())
}

func (s *Server) listItems(c *gin.Context) {
	filter := domain.ProductFilter{
		CategoryID: domain.NewID(c.Query("category_id")),
		Query:      strings.TrimSpace(c.Query("q")),
	}
	c.JSON(http.StatusOK, s.Products(filter))
}

// listAPIProducts returns only active products unless ?active is present.
// An empty value means all, "true"/"false" select by flag.
func (s *Server) listAPIProducts(c *gin.Context) {
	all := s.Products(domain.ProductFilter{})
	active, present := c.GetQuery("active")
	if present && active == "" {
		c.JSON(http.StatusOK, all)
		return
	}
	want := !present || active == "true" || active == "1"
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive == want {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCategory(c *gin.Context) {
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	in.ID = domain.ID{}
	c.JSON(http.StatusCreated, s.PutCategory(in))
}

func (s *Server) updateCategory(c *gin.Context) {
	id := domain.NewID(c.Param("id"))
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	s.mu.RLock()
	_, ok := s.categories[id.String()]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	in.ID = id
	c.JSON(http.StatusOK, s.PutCategory(in))
}

// deleteCategory detaches products that pointed at the category.
func (s *Server) deleteCategory(c *gin.Context) {
	id := domain.NewID(c.Param("id"))
	s.mu.Lock()
	_, ok := s.categories[id.String()]
	if ok {
		delete(s.categories, id.String())
		for k, p := range s.products {
			if p.CategoryID.Equal(id) {
				p.CategoryID = domain.ID{}
				s.products[k] = p
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil || !validProduct(in) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and affiliate_url required"})
		return
	}
	in.ID = domain.ID{}
	c.JSON(http.StatusCreated, s.PutProduct(in))
}

func (s *Server) updateProduct(c *gin.Context) {
	id := domain.NewID(c.Param("id"))
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil || !validProduct(in) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and affiliate_url required"})
		return
	}
	s.mu.RLock()
	_, ok := s.products[id.String()]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	in.ID = id
	c.JSON(http.StatusOK, s.PutProduct(in))
}

func (s *Server) deleteProduct(c *gin.Context) {
	id := domain.NewID(c.Param("id"))
	s.mu.Lock()
	_, ok := s.products[id.String()]
	delete(s.products, id.String())
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func validProduct(p domain.Product) bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.AffiliateURL) != ""
}
