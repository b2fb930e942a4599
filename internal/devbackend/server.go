// Package devbackend is an in-memory stand-in for the catalog REST service.
// It answers both path conventions so the storefront can run and be tested
// without the real backend.
package devbackend

import (
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"affiliate-catalog/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Options configures the admin account and id style.
type Options struct {
	AdminUser     string
	AdminEmail    string
	AdminName     string
	AdminPassword string
	TokenTTL      time.Duration
	// NumericIDs issues 1, 2, 3... instead of uuids.
	NumericIDs bool
	Logger     *log.Logger
}

// Server holds the catalog in memory. All methods are safe for concurrent use.
type Server struct {
	mu         sync.RWMutex
	categories map[string]domain.Category
	products   map[string]domain.Product
	nextID     int

	admin    Options
	passHash []byte
	tokens   *tokenManager
	logger   *log.Logger
	engine   *gin.Engine
}

// New hashes the admin password and builds the router.
func New(opts Options) (*Server, error) {
	if opts.AdminUser == "" || opts.AdminPassword == "" {
		return nil, errors.New("admin user and password required")
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = opts.AdminUser + "@localhost"
	}
	if opts.AdminName == "" {
		opts.AdminName = opts.AdminUser
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s := &Server{
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
		admin:      opts,
		passHash:   hash,
		tokens:     newTokenManager(),
		logger:     logger,
	}
	s.engine = s.buildRouter()
	return s, nil
}

// ServeHTTP makes the server usable with httptest and http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// PutCategory stores c, assigning an id when it has none.
func (s *Server) PutCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = s.newIDLocked()
	}
	s.categories[c.ID.String()] = c
	return c
}

// PutProduct stores p, assigning an id when it has none.
func (s *Server) PutProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = s.newIDLocked()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	s.products[p.ID.String()] = p
	return p
}

// Categories lists by order, then name.
func (s *Server) Categories() []domain.Category {
	s.mu.RLock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Products lists matching products by title.
func (s *Server) Products(filter domain.ProductFilter) []domain.Product {
	s.mu.RLock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *Server) newIDLocked() domain.ID {
	if s.admin.NumericIDs {
		s.nextID++
		return domain.NewID(strconv.Itoa(s.nextID))
	}
	return domain.NewID(uuid.NewString())
}

func (s *Server) checkPassword(identifier, password string) bool {
	id := strings.TrimSpace(strings.ToLower(identifier))
	if id != strings.ToLower(s.admin.AdminUser) && id != strings.ToLower(s.admin.AdminEmail) {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.passHash, []byte(password)) == nil
}
