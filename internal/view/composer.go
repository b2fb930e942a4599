// Package view derives what the storefront renders from the session,
// catalog and preference stores.
package view

import (
	"fmt"
	"sync"

	"affiliate-catalog/internal/domain"
)

type Mode string

const (
	Public Mode = "public"
	Admin  Mode = "admin"
)

type SessionReader interface {
	Session() domain.Session
}

type CatalogReader interface {
	Categories() []domain.Category
	Products() []domain.Product
	ActiveFilter() domain.ProductFilter
	Loading() bool
	LastError() string
}

type PreferenceReader interface {
	Language() string
	Dark() bool
}

// ProductCard is a product plus its display labels.
type ProductCard struct {
	Product    domain.Product `json:"product"`
	PriceLabel string         `json:"price_label"`
	TagsLabel  string         `json:"tags_label"`
}

// Snapshot is read-only; a new one is built on every Compose.
type Snapshot struct {
	Mode          Mode                 `json:"mode"`
	Language      string               `json:"language"`
	Theme         string               `json:"theme"`
	Authenticated bool                 `json:"authenticated"`
	User          *domain.User         `json:"user,omitempty"`
	ShowLogin     bool                 `json:"show_login"`
	Categories    []domain.Category    `json:"categories"`
	Products      []ProductCard        `json:"products"`
	Filter        domain.ProductFilter `json:"filter"`
	Loading       bool                 `json:"loading"`
	Error         string               `json:"error,omitempty"`
	Empty         bool                 `json:"empty"`
}

type Composer struct {
	mu      sync.RWMutex
	mode    Mode
	session SessionReader
	catalog CatalogReader
	prefs   PreferenceReader
}

// New starts in public mode.
func New(session SessionReader, catalog CatalogReader, prefs PreferenceReader) *Composer {
	return &Composer{mode: Public, session: session, catalog: catalog, prefs: prefs}
}

func (c *Composer) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Composer) SetMode(m Mode) error {
	if m != Public && m != Admin {
		return fmt.Errorf("unknown view mode %q", m)
	}
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
	return nil
}

func (c *Composer) ToggleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == Admin {
		c.mode = Public
	} else {
		c.mode = Admin
	}
	return c.mode
}

// Compose reads every store once. Public mode hides inactive categories and
// products; admin mode shows everything.
func (c *Composer) Compose() Snapshot {
	mode := c.Mode()
	sess := c.session.Session()
	lang := c.prefs.Language()

	snap := Snapshot{
		Mode:          mode,
		Language:      lang,
		Theme:         "light",
		Authenticated: sess.Authenticated(),
		User:          sess.User,
		ShowLogin:     mode == Admin && !sess.Authenticated(),
		Filter:        c.catalog.ActiveFilter(),
		Loading:       c.catalog.Loading(),
		Error:         c.catalog.LastError(),
		Categories:    []domain.Category{},
		Products:      []ProductCard{},
	}
	if c.prefs.Dark() {
		snap.Theme = "dark"
	}

	for _, cat := range c.catalog.Categories() {
		if mode == Public && !cat.IsActive {
			continue
		}
		snap.Categories = append(snap.Categories, cat)
	}
	for _, p := range c.catalog.Products() {
		if mode == Public && !p.IsActive {
			continue
		}
		snap.Products = append(snap.Products, ProductCard{
			Product:    p,
			PriceLabel: PriceLabel(p.Price, lang),
			TagsLabel:  p.TagsLabel(),
		})
	}
	snap.Empty = len(snap.Products) == 0 && !snap.Loading
	return snap
}
