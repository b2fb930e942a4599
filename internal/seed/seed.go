package seed

import (
	"context"
	"fmt"
	"strings"

	"affiliate-catalog/internal/domain"
)

// Catalog is the write side of the catalog repository.
type Catalog interface {
	RefreshCategories(ctx context.Context) ([]domain.Category, error)
	RefreshProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Title        string
	Description  string
	AffiliateURL string
	Price        float64
	Category     string
	Tags         []string
}

var categorySeeds = []domain.Category{
	{Name: "Elektronik", Slug: "elektronik", Description: "Gadget dan aksesoris", Order: 1, IsActive: true},
	{Name: "Rumah Tangga", Slug: "rumah-tangga", Description: "Perlengkapan rumah", Order: 2, IsActive: true},
}

var productSeeds = []productSeed{
	{
		Title:        "Mouse Wireless",
		Description:  "Mouse 2.4GHz dengan receiver USB",
		AffiliateURL: "https://shopee.co.id/demo-mouse",
		Price:        150000,
		Category:     "Elektronik",
		Tags:         []string{"electronics", "mouse"},
	},
	{
		Title:        "Mug Keramik",
		Description:  "Mug 350ml",
		AffiliateURL: "https://shopee.co.id/demo-mug",
		Price:        45000,
		Category:     "Rumah Tangga",
		Tags:         []string{"kitchen"},
	},
}

// Result counts what Apply actually created.
type Result struct {
	Categories int
	Products   int
}

// Apply creates the demo categories and products that are missing, matching
// by name and title. Running it twice creates nothing the second time.
func Apply(ctx context.Context, cat Catalog) (Result, error) {
	var res Result

	existing, err := cat.RefreshCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	ids := make(map[string]domain.ID, len(existing))
	for _, c := range existing {
		ids[strings.ToLower(c.Name)] = c.ID
	}
	for _, c := range categorySeeds {
		if _, ok := ids[strings.ToLower(c.Name)]; ok {
			continue
		}
		created, err := cat.CreateCategory(ctx, c)
		if err != nil {
			return res, fmt.Errorf("create category %s: %w", c.Name, err)
		}
		ids[strings.ToLower(c.Name)] = created.ID
		res.Categories++
	}

	products, err := cat.RefreshProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return res, fmt.Errorf("list products: %w", err)
	}
	titles := make(map[string]bool, len(products))
	for _, p := range products {
		titles[strings.ToLower(p.Title)] = true
	}
	for _, s := range productSeeds {
		if titles[strings.ToLower(s.Title)] {
			continue
		}
		price := s.Price
		p := domain.Product{
			Title:        s.Title,
			Description:  s.Description,
			AffiliateURL: s.AffiliateURL,
			Price:        &price,
			CategoryID:   ids[strings.ToLower(s.Category)],
			Tags:         s.Tags,
			IsActive:     true,
		}
		if _, err := cat.CreateProduct(ctx, p); err != nil {
			return res, fmt.Errorf("create product %s: %w", s.Title, err)
		}
		res.Products++
	}
	return res, nil
}
