package backend

import "affiliate-catalog/internal/domain"

// categoryPayload is the write body for categories. Empty optional text is
// sent as null.
type categoryPayload struct {
	Name        string  `json:"name"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description"`
	Order       int     `json:"order"`
	IsActive    bool    `json:"is_active"`
}

type productPayload struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	ImageURL     *string   `json:"image_url"`
	AffiliateURL string    `json:"affiliate_url"`
	Price        *float64  `json:"price"`
	CategoryID   domain.ID `json:"category_id"`
	Tags         []string  `json:"tags"`
	IsActive     bool      `json:"is_active"`
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newCategoryPayload(c domain.Category) categoryPayload {
	return categoryPayload{
		Name:        c.Name,
		Slug:        nullable(c.Slug),
		Description: nullable(c.Description),
		Order:       c.Order,
		IsActive:    c.IsActive,
	}
}

func newProductPayload(p domain.Product) productPayload {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return productPayload{
		Title:        p.Title,
		Description:  nullable(p.Description),
		ImageURL:     nullable(p.ImageURL),
		AffiliateURL: p.AffiliateURL,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		Tags:         tags,
		IsActive:     p.IsActive,
	}
}
