// Package forms turns admin form input into catalog writes.
package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"affiliate-catalog/internal/domain"
	"github.com/creasty/defaults"
)

// CategoryDraft is the editable text of a category form.
type CategoryDraft struct {
	ID          domain.ID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Order       string    `json:"order" default:"0"`
	IsActive    bool      `json:"is_active" default:"true"`
}

// ProductDraft is the editable text of a product form. ImageFile, when set,
// is uploaded on submit and replaces ImageURL.
type ProductDraft struct {
	ID           domain.ID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	ImageFile    string    `json:"image_file,omitempty"`
	AffiliateURL string    `json:"affiliate_url"`
	Price        string    `json:"price"`
	CategoryID   domain.ID `json:"category_id"`
	Tags         string    `json:"tags"`
	IsActive     bool      `json:"is_active" default:"true"`
}

func NewCategoryDraft() CategoryDraft {
	var d CategoryDraft
	mustDefaults(&d)
	return d
}

func NewProductDraft() ProductDraft {
	var d ProductDraft
	mustDefaults(&d)
	return d
}

// mustDefaults applies the default tags. A failure is a broken tag, so it
// panics.
func mustDefaults(ptr any) {
	if err := defaults.Set(ptr); err != nil {
		panic(fmt.Sprintf("forms: apply draft defaults: %v", err))
	}
}

// CategoryDraftFrom seeds an edit form. nil gives an empty draft.
func CategoryDraftFrom(c *domain.Category) CategoryDraft {
	if c == nil {
		return NewCategoryDraft()
	}
	return CategoryDraft{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Order:       strconv.Itoa(c.Order),
		IsActive:    c.IsActive,
	}
}

func ProductDraftFrom(p *domain.Product) ProductDraft {
	if p == nil {
		return NewProductDraft()
	}
	d := ProductDraft{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		ImageURL:     p.ImageURL,
		AffiliateURL: p.AffiliateURL,
		CategoryID:   p.CategoryID,
		Tags:         p.TagsLabel(),
		IsActive:     p.IsActive,
	}
	if p.Price != nil {
		d.Price = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	return d
}

// Category converts the draft with the parsing rules applied.
func (d CategoryDraft) Category() domain.Category {
	return domain.Category{
		ID:          d.ID,
		Name:        strings.TrimSpace(d.Name),
		Slug:        strings.TrimSpace(d.Slug),
		Description: strings.TrimSpace(d.Description),
		Order:       ParseOrder(d.Order),
		IsActive:    d.IsActive,
	}
}

func (d CategoryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &FieldError{Field: "name"}
	}
	return nil
}

func (d ProductDraft) Product() domain.Product {
	return domain.Product{
		ID:           d.ID,
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		ImageURL:     strings.TrimSpace(d.ImageURL),
		AffiliateURL: strings.TrimSpace(d.AffiliateURL),
		Price:        ParsePrice(d.Price),
		CategoryID:   d.CategoryID,
		Tags:         ParseTags(d.Tags),
		IsActive:     d.IsActive,
	}
}

func (d ProductDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &FieldError{Field: "title"}
	}
	if strings.TrimSpace(d.AffiliateURL) == "" {
		return &FieldError{Field: "affiliate_url"}
	}
	return nil
}

// FieldError names the missing field and unwraps to domain.ErrRequired.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return e.Field + ": " + domain.ErrRequired.Error() }

func (e *FieldError) Unwrap() error { return domain.ErrRequired }

// ParseOrder returns the integer in s, or 0.
func ParseOrder(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ParsePrice returns nil for blank, unparsable or negative input.
func ParsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseTags splits on commas, trims, and drops empty entries. The result is
// never nil.
func ParseTags(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
