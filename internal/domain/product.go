package domain

import (
	"encoding/json"
	"strings"
)

type Product struct {
	ID           ID       `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	AffiliateURL string   `json:"affiliate_url"`
	Price        *float64 `json:"price"`
	CategoryID   ID       `json:"category_id"`
	Tags         []string `json:"tags"`
	IsActive     bool     `json:"is_active"`
}

// UnmarshalJSON treats a missing is_active as true.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	out := plain{IsActive: true}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = Product(out)
	return nil
}

// TagsLabel joins tags the way the edit form displays them.
func (p Product) TagsLabel() string {
	return strings.Join(p.Tags, ", ")
}

// ProductFilter narrows the product list by category and free text.
type ProductFilter struct {
	CategoryID ID     `json:"category_id"`
	Query      string `json:"q"`
}

// FilterKey is a comparable form of ProductFilter.
type FilterKey struct {
	CategoryID string
	Query      string
}

func (f ProductFilter) Key() FilterKey {
	return FilterKey{CategoryID: f.CategoryID.String(), Query: f.Query}
}

func (f ProductFilter) IsZero() bool {
	return f.CategoryID.IsZero() && f.Query == ""
}

// Matches applies the category and title predicates. Both must hold; an
// unset predicate matches everything.
func (f ProductFilter) Matches(p Product) bool {
	if !f.CategoryID.IsZero() && !f.CategoryID.Equal(p.CategoryID) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) {
		return false
	}
	return true
}
