package domain

import "encoding/json"

type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	IsActive    bool   `json:"is_active"`
}

// UnmarshalJSON treats a missing is_active as true.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	out := plain{IsActive: true}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*c = Category(out)
	return nil
}
