package models

// Category groups transactions. Categories form a forest through
// ParentCategoryID.
type Category struct {
	ID               string `json:"id,omitempty" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
	ParentCategoryID string `json:"parentCategoryId,omitempty" yaml:"parent_category_id,omitempty"`
	Color            string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Key implements the store record contract.
func (c Category) Key() string { return c.ID }

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool { return c.ParentCategoryID == "" }
