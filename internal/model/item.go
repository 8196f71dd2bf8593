package model

// DefaultCategory is stored for items created without a category.
const DefaultCategory = "Uncategorized"

type Item struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	IsActive  bool   `json:"is_active"`
	CreatedAt int64  `json:"created_at"` // milliseconds since epoch
}

// ItemPatch carries the fields of an Item to change. Nil fields are left alone.
type ItemPatch struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CategoryGroup is a category label with the items that carry it.
type CategoryGroup struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}
