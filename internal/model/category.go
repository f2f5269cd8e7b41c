package model

type Category struct {
	BaseModel
	OrganizationID string     `db:"organization_id" json:"organizationId"`
	ParentID       *string    `db:"parent_id" json:"parent"` // Nullable
	Name           string     `db:"name" json:"name"`
	Description    *string    `db:"description" json:"description"`
	Icon           *string    `db:"icon" json:"icon"`
	SortOrder      int        `db:"sort_order" json:"sortOrder"`
	IsActive       bool       `db:"is_active" json:"isActive"`
	ProductCount   int        `db:"product_count" json:"productCount"` // Denormalized
	Children       []Category `db:"-" json:"children,omitempty"`       // For tree structure, not in DB
}
