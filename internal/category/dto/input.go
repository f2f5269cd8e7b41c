package dto

type CreateCategoryInput struct {
	OrganizationID string  `json:"-"`
	ParentID       *string `json:"parent"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	SortOrder      int     `json:"sortOrder"`
}

type UpdateCategoryInput struct {
	ID             string  `json:"-"`
	OrganizationID string  `json:"-"`
	ParentID       *string `json:"parent"` // Nil or "" moves the category to root
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
	SortOrder      int     `json:"sortOrder"`
	IsActive       *bool   `json:"isActive"`
}
