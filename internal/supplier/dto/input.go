package dto

type CreateSupplierInput struct {
	OrganizationID string `json:"-"`
	Name           string `json:"name"`
	ContactName    string `json:"contactName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
}

type UpdateSupplierInput struct {
	OrganizationID string  `json:"-"`
	ID             string  `json:"-"`
	Name           *string `json:"name"`
	ContactName    *string `json:"contactName"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	IsActive       *bool   `json:"isActive"`
}
