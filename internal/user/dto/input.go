package dto

type RegisterInput struct {
	OrganizationName string `json:"organizationName"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserInput struct {
	OrganizationID string `json:"-"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
}

type UpdateUserInput struct {
	OrganizationID string  `json:"-"`
	ID             string  `json:"-"`
	Name           *string `json:"name"`
	Role           *string `json:"role"`
	Password       *string `json:"password"`
	IsActive       *bool   `json:"isActive"`
}
