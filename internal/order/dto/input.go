package dto

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	OrganizationID string           `json:"-"`
	UserID         string           `json:"-"`
	CustomerName   string           `json:"customerName"`
	CustomerPhone  string           `json:"customerPhone"`
	Notes          string           `json:"notes"`
	Items          []OrderItemInput `json:"items"`
}

type UpdateStatusInput struct {
	OrganizationID string `json:"-"`
	UserID         string `json:"-"`
	ID             string `json:"-"`
	Status         string `json:"status"`
}
