package order

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/order/dto"
)

type Repository interface {
	PriceProducts(ctx context.Context, orgID string, productIDs []string) ([]dto.PricedProduct, error)
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orgID, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	// UpdateStatus fails with a Conflict when the stored status is no longer previous.
	UpdateStatus(ctx context.Context, order *model.Order, previous string) error
	SalesByProduct(ctx context.Context, filters *dto.SalesFilters) ([]model.SalesLine, error)
}
