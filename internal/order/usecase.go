package order

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	orderdto "github.com/fekuna/omnipos-inventory-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, orgID, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error)
	UpdateStatus(ctx context.Context, input *orderdto.UpdateStatusInput) (*model.Order, error)
	SalesByProduct(ctx context.Context, filters *orderdto.SalesFilters) ([]model.SalesLine, error)
}

// StockReserver is the part of the inventory use case orders drive.
type StockReserver interface {
	Reserve(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	Release(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	SellReserved(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	ReferenceMovements(ctx context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}
