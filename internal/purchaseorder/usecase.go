package purchaseorder

import (
	"context"

	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
)

type UseCase interface {
	CreatePurchaseOrder(ctx context.Context, input *dto.CreatePurchaseOrderInput) (*model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, orgID, id string) (*model.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.PurchaseOrder, error)
	Receive(ctx context.Context, orgID, userID, id string) (*model.PurchaseOrder, error)
}

type SupplierFinder interface {
	GetSupplier(ctx context.Context, orgID, id string) (*model.Supplier, error)
}

// StockReceiver is the part of the inventory use case receiving drives.
type StockReceiver interface {
	Increase(ctx context.Context, input *invdto.StockChangeInput) (*model.StockMovement, error)
	Reduce(ctx context.Context, input *invdto.StockChangeInput) (*model.StockMovement, error)
}
