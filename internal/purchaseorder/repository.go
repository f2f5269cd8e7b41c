package purchaseorder

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
)

type Repository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, orgID, id string) (*model.PurchaseOrder, error)
	FindAll(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error)
	// UpdateStatus fails with a Conflict when the stored status is no longer previous.
	UpdateStatus(ctx context.Context, po *model.PurchaseOrder, previous string) error
}
