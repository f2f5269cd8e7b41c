package product

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product together with its initial stock level.
	Create(ctx context.Context, product *model.Product, initial *model.StockLevel) error
	FindByID(ctx context.Context, orgID, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, orgID string, ids []string) ([]model.Product, error)
	FindByCode(ctx context.Context, orgID, code string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, orgID, id string) error

	// Check SKU/QR uniqueness, case-insensitive
	IsSKUUnique(ctx context.Context, orgID, sku, excludeID string) (bool, error)
	IsQRCodeUnique(ctx context.Context, orgID, qrCode, excludeID string) (bool, error)
}
