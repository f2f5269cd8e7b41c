package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	// GetLevel returns nil when the product does not exist. A product without a
	// stock_levels row is reported with its legacy quantity in the store.
	GetLevel(ctx context.Context, orgID, productID string) (*model.StockLevel, error)
	ListLevels(ctx context.Context, filters *dto.LevelFilters) ([]dto.LevelView, int, error)

	// ApplyMovement persists the new level and its movement in one transaction.
	ApplyMovement(ctx context.Context, level *model.StockLevel, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	// ListReferenceMovements returns the movements of one product booked
	// against a reference, oldest first.
	ListReferenceMovements(ctx context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error)

	CreateBatch(ctx context.Context, batch *model.Batch, level *model.StockLevel, movement *model.StockMovement) error
	ListBatches(ctx context.Context, orgID, productID string) ([]model.Batch, error)
}
