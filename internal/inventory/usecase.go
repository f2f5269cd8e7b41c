package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	GetLevel(ctx context.Context, orgID, productID string) (*model.StockLevel, error)
	ListLevels(ctx context.Context, filters *dto.LevelFilters) ([]dto.LevelView, int, error)

	Increase(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	Reduce(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	Move(ctx context.Context, input *dto.MoveStockInput) (*model.StockMovement, error)
	Adjust(ctx context.Context, input *dto.AdjustStockInput) (*model.StockMovement, error)
	Reserve(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	Release(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)
	SellReserved(ctx context.Context, input *dto.StockChangeInput) (*model.StockMovement, error)

	ReceiveBatch(ctx context.Context, input *dto.ReceiveBatchInput) (*model.Batch, error)
	ListBatches(ctx context.Context, orgID, productID string) ([]model.Batch, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ReferenceMovements(ctx context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error)
}

// Locker is a best-effort distributed lock keyed per product.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type AlertEvaluator interface {
	Evaluate(ctx context.Context, orgID, productID string) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// CacheInvalidator drops cached product lists once stock changes.
type CacheInvalidator interface {
	DeletePattern(ctx context.Context, pattern string) error
}
