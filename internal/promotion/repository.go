package promotion

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Promotion) error
	FindAll(ctx context.Context, filters *dto.PromotionFilters) ([]model.Promotion, int, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
	ProductExists(ctx context.Context, orgID, productID string) (bool, error)
}
