package promotion

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
)

type UseCase interface {
	CreatePromotion(ctx context.Context, input *dto.CreatePromotionInput) (*model.Promotion, error)
	ListPromotions(ctx context.Context, filters *dto.PromotionFilters) ([]model.Promotion, int, error)
	DeletePromotion(ctx context.Context, orgID, id string) error
}
