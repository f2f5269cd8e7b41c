package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type promotionUseCase struct {
	repo   promotion.Repository
	logger logger.ZapLogger
}

func NewPromotionUseCase(repo promotion.Repository, log logger.ZapLogger) promotion.UseCase {
	return &promotionUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *promotionUseCase) CreatePromotion(ctx context.Context, in *dto.CreatePromotionInput) (*model.Promotion, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("promotion name is required")
	}
	if !in.DiscountPercent.IsPositive() || in.DiscountPercent.GreaterThan(hundred) {
		return nil, apperror.Validation("discount must be between 0 and 100 percent")
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return nil, apperror.Validation("start and end dates are required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, apperror.Validation("promotion must end after it starts")
	}

	now := time.Now()
	p := &model.Promotion{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID:  in.OrganizationID,
		Name:            name,
		DiscountPercent: in.DiscountPercent.Round(2),
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		IsActive:        true,
	}
	if in.ProductID != "" {
		ok, err := uc.repo.ProductExists(ctx, in.OrganizationID, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("product not found")
		}
		p.ProductID = &in.ProductID
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *promotionUseCase) ListPromotions(ctx context.Context, filters *dto.PromotionFilters) ([]model.Promotion, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *promotionUseCase) DeletePromotion(ctx context.Context, orgID, id string) error {
	deleted, err := uc.repo.Delete(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound("promotion not found")
	}
	return nil
}
