package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/category"
	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}

	parentID := normalizeID(input.ParentID)
	if parentID != nil {
		parent, err := uc.repo.FindByID(ctx, input.OrganizationID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperror.NotFound("parent category not found")
		}
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: input.OrganizationID,
		ParentID:       parentID,
		Name:           name,
		Description:    optional(input.Description),
		Icon:           optional(input.Icon),
		SortOrder:      input.SortOrder,
		IsActive:       true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	uc.logger.Info("category created", zap.String("category_id", cat.ID), zap.String("organization_id", cat.OrganizationID))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, orgID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperror.NotFound("category not found")
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) GetTree(ctx context.Context, orgID string) ([]model.Category, error) {
	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{OrganizationID: orgID})
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperror.NotFound("category not found")
	}

	parentID := normalizeID(input.ParentID)
	if parentID != nil {
		if err := uc.checkParent(ctx, input.OrganizationID, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		cat.Name = name
	}
	cat.Description = optional(input.Description)
	cat.Icon = optional(input.Icon)
	cat.SortOrder = input.SortOrder
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	cat.ParentID = parentID
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// checkParent walks up from the new parent and rejects the move if it reaches the category itself.
func (uc *categoryUseCase) checkParent(ctx context.Context, orgID, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id {
			return apperror.Validation("a category cannot be nested under itself or its descendants")
		}
		if seen[cur] {
			break
		}
		seen[cur] = true

		parent, err := uc.repo.FindByID(ctx, orgID, cur)
		if err != nil {
			return err
		}
		if parent == nil {
			if cur == parentID {
				return apperror.NotFound("parent category not found")
			}
			break
		}
		if parent.ParentID == nil {
			break
		}
		cur = *parent.ParentID
	}
	return nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, orgID, id string) error {
	cat, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return apperror.NotFound("category not found")
	}
	return uc.repo.Delete(ctx, orgID, id)
}

// BuildTree nests a flat list by parent. Orphans whose parent is missing become roots.
func BuildTree(flat []model.Category) []model.Category {
	byParent := map[string][]model.Category{}
	ids := make(map[string]bool, len(flat))
	for _, c := range flat {
		ids[c.ID] = true
	}
	var roots []model.Category
	for _, c := range flat {
		if c.ParentID == nil || !ids[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	var attach func(nodes []model.Category, depth int) []model.Category
	attach = func(nodes []model.Category, depth int) []model.Category {
		sortCategories(nodes)
		if depth > len(flat) {
			return nodes
		}
		for i := range nodes {
			if kids, ok := byParent[nodes[i].ID]; ok {
				nodes[i].Children = attach(kids, depth+1)
			}
		}
		return nodes
	}
	if roots == nil {
		return []model.Category{}
	}
	return attach(roots, 0)
}

func sortCategories(cs []model.Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].SortOrder != cs[j].SortOrder {
			return cs[i].SortOrder < cs[j].SortOrder
		}
		return cs[i].Name < cs[j].Name
	})
}

func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
