package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items map[string]*model.Category
}

func newFakeRepo() *fakeRepo { return &fakeRepo{items: map[string]*model.Category{}} }

func (f *fakeRepo) Create(_ context.Context, c *model.Category) error {
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, orgID, id string) (*model.Category, error) {
	c, ok := f.items[id]
	if !ok || c.OrganizationID != orgID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) FindAll(_ context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	var out []model.Category
	for _, c := range f.items {
		if c.OrganizationID == filters.OrganizationID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, _, id string) error {
	delete(f.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateCategory(t *testing.T) {
	uc := NewCategoryUseCase(newFakeRepo(), logger.NewNop())
	ctx := context.Background()

	_, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "  "})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "Tea", ParentID: strPtr("missing")})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	root, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "Drinks", ParentID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
	assert.True(t, root.IsActive)
	assert.Nil(t, root.Icon)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	uc := NewCategoryUseCase(newFakeRepo(), logger.NewNop())
	ctx := context.Background()

	a, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "A"})
	require.NoError(t, err)
	b, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "B", ParentID: &a.ID})
	require.NoError(t, err)
	c, err := uc.CreateCategory(ctx, &dto.CreateCategoryInput{OrganizationID: "org", Name: "C", ParentID: &b.ID})
	require.NoError(t, err)

	_, err = uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: a.ID, OrganizationID: "org", ParentID: &c.ID})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: a.ID, OrganizationID: "org", ParentID: &a.ID})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	moved, err := uc.UpdateCategory(ctx, &dto.UpdateCategoryInput{ID: c.ID, OrganizationID: "org", ParentID: &a.ID, Name: "C2"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, *moved.ParentID)
	assert.Equal(t, "C2", moved.Name)
}

func TestBuildTree(t *testing.T) {
	flat := []model.Category{
		{BaseModel: model.BaseModel{ID: "b"}, Name: "Beta", SortOrder: 2},
		{BaseModel: model.BaseModel{ID: "a"}, Name: "Alpha", SortOrder: 1},
		{BaseModel: model.BaseModel{ID: "a1"}, Name: "Child", ParentID: strPtr("a")},
		{BaseModel: model.BaseModel{ID: "o"}, Name: "Orphan", ParentID: strPtr("gone"), SortOrder: 3},
	}

	tree := BuildTree(flat)
	require.Len(t, tree, 3)
	assert.Equal(t, "a", tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "a1", tree[0].Children[0].ID)
	assert.Equal(t, "b", tree[1].ID)
	assert.Equal(t, "o", tree[2].ID)

	assert.Empty(t, BuildTree(nil))
}

func TestDeleteCategoryNotFound(t *testing.T) {
	uc := NewCategoryUseCase(newFakeRepo(), logger.NewNop())
	err := uc.DeleteCategory(context.Background(), "org", "nope")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
