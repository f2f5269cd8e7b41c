package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/category"
	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	category.UseCase
	created *dto.CreateCategoryInput
	updated *dto.UpdateCategoryInput
	filters *dto.CategoryFilters
}

func (s *stubUseCase) CreateCategory(_ context.Context, in *dto.CreateCategoryInput) (*model.Category, error) {
	s.created = in
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation("name is required")
	}
	return &model.Category{BaseModel: model.BaseModel{ID: "c-1"}, Name: in.Name, ParentID: in.ParentID}, nil
}

func (s *stubUseCase) UpdateCategory(_ context.Context, in *dto.UpdateCategoryInput) (*model.Category, error) {
	s.updated = in
	if in.ParentID != nil && *in.ParentID == in.ID {
		return nil, apperror.Validation("a category cannot be its own parent")
	}
	return &model.Category{BaseModel: model.BaseModel{ID: in.ID}, Name: in.Name}, nil
}

func (s *stubUseCase) ListCategories(_ context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	s.filters = f
	return []model.Category{}, 0, nil
}

func (s *stubUseCase) GetTree(context.Context, string) ([]model.Category, error) {
	return []model.Category{{BaseModel: model.BaseModel{ID: "root"}, Name: "Food"}}, nil
}

func (s *stubUseCase) DeleteCategory(_ context.Context, _, id string) error {
	if id == "in-use" {
		return apperror.Conflict("category still has products")
	}
	return nil
}

func newApp(uc category.UseCase) *fiber.App {
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
		return c.Next()
	})
	NewCategoryHandler(uc, log).Register(app.Group("/categories"))
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestCreateCategory(t *testing.T) {
	uc := &stubUseCase{}
	app := newApp(uc)

	assert.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/categories/", `{"name":"Rice","parent":"root","sortOrder":2}`))
	require.NotNil(t, uc.created)
	assert.Equal(t, "org-1", uc.created.OrganizationID)
	require.NotNil(t, uc.created.ParentID)
	assert.Equal(t, "root", *uc.created.ParentID)
	assert.Equal(t, 2, uc.created.SortOrder)

	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "POST", "/categories/", `{"name":" "}`))
}

func TestListCategoriesParentFilter(t *testing.T) {
	uc := &stubUseCase{}
	app := newApp(uc)

	assert.Equal(t, fiber.StatusOK, send(t, app, "GET", "/categories/", ""))
	require.NotNil(t, uc.filters)
	assert.Nil(t, uc.filters.ParentID)
	assert.Nil(t, uc.filters.IsActive)
	assert.Equal(t, 50, uc.filters.PageSize)

	assert.Equal(t, fiber.StatusOK, send(t, app, "GET", "/categories/?parent=&isActive=false", ""))
	require.NotNil(t, uc.filters.ParentID)
	assert.Equal(t, "", *uc.filters.ParentID)
	require.NotNil(t, uc.filters.IsActive)
	assert.False(t, *uc.filters.IsActive)

	assert.Equal(t, fiber.StatusOK, send(t, app, "GET", "/categories/?parent=root", ""))
	assert.Equal(t, "root", *uc.filters.ParentID)
}

func TestCategoryTreeUpdateAndDelete(t *testing.T) {
	uc := &stubUseCase{}
	app := newApp(uc)

	resp, err := app.Test(httptest.NewRequest("GET", "/categories/tree", nil))
	require.NoError(t, err)
	var body struct {
		Data []model.Category `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Food", body.Data[0].Name)

	assert.Equal(t, fiber.StatusOK, send(t, app, "PUT", "/categories/c-1", `{"name":"Grains","isActive":true}`))
	require.NotNil(t, uc.updated)
	assert.Equal(t, "c-1", uc.updated.ID)
	assert.Equal(t, "org-1", uc.updated.OrganizationID)
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "PUT", "/categories/c-1", `{"name":"Grains","parent":"c-1"}`))

	assert.Equal(t, fiber.StatusOK, send(t, app, "DELETE", "/categories/c-1", ""))
	assert.Equal(t, fiber.StatusConflict, send(t, app, "DELETE", "/categories/in-use", ""))
}
