package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct{ items []model.Supplier }

func (r *memRepo) Create(_ context.Context, s *model.Supplier) error {
	r.items = append(r.items, *s)
	return nil
}
func (r *memRepo) FindByID(context.Context, string, string) (*model.Supplier, error) { return nil, nil }
func (r *memRepo) FindAll(context.Context, *dto.SupplierFilters) ([]model.Supplier, int, error) {
	return r.items, len(r.items), nil
}
func (r *memRepo) Update(context.Context, *model.Supplier) error { return nil }
func (r *memRepo) Delete(context.Context, string, string) error  { return nil }
func (r *memRepo) HasPurchaseOrders(context.Context, string, string) (bool, error) {
	return false, nil
}

func newApp(repo *memRepo) *fiber.App {
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
		return c.Next()
	})
	NewSupplierHandler(usecase.NewSupplierUseCase(repo, log), log).Register(app.Group("/suppliers"))
	return app
}

func TestCreateAndListSuppliers(t *testing.T) {
	repo := &memRepo{}
	app := newApp(repo)

	req := httptest.NewRequest("POST", "/suppliers/", strings.NewReader(`{"name":"Toko Grosir","contactName":"Andi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "org-1", repo.items[0].OrganizationID)

	resp, err = app.Test(httptest.NewRequest("GET", "/suppliers/?limit=10", nil))
	require.NoError(t, err)
	var body struct {
		Success    bool             `json:"success"`
		Data       []model.Supplier `json:"data"`
		Pagination struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Pagination.Total)
	assert.Equal(t, 10, body.Pagination.Limit)
}

func TestGetUnknownSupplier(t *testing.T) {
	resp, err := newApp(&memRepo{}).Test(httptest.NewRequest("GET", "/suppliers/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
