package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/inventorytest"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(repo *inventorytest.Repo) *fiber.App {
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
		return c.Next()
	})
	NewInventoryHandler(usecase.NewInventoryUseCase(repo, nil, log), log).RegisterStock(app.Group("/stock"))
	return app
}

type stockBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Movement model.StockMovement `json:"movement"`
		Stock    model.StockSummary  `json:"stock"`
	} `json:"data"`
}

func post(t *testing.T, app *fiber.App, path, body string) (int, stockBody) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out stockBody
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func seeded() *inventorytest.Repo {
	return inventorytest.NewRepo(model.StockLevel{ProductID: "p1", OrganizationID: "org-1", Godown: 20, Store: 5})
}

func TestStockEndpoints(t *testing.T) {
	repo := seeded()
	app := newApp(repo)

	tests := []struct {
		name     string
		path     string
		body     string
		movement string
		quantity int
		stock    model.StockSummary
	}{
		{
			name: "increase defaults to store", path: "/stock/increase",
			body:     `{"productId":"p1","quantity":3,"notes":"restock"}`,
			movement: model.MovementIn, quantity: 3,
			stock: model.StockSummary{Godown: 20, Store: 8, Total: 28, Reserved: 0, Available: 8},
		},
		{
			name: "reduce godown", path: "/stock/reduce",
			body:     `{"productId":"p1","location":"godown","quantity":5}`,
			movement: model.MovementOut, quantity: -5,
			stock: model.StockSummary{Godown: 15, Store: 8, Total: 23, Reserved: 0, Available: 8},
		},
		{
			name: "move godown to store", path: "/stock/move",
			body:     `{"productId":"p1","from":"godown","to":"store","quantity":10}`,
			movement: model.MovementTransfer, quantity: -10,
			stock: model.StockSummary{Godown: 5, Store: 18, Total: 23, Reserved: 0, Available: 18},
		},
		{
			name: "adjust store after count", path: "/stock/adjust",
			body:     `{"productId":"p1","newQuantity":12,"reason":"count"}`,
			movement: model.MovementAdjust, quantity: -6,
			stock: model.StockSummary{Godown: 5, Store: 12, Total: 17, Reserved: 0, Available: 12},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, tt.path, tt.body)
			assert.Equal(t, fiber.StatusOK, status, body.Message)
			assert.True(t, body.Success)
			assert.Equal(t, tt.movement, body.Data.Movement.MovementType)
			assert.Equal(t, tt.quantity, body.Data.Movement.Quantity)
			assert.Equal(t, tt.stock, body.Data.Stock)
		})
	}

	ms := repo.Movements()
	require.Len(t, ms, 4)
	for _, m := range ms {
		assert.Equal(t, "org-1", m.OrganizationID)
		require.NotNil(t, m.CreatedBy)
		assert.Equal(t, "u-1", *m.CreatedBy)
	}
}

func TestStockEndpointErrors(t *testing.T) {
	app := newApp(seeded())

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed body", "/stock/increase", `{"productId":`, fiber.StatusBadRequest},
		{"zero quantity", "/stock/increase", `{"productId":"p1","quantity":0}`, fiber.StatusBadRequest},
		{"unknown location", "/stock/reduce", `{"productId":"p1","location":"shelf","quantity":1}`, fiber.StatusBadRequest},
		{"unknown product", "/stock/increase", `{"productId":"p9","quantity":1}`, fiber.StatusNotFound},
		{"short store", "/stock/reduce", `{"productId":"p1","quantity":6}`, fiber.StatusConflict},
		{"same location move", "/stock/move", `{"productId":"p1","from":"store","to":"store","quantity":1}`, fiber.StatusBadRequest},
		{"negative count", "/stock/adjust", `{"productId":"p1","newQuantity":-1}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestReserveThenReduceRespectsReservation(t *testing.T) {
	app := newApp(seeded())

	status, body := post(t, app, "/stock/reserve", `{"productId":"p1","quantity":4,"referenceType":"order","referenceId":"o-1"}`)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	assert.Equal(t, 4, body.Data.Stock.Reserved)
	assert.Equal(t, 1, body.Data.Stock.Available)

	status, _ = post(t, app, "/stock/reduce", `{"productId":"p1","quantity":2}`)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestGetLevel(t *testing.T) {
	app := newApp(seeded())

	resp, err := app.Test(httptest.NewRequest("GET", "/stock/levels/p1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			ProductID string             `json:"productId"`
			Stock     model.StockSummary `json:"stock"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "p1", body.Data.ProductID)
	assert.Equal(t, 25, body.Data.Stock.Total)

	resp, err = app.Test(httptest.NewRequest("GET", "/stock/levels/p9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
