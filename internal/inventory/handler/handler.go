package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) RegisterStock(r fiber.Router) {
	r.Get("/levels", h.ListLevels)
	r.Get("/levels/:productId", h.GetLevel)
	r.Get("/movements", h.ListMovements)
	r.Post("/increase", h.changeStock(h.uc.Increase))
	r.Post("/reduce", h.changeStock(h.uc.Reduce))
	r.Post("/reserve", h.changeStock(h.uc.Reserve))
	r.Post("/release", h.changeStock(h.uc.Release))
	r.Post("/move", h.MoveStock)
	r.Post("/adjust", h.AdjustStock)
}

func (h *InventoryHandler) RegisterBatches(r fiber.Router) {
	r.Get("/", h.ListBatches)
	r.Post("/", h.ReceiveBatch)
}

type stockResult struct {
	Movement *model.StockMovement `json:"movement"`
	Stock    model.StockSummary   `json:"stock"`
}

func result(m *model.StockMovement) stockResult {
	return stockResult{
		Movement: m,
		Stock:    model.NewStockSummary(m.GodownAfter, m.StoreAfter, m.ReservedAfter),
	}
}

type stockOp func(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error)

func (h *InventoryHandler) changeStock(op stockOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input dto.StockChangeInput
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if input.Location == "" {
			input.Location = model.LocationStore
		}
		u := auth.User(c)
		input.OrganizationID = u.OrganizationID
		input.UserID = u.UserID

		m, err := op(c.UserContext(), &input)
		if err != nil {
			return err
		}
		return response.OK(c, result(m))
	}
}

func (h *InventoryHandler) MoveStock(c *fiber.Ctx) error {
	var input dto.MoveStockInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	u := auth.User(c)
	input.OrganizationID = u.OrganizationID
	input.UserID = u.UserID

	m, err := h.uc.Move(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, result(m))
}

func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var input dto.AdjustStockInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if input.Location == "" {
		input.Location = model.LocationStore
	}
	u := auth.User(c)
	input.OrganizationID = u.OrganizationID
	input.UserID = u.UserID

	m, err := h.uc.Adjust(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, result(m))
}

func (h *InventoryHandler) GetLevel(c *fiber.Ctx) error {
	level, err := h.uc.GetLevel(c.UserContext(), auth.User(c).OrganizationID, c.Params("productId"))
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{
		"productId": level.ProductID,
		"stock":     level.Summary(),
		"updatedAt": level.UpdatedAt,
	})
}

func (h *InventoryHandler) ListLevels(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.LevelFilters{
		OrganizationID: auth.User(c).OrganizationID,
		CategoryID:     c.Query("categoryId"),
		Search:         c.Query("search"),
		LowStock:       c.QueryBool("lowStock"),
		Page:           page,
		PageSize:       limit,
	}
	levels, count, err := h.uc.ListLevels(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, levels, response.NewPagination(page, limit, count))
}

func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.MovementFilters{
		OrganizationID: auth.User(c).OrganizationID,
		ProductID:      c.Query("productId"),
		MovementType:   c.Query("type"),
		Page:           page,
		PageSize:       limit,
	}
	if t, err := time.Parse("2006-01-02", c.Query("startDate")); err == nil {
		filters.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("endDate")); err == nil {
		end := t.AddDate(0, 0, 1)
		filters.EndDate = &end
	}

	movements, count, err := h.uc.ListMovements(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, movements, response.NewPagination(page, limit, count))
}

func (h *InventoryHandler) ReceiveBatch(c *fiber.Ctx) error {
	var input dto.ReceiveBatchInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	u := auth.User(c)
	input.OrganizationID = u.OrganizationID
	input.UserID = u.UserID

	batch, err := h.uc.ReceiveBatch(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, batch)
}

func (h *InventoryHandler) ListBatches(c *fiber.Ctx) error {
	batches, err := h.uc.ListBatches(c.UserContext(), auth.User(c).OrganizationID, c.Query("productId"))
	if err != nil {
		return err
	}
	return response.OK(c, batches)
}
