package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/order"
	"github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) Register(r fiber.Router) {
	r.Get("/", h.ListOrders)
	r.Post("/", h.CreateOrder)
	r.Get("/:id", h.GetOrder)
	r.Put("/:id/status", h.UpdateStatus)
	r.Patch("/:id/status", h.UpdateStatus)
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var input dto.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user := auth.User(c)
	input.OrganizationID = user.OrganizationID
	input.UserID = user.UserID

	o, err := h.uc.CreateOrder(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, o)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.uc.GetOrder(c.UserContext(), auth.User(c).OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, o)
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 20)
	filters := &dto.OrderFilters{
		OrganizationID: auth.User(c).OrganizationID,
		Status:         c.Query("status"),
		Search:         c.Query("search"),
		Page:           page,
		PageSize:       limit,
	}
	orders, count, err := h.uc.ListOrders(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, orders, response.NewPagination(page, limit, count))
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var input dto.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user := auth.User(c)
	input.OrganizationID = user.OrganizationID
	input.UserID = user.UserID
	input.ID = c.Params("id")

	o, err := h.uc.UpdateStatus(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, o)
}
