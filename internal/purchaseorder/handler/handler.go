package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderHandler struct {
	uc     purchaseorder.UseCase
	logger logger.ZapLogger
}

func NewPurchaseOrderHandler(uc purchaseorder.UseCase, log logger.ZapLogger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PurchaseOrderHandler) Register(r fiber.Router) {
	r.Get("/", h.ListPurchaseOrders)
	r.Post("/", h.CreatePurchaseOrder)
	r.Get("/:id", h.GetPurchaseOrder)
	r.Put("/:id/status", h.UpdateStatus)
	r.Post("/:id/receive", h.Receive)
}

func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var input dto.CreatePurchaseOrderInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user := auth.User(c)
	input.OrganizationID = user.OrganizationID
	input.UserID = user.UserID

	po, err := h.uc.CreatePurchaseOrder(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, po)
}

func (h *PurchaseOrderHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	po, err := h.uc.GetPurchaseOrder(c.UserContext(), auth.User(c).OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, po)
}

func (h *PurchaseOrderHandler) ListPurchaseOrders(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 20)
	filters := &dto.PurchaseOrderFilters{
		OrganizationID: auth.User(c).OrganizationID,
		SupplierID:     c.Query("supplierId"),
		Status:         c.Query("status"),
		Page:           page,
		PageSize:       limit,
	}
	orders, count, err := h.uc.ListPurchaseOrders(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, orders, response.NewPagination(page, limit, count))
}

func (h *PurchaseOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var input dto.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	user := auth.User(c)
	input.OrganizationID = user.OrganizationID
	input.UserID = user.UserID
	input.ID = c.Params("id")

	po, err := h.uc.UpdateStatus(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, po)
}

func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	user := auth.User(c)
	po, err := h.uc.Receive(c.UserContext(), user.OrganizationID, user.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, po)
}
