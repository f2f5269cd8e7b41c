package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	uc     supplier.UseCase
	logger logger.ZapLogger
}

func NewSupplierHandler(uc supplier.UseCase, log logger.ZapLogger) *SupplierHandler {
	return &SupplierHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SupplierHandler) Register(r fiber.Router) {
	r.Get("/", h.ListSuppliers)
	r.Post("/", h.CreateSupplier)
	r.Get("/:id", h.GetSupplier)
	r.Put("/:id", h.UpdateSupplier)
	r.Delete("/:id", h.DeleteSupplier)
}

func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var input dto.CreateSupplierInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.OrganizationID = auth.User(c).OrganizationID

	s, err := h.uc.CreateSupplier(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, s)
}

func (h *SupplierHandler) GetSupplier(c *fiber.Ctx) error {
	s, err := h.uc.GetSupplier(c.UserContext(), auth.User(c).OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, s)
}

func (h *SupplierHandler) ListSuppliers(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.SupplierFilters{
		OrganizationID: auth.User(c).OrganizationID,
		Search:         c.Query("search"),
		Page:           page,
		PageSize:       limit,
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	suppliers, count, err := h.uc.ListSuppliers(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, suppliers, response.NewPagination(page, limit, count))
}

func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	var input dto.UpdateSupplierInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.ID = c.Params("id")
	input.OrganizationID = auth.User(c).OrganizationID

	s, err := h.uc.UpdateSupplier(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, s)
}

func (h *SupplierHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.uc.DeleteSupplier(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "supplier deleted")
}
