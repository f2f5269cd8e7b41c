package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/category"
	"github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Register(r fiber.Router) {
	r.Get("/", h.ListCategories)
	r.Get("/tree", h.GetTree)
	r.Post("/", h.CreateCategory)
	r.Get("/:id", h.GetCategory)
	r.Put("/:id", h.UpdateCategory)
	r.Delete("/:id", h.DeleteCategory)
}

func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var input dto.CreateCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.OrganizationID = auth.User(c).OrganizationID

	cat, err := h.uc.CreateCategory(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, cat)
}

func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	cat, err := h.uc.GetCategory(c.UserContext(), auth.User(c).OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, cat)
}

func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.CategoryFilters{
		OrganizationID: auth.User(c).OrganizationID,
		Search:         c.Query("search"),
		Page:           page,
		PageSize:       limit,
	}
	if c.Context().QueryArgs().Has("parent") {
		parent := c.Query("parent")
		filters.ParentID = &parent
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	cats, count, err := h.uc.ListCategories(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, cats, response.NewPagination(page, limit, count))
}

func (h *CategoryHandler) GetTree(c *fiber.Ctx) error {
	tree, err := h.uc.GetTree(c.UserContext(), auth.User(c).OrganizationID)
	if err != nil {
		return err
	}
	return response.OK(c, tree)
}

func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	var input dto.UpdateCategoryInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.ID = c.Params("id")
	input.OrganizationID = auth.User(c).OrganizationID

	cat, err := h.uc.UpdateCategory(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, cat)
}

func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "category deleted")
}
