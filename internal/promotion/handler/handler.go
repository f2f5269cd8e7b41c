package handler

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type PromotionHandler struct {
	uc     promotion.UseCase
	logger logger.ZapLogger
}

func NewPromotionHandler(uc promotion.UseCase, log logger.ZapLogger) *PromotionHandler {
	return &PromotionHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PromotionHandler) Register(r fiber.Router) {
	r.Get("/", h.ListPromotions)
	r.Post("/", h.CreatePromotion)
	r.Delete("/:id", h.DeletePromotion)
}

func (h *PromotionHandler) CreatePromotion(c *fiber.Ctx) error {
	var input dto.CreatePromotionInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.OrganizationID = auth.User(c).OrganizationID

	p, err := h.uc.CreatePromotion(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, p)
}

// ListPromotions accepts ?active=true to show only promotions running now.
func (h *PromotionHandler) ListPromotions(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 50)
	filters := &dto.PromotionFilters{
		OrganizationID: auth.User(c).OrganizationID,
		ProductID:      c.Query("productId"),
		Page:           page,
		PageSize:       limit,
	}
	if c.Query("active") == "true" {
		now := time.Now()
		filters.ActiveAt = &now
	}

	promotions, count, err := h.uc.ListPromotions(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return response.Paginated(c, promotions, response.NewPagination(page, limit, count))
}

func (h *PromotionHandler) DeletePromotion(c *fiber.Ctx) error {
	if err := h.uc.DeletePromotion(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "promotion deleted")
}
