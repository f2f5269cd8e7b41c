package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	uc     alert.UseCase
	logger logger.ZapLogger
}

func NewAlertHandler(uc alert.UseCase, log logger.ZapLogger) *AlertHandler {
	return &AlertHandler{uc: uc, logger: log}
}

func (h *AlertHandler) Register(r fiber.Router) {
	r.Get("/", h.ListAlerts)
	r.Put("/read-all", h.MarkAllRead)
	r.Put("/:id/read", h.MarkRead)
	r.Delete("/:id", h.DeleteAlert)
}

func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	orgID := auth.User(c).OrganizationID
	page, limit := response.PageParams(c, 50)
	filters := &dto.AlertFilters{
		OrganizationID: orgID,
		Type:           c.Query("type"),
		UnreadOnly:     c.QueryBool("unread"),
		IncludeClosed:  c.QueryBool("includeResolved"),
		Page:           page,
		PageSize:       limit,
	}
	alerts, count, err := h.uc.ListAlerts(c.UserContext(), filters)
	if err != nil {
		return err
	}
	unread, err := h.uc.CountUnread(c.UserContext(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"data":        alerts,
		"unreadCount": unread,
		"pagination":  response.NewPagination(page, limit, count),
	})
}

func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "alert marked as read")
}

func (h *AlertHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), auth.User(c).OrganizationID)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"updated": n})
}

func (h *AlertHandler) DeleteAlert(c *fiber.Ctx) error {
	if err := h.uc.DeleteAlert(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "alert deleted")
}
