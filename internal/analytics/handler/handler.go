package handler

import (
	"github.com/fekuna/omnipos-inventory-service/internal/analytics"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type AnalyticsHandler struct {
	uc     analytics.UseCase
	logger logger.ZapLogger
}

func NewAnalyticsHandler(uc analytics.UseCase, log logger.ZapLogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AnalyticsHandler) Register(r fiber.Router) {
	r.Get("/dashboard", h.Dashboard)
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.uc.Dashboard(c.UserContext(), auth.User(c).OrganizationID)
	if err != nil {
		return err
	}
	return response.OK(c, d)
}
