package upload

import (
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	store  *ImageStore
	logger logger.ZapLogger
}

func NewHandler(store *ImageStore, log logger.ZapLogger) *Handler {
	return &Handler{store: store, logger: log}
}

func (h *Handler) Register(r fiber.Router) {
	r.Post("/image", h.UploadImage)
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperror.Validation("image file is required")
	}
	url, err := h.store.SaveFile(fh)
	if err != nil {
		h.logger.Warn("image upload rejected", zap.String("filename", fh.Filename), zap.Error(err))
		return apperror.Validation("could not process image")
	}
	return response.Created(c, fiber.Map{"url": url})
}
