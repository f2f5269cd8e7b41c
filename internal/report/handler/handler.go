package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	uc     report.UseCase
	logger logger.ZapLogger
}

func NewReportHandler(uc report.UseCase, log logger.ZapLogger) *ReportHandler {
	return &ReportHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReportHandler) Register(r fiber.Router) {
	r.Get("/inventory", h.serve(h.uc.Inventory))
	r.Get("/low-stock", h.serve(h.uc.LowStock))
	r.Get("/sales", h.serve(h.uc.Sales))
}

type renderFunc func(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error)

func (h *ReportHandler) serve(render renderFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := &dto.ReportRequest{
			OrganizationID: auth.User(c).OrganizationID,
			Format:         dto.Format(strings.ToLower(c.Query("format", string(dto.FormatCSV)))),
			CategoryID:     c.Query("categoryId"),
		}
		var err error
		if req.From, err = parseDate(c.Query("from"), false); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date")
		}
		if req.To, err = parseDate(c.Query("to"), true); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date")
		}

		doc, err := render(c.UserContext(), req)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, doc.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, doc.Filename))
		return c.Send(doc.Body)
	}
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare end date covers the whole day.
func parseDate(v string, endOfDay bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
