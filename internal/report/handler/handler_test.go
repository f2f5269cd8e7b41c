package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	last *dto.ReportRequest
}

func (s *stubUseCase) render(kind string, req *dto.ReportRequest) (*dto.Document, error) {
	s.last = req
	if req.Format != dto.FormatCSV {
		return nil, apperror.Validation("unsupported report format %q", req.Format)
	}
	return &dto.Document{Filename: kind + ".csv", ContentType: "text/csv; charset=utf-8", Body: []byte(`"a"` + "\n")}, nil
}

func (s *stubUseCase) Inventory(_ context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	return s.render("inventory", req)
}

func (s *stubUseCase) LowStock(_ context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	return s.render("low-stock", req)
}

func (s *stubUseCase) Sales(_ context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	return s.render("sales", req)
}

func newApp(uc *stubUseCase) *fiber.App {
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
		return c.Next()
	})
	NewReportHandler(uc, log).Register(app.Group("/reports"))
	return app
}

func TestReportIsServedAsAttachment(t *testing.T) {
	uc := &stubUseCase{}
	resp, err := newApp(uc).Test(httptest.NewRequest("GET", "/reports/inventory", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="inventory.csv"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "\"a\"\n", string(body))
	assert.Equal(t, "org-1", uc.last.OrganizationID)
}

func TestSalesPeriodParsing(t *testing.T) {
	uc := &stubUseCase{}
	resp, err := newApp(uc).Test(httptest.NewRequest("GET", "/reports/sales?from=2026-02-01&to=2026-02-28", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), uc.last.From)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), uc.last.To)

	resp, err = newApp(uc).Test(httptest.NewRequest("GET", "/reports/sales?from=yesterday", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUnknownFormatIsRejected(t *testing.T) {
	resp, err := newApp(&stubUseCase{}).Test(httptest.NewRequest("GET", "/reports/low-stock?format=PDF", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
