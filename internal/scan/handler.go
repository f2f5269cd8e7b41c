// Package scan decodes uploaded photos of QR codes and barcodes and resolves
// them to products.
package scan

import (
	"context"
	"errors"
	"io"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/fekuna/omnipos-inventory-service/pkg/scanner"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20

type ImageDecoder interface {
	DecodeReader(ctx context.Context, r io.Reader) (scanner.Result, error)
}

type ProductLookup interface {
	LookupByCode(ctx context.Context, orgID, code string) (*model.Product, error)
}

// Result is what the scan page renders: the decoded code, and the product
// when one matched.
type Result struct {
	Code    string         `json:"code"`
	Format  string         `json:"format"`
	Decoder string         `json:"decoder"`
	Found   bool           `json:"found"`
	Product *model.Product `json:"product"`
}

type Handler struct {
	decoder  ImageDecoder
	products ProductLookup
	logger   logger.ZapLogger
}

func NewHandler(decoder ImageDecoder, products ProductLookup, log logger.ZapLogger) *Handler {
	return &Handler{
		decoder:  decoder,
		products: products,
		logger:   log,
	}
}

func (h *Handler) Register(r fiber.Router) {
	r.Post("/", h.Scan)
}

func (h *Handler) Scan(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return apperror.Validation("image file is required")
	}
	if fh.Size > maxImageSize {
		return apperror.Validation("image is larger than %d MB", maxImageSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return apperror.Validation("could not read image")
	}
	defer f.Close()

	res, err := h.decoder.DecodeReader(c.UserContext(), f)
	if err != nil {
		if errors.Is(err, scanner.ErrNoCode) {
			return apperror.NotFound("no QR code or barcode found in image")
		}
		h.logger.Warn("scan image rejected", zap.String("filename", fh.Filename), zap.Error(err))
		return apperror.Validation("could not decode image")
	}

	out := Result{Code: res.Text, Format: res.Format, Decoder: res.Decoder}
	p, err := h.products.LookupByCode(c.UserContext(), auth.User(c).OrganizationID, res.Text)
	switch {
	case err == nil:
		out.Found = true
		out.Product = p
	case apperror.Is(err, apperror.KindNotFound):
	default:
		return err
	}
	return response.OK(c, out)
}
