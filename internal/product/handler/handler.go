package handler

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ImageSaver interface {
	SaveFile(fh *multipart.FileHeader) (string, error)
}

type ProductHandler struct {
	uc     product.UseCase
	images ImageSaver
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, images ImageSaver, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		images: images,
		logger: log,
	}
}

func (h *ProductHandler) Register(r fiber.Router) {
	r.Get("/", h.ListProducts)
	r.Post("/", h.CreateProduct)
	r.Get("/lookup", h.LookupProduct)
	r.Get("/:id", h.GetProduct)
	r.Put("/:id", h.UpdateProduct)
	r.Delete("/:id", h.DeleteProduct)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var input dto.CreateProductInput
	if isMultipart(c) {
		fields, err := h.parseForm(c)
		if err != nil {
			return err
		}
		input = dto.CreateProductInput{
			CategoryID:        fields.categoryID,
			SKU:               fields.sku,
			QRCode:            fields.qrCode,
			Name:              fields.name,
			Description:       fields.description,
			Price:             fields.price,
			CostPrice:         fields.costPrice,
			Unit:              fields.unit,
			LowStockThreshold: fields.lowStockThreshold,
			ReorderQuantity:   fields.reorderQuantity,
			ExpirationDate:    fields.expirationDate,
			ImageURL:          fields.imageURL,
			InitialGodown:     fields.initialGodown,
			InitialStore:      fields.initialStore,
		}
	} else if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	u := auth.User(c)
	input.OrganizationID = u.OrganizationID
	input.UserID = u.UserID

	p, err := h.uc.CreateProduct(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, p)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.UserContext(), auth.User(c).OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return response.OK(c, p)
}

// LookupProduct is manual code entry from the scanner page.
func (h *ProductHandler) LookupProduct(c *fiber.Ctx) error {
	p, err := h.uc.LookupByCode(c.UserContext(), auth.User(c).OrganizationID, c.Query("code"))
	if err != nil {
		return err
	}
	return response.OK(c, p)
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	page, limit := response.PageParams(c, 20)
	filters := &dto.ProductFilters{
		OrganizationID: auth.User(c).OrganizationID,
		CategoryID:     c.Query("categoryId", c.Query("category")),
		SearchQuery:    strings.TrimSpace(c.Query("search")),
		LowStock:       c.QueryBool("lowStock"),
		SortBy:         c.Query("sortBy", "createdAt"),
		SortOrder:      c.Query("sortOrder", "desc"),
		Page:           page,
		PageSize:       limit,
	}
	if v := c.Query("isActive"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	products, count, err := h.uc.ListProducts(c.UserContext(), filters)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return err
	}
	return response.Paginated(c, products, response.NewPagination(page, limit, count))
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var input dto.UpdateProductInput
	if isMultipart(c) {
		fields, err := h.parseForm(c)
		if err != nil {
			return err
		}
		input = dto.UpdateProductInput{
			CategoryID:        fields.categoryID,
			SKU:               fields.sku,
			QRCode:            fields.qrCode,
			Name:              fields.name,
			Description:       fields.description,
			Price:             fields.price,
			CostPrice:         fields.costPrice,
			Unit:              fields.unit,
			LowStockThreshold: fields.lowStockThreshold,
			ReorderQuantity:   fields.reorderQuantity,
			ExpirationDate:    fields.expirationDate,
			ImageURL:          fields.imageURL,
			IsActive:          fields.isActive,
		}
	} else if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.ID = c.Params("id")
	input.OrganizationID = auth.User(c).OrganizationID

	p, err := h.uc.UpdateProduct(c.UserContext(), &input)
	if err != nil {
		return err
	}
	return response.OK(c, p)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.uc.DeleteProduct(c.UserContext(), auth.User(c).OrganizationID, c.Params("id")); err != nil {
		return err
	}
	return response.Message(c, "product deleted")
}

type formFields struct {
	categoryID, sku, qrCode, name, description, unit, imageURL string
	price                                                      decimal.Decimal
	costPrice                                                  decimal.NullDecimal
	lowStockThreshold                                          *int
	reorderQuantity, initialGodown, initialStore               int
	expirationDate                                             *time.Time
	isActive                                                   *bool
}

func (h *ProductHandler) parseForm(c *fiber.Ctx) (*formFields, error) {
	f := &formFields{
		categoryID:  c.FormValue("categoryId"),
		sku:         c.FormValue("sku"),
		qrCode:      c.FormValue("qrCode"),
		name:        c.FormValue("name"),
		description: c.FormValue("description"),
		unit:        c.FormValue("unit"),
		imageURL:    c.FormValue("image"),
	}

	var err error
	if v := c.FormValue("price"); v != "" {
		if f.price, err = decimal.NewFromString(v); err != nil {
			return nil, apperror.Validation("invalid price")
		}
	}
	if v := c.FormValue("costPrice"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, apperror.Validation("invalid cost price")
		}
		f.costPrice = decimal.NewNullDecimal(d)
	}
	if v := c.FormValue("lowStockThreshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperror.Validation("invalid low stock threshold")
		}
		f.lowStockThreshold = &n
	}
	ints := map[string]*int{
		"reorderQuantity": &f.reorderQuantity,
		"initialGodown":   &f.initialGodown,
		"initialStore":    &f.initialStore,
	}
	for key, dst := range ints {
		if v := c.FormValue(key); v != "" {
			if *dst, err = strconv.Atoi(v); err != nil {
				return nil, apperror.Validation("invalid %s", key)
			}
		}
	}
	if v := c.FormValue("expirationDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, apperror.Validation("invalid expiration date")
		}
		f.expirationDate = &t
	}
	if v := c.FormValue("isActive"); v != "" {
		active := v == "true"
		f.isActive = &active
	}

	if fh, err := c.FormFile("image"); err == nil && h.images != nil {
		url, err := h.images.SaveFile(fh)
		if err != nil {
			h.logger.Warn("product image rejected", zap.Error(err))
			return nil, apperror.Validation("could not process image")
		}
		f.imageURL = url
	}
	return f, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
