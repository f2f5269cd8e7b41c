package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingUseCase struct {
	product.UseCase
	created *dto.CreateProductInput
	updated *dto.UpdateProductInput
}

func (u *capturingUseCase) CreateProduct(_ context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	u.created = in
	return &model.Product{
		BaseModel:      model.BaseModel{ID: "new-id"},
		OrganizationID: in.OrganizationID,
		SKU:            in.SKU,
		Name:           in.Name,
		Price:          in.Price,
	}, nil
}

func (u *capturingUseCase) UpdateProduct(_ context.Context, in *dto.UpdateProductInput) (*model.Product, error) {
	u.updated = in
	return &model.Product{BaseModel: model.BaseModel{ID: in.ID}, Name: in.Name}, nil
}

func (u *capturingUseCase) LookupByCode(_ context.Context, _, code string) (*model.Product, error) {
	if code != "8991234567890" {
		return nil, apperror.NotFound("product not found")
	}
	return &model.Product{BaseModel: model.BaseModel{ID: "p1"}, SKU: code}, nil
}

type recordingImages struct {
	names []string
	err   error
}

func (r *recordingImages) SaveFile(fh *multipart.FileHeader) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.names = append(r.names, fh.Filename)
	return "/static/uploads/" + fh.Filename, nil
}

func newApp(uc product.UseCase, images ImageSaver) *fiber.App {
	log := logger.NewNop()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
		return c.Next()
	})
	NewProductHandler(uc, images, log).Register(app.Group("/products"))
	return app
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "rice.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateProductFromMultipartForm(t *testing.T) {
	uc := &capturingUseCase{}
	images := &recordingImages{}
	app := newApp(uc, images)

	body, contentType := multipartBody(t, map[string]string{
		"name":              "Rice 5kg",
		"sku":               "RICE-5",
		"categoryId":        "c1",
		"price":             "65000.50",
		"costPrice":         "52000",
		"unit":              "bag",
		"lowStockThreshold": "4",
		"reorderQuantity":   "20",
		"initialGodown":     "30",
		"initialStore":      "6",
		"expirationDate":    "2027-01-31",
	}, []byte("\x89PNG fake"))
	req := httptest.NewRequest("POST", "/products/", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	in := uc.created
	require.NotNil(t, in)
	assert.Equal(t, "org-1", in.OrganizationID)
	assert.Equal(t, "u-1", in.UserID)
	assert.Equal(t, "Rice 5kg", in.Name)
	assert.Equal(t, "c1", in.CategoryID)
	assert.True(t, in.Price.Equal(decimal.RequireFromString("65000.5")), in.Price.String())
	require.True(t, in.CostPrice.Valid)
	assert.True(t, in.CostPrice.Decimal.Equal(decimal.NewFromInt(52000)))
	require.NotNil(t, in.LowStockThreshold)
	assert.Equal(t, 4, *in.LowStockThreshold)
	assert.Equal(t, 20, in.ReorderQuantity)
	assert.Equal(t, 30, in.InitialGodown)
	assert.Equal(t, 6, in.InitialStore)
	require.NotNil(t, in.ExpirationDate)
	assert.True(t, in.ExpirationDate.Equal(time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "/static/uploads/rice.png", in.ImageURL)
	assert.Equal(t, []string{"rice.png"}, images.names)

	var out struct {
		Success bool          `json:"success"`
		Data    model.Product `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "new-id", out.Data.ID)
}

func TestCreateProductFromJSON(t *testing.T) {
	uc := &capturingUseCase{}
	app := newApp(uc, &recordingImages{})

	req := httptest.NewRequest("POST", "/products/", strings.NewReader(`{"name":"Soap","sku":"SOAP","price":"3.50","initialStore":12}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, uc.created)
	assert.True(t, uc.created.Price.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, 12, uc.created.InitialStore)
	assert.Equal(t, "org-1", uc.created.OrganizationID)
}

func TestCreateProductRejectsBadForm(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		images *recordingImages
		image  []byte
	}{
		{"price", map[string]string{"name": "A", "price": "ten"}, &recordingImages{}, nil},
		{"cost price", map[string]string{"name": "A", "price": "1", "costPrice": "1,5"}, &recordingImages{}, nil},
		{"threshold", map[string]string{"name": "A", "lowStockThreshold": "few"}, &recordingImages{}, nil},
		{"initial stock", map[string]string{"name": "A", "initialStore": "1.5"}, &recordingImages{}, nil},
		{"expiration date", map[string]string{"name": "A", "expirationDate": "31/01/2027"}, &recordingImages{}, nil},
		{"image", map[string]string{"name": "A"}, &recordingImages{err: errors.New("not an image")}, []byte("plain text")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &capturingUseCase{}
			body, contentType := multipartBody(t, tt.fields, tt.image)
			req := httptest.NewRequest("POST", "/products/", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := newApp(uc, tt.images).Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Nil(t, uc.created)
		})
	}
}

func TestUpdateProductFromMultipartForm(t *testing.T) {
	uc := &capturingUseCase{}
	app := newApp(uc, &recordingImages{})

	body, contentType := multipartBody(t, map[string]string{"name": "Rice 10kg", "price": "120000", "isActive": "false"}, nil)
	req := httptest.NewRequest("PUT", "/products/p1", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, uc.updated)
	assert.Equal(t, "p1", uc.updated.ID)
	assert.Equal(t, "org-1", uc.updated.OrganizationID)
	require.NotNil(t, uc.updated.IsActive)
	assert.False(t, *uc.updated.IsActive)
}

func TestLookupProduct(t *testing.T) {
	app := newApp(&capturingUseCase{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/products/lookup?code=8991234567890", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/products/lookup?code=000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
