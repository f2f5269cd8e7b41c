package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	catdto "github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeedTestdata(t *testing.T) {
	fh, err := os.Open("testdata/shop.yaml")
	require.NoError(t, err)
	defer fh.Close()

	f, err := parseSeed(fh)
	require.NoError(t, err)
	require.Len(t, f.Categories, 2)
	assert.Len(t, f.Categories[0].Children, 2)
	require.Len(t, f.Products, 3)

	in, err := f.Products[0].input("cat-rice")
	require.NoError(t, err)
	assert.Equal(t, "cat-rice", in.CategoryID)
	assert.Equal(t, "65000", in.Price.String())
	assert.True(t, in.CostPrice.Valid)
	assert.Equal(t, 40, in.InitialGodown)
	assert.Equal(t, 12, in.InitialStore)
	require.NotNil(t, in.LowStockThreshold)
	assert.Equal(t, 10, *in.LowStockThreshold)

	oil, err := f.Products[1].input("")
	require.NoError(t, err)
	require.NotNil(t, oil.ExpirationDate)
	assert.Equal(t, "2027-06-30", oil.ExpirationDate.Format("2006-01-02"))
}

func TestParseSeedRejectsUnknownFields(t *testing.T) {
	_, err := parseSeed(strings.NewReader("products:\n  - sku: A\n    colour: red\n"))
	assert.Error(t, err)

	f, err := parseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Products)
}

func TestSeedProductValidation(t *testing.T) {
	tests := []struct {
		name string
		p    seedProduct
		want string
	}{
		{"missing sku", seedProduct{Name: "x"}, "sku and name are required"},
		{"negative stock", seedProduct{SKU: "A", Name: "x", Store: -1}, "cannot be negative"},
		{"bad price", seedProduct{SKU: "A", Name: "x", Price: "12,5"}, "price"},
		{"bad date", seedProduct{SKU: "A", Name: "x", ExpirationDate: "31/12/2026"}, "expirationDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.input("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type fakeSeedAPI struct {
	existing   []model.Category
	categories []*catdto.CreateCategoryInput
	products   []*productdto.CreateProductInput
	conflicts  map[string]bool
}

func (f *fakeSeedAPI) ListCategories(_ context.Context, q apiclient.Query) (*apiclient.Page[model.Category], error) {
	return &apiclient.Page[model.Category]{
		Items:      f.existing,
		Pagination: response.NewPagination(q.Page, q.Limit, len(f.existing)),
	}, nil
}

func (f *fakeSeedAPI) CreateCategory(_ context.Context, in *catdto.CreateCategoryInput) (*model.Category, error) {
	f.categories = append(f.categories, in)
	c := &model.Category{Name: in.Name, ParentID: in.ParentID}
	c.ID = "cat-" + strings.ToLower(strings.ReplaceAll(in.Name, " ", "-"))
	return c, nil
}

func (f *fakeSeedAPI) CreateProduct(_ context.Context, in *productdto.CreateProductInput) (*model.Product, error) {
	if f.conflicts[in.SKU] {
		return nil, &apiclient.APIError{StatusCode: http.StatusConflict, Message: "SKU already exists"}
	}
	f.products = append(f.products, in)
	p := &model.Product{SKU: in.SKU, Name: in.Name}
	p.ID = "prod-" + in.SKU
	return p, nil
}

func TestSeederRun(t *testing.T) {
	staples := model.Category{Name: "staples"}
	staples.ID = "existing-staples"
	api := &fakeSeedAPI{
		existing:  []model.Category{staples},
		conflicts: map[string]bool{"SOAP-LAV": true},
	}

	fh, err := os.Open("testdata/shop.yaml")
	require.NoError(t, err)
	defer fh.Close()
	f, err := parseSeed(fh)
	require.NoError(t, err)
	f.Products = append(f.Products, seedProduct{SKU: "GHOST", Name: "Ghost", Category: "Nowhere"})

	stats, err := newSeeder(api).Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "Nowhere"`)

	assert.Equal(t, seedStats{CategoriesCreated: 3, CategoriesReused: 1, ProductsCreated: 2, ProductsSkipped: 1}, stats)

	require.Len(t, api.categories, 3)
	assert.Equal(t, "Rice", api.categories[0].Name)
	require.NotNil(t, api.categories[0].ParentID)
	assert.Equal(t, "existing-staples", *api.categories[0].ParentID)
	assert.Nil(t, api.categories[2].ParentID, "Household is a root category")

	require.Len(t, api.products, 2)
	assert.Equal(t, "cat-rice", api.products[0].CategoryID)
	assert.Equal(t, "cat-cooking-oil", api.products[1].CategoryID)
}
