package catalog

import (
	"context"
	"testing"
	"time"

	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	calls    int
	lastQ    apiclient.Query
	items    []model.Product
	adjusted []int
}

func (f *fakeAPI) ListProducts(_ context.Context, q apiclient.Query) (*apiclient.Page[model.Product], error) {
	f.calls++
	f.lastQ = q
	return &apiclient.Page[model.Product]{
		Items:      f.items,
		Pagination: response.NewPagination(q.Page, q.Limit, 45),
	}, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, in *productdto.CreateProductInput) (*model.Product, error) {
	p := &model.Product{Name: in.Name, SKU: in.SKU}
	p.ID = "new"
	return p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id string, in *productdto.UpdateProductInput) (*model.Product, error) {
	p := &model.Product{Name: in.Name}
	p.ID = id
	return p, nil
}

func (f *fakeAPI) DeleteProduct(context.Context, string) error { return nil }

func (f *fakeAPI) AdjustStock(_ context.Context, in *invdto.AdjustStockInput) (*apiclient.StockResult, error) {
	f.adjusted = append(f.adjusted, in.NewQuantity)
	return &apiclient.StockResult{Stock: model.NewStockSummary(0, in.NewQuantity, 0)}, nil
}

func strPtr(s string) *string { return &s }

func product(id, code string) model.Product {
	p := model.Product{Name: id, QRCode: strPtr(code)}
	p.ID = id
	return p
}

func newTestStore(api *fakeAPI) (*Store, *time.Time) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(api, logger.NewNop())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestFetchThrottle(t *testing.T) {
	api := &fakeAPI{items: []model.Product{product("a", "A1")}}
	s, now := newTestStore(api)
	ctx := context.Background()

	called, err := s.FetchProducts(ctx, 1, false)
	require.NoError(t, err)
	assert.True(t, called)

	*now = now.Add(10 * time.Second)
	called, _ = s.FetchProducts(ctx, 1, false)
	assert.False(t, called, "same page within 30s is skipped")

	called, _ = s.FetchProducts(ctx, 1, true)
	assert.True(t, called, "force bypasses the throttle")

	called, _ = s.FetchProducts(ctx, 2, false)
	assert.True(t, called, "another page always fetches")

	s.SetFilters(Filters{Search: "tea"})
	called, _ = s.FetchProducts(ctx, 2, false)
	assert.True(t, called, "new filters always fetch")

	*now = now.Add(31 * time.Second)
	called, _ = s.FetchProducts(ctx, 2, false)
	assert.True(t, called)
	assert.Equal(t, 5, api.calls)
}

func TestFetchUpdatesPaging(t *testing.T) {
	api := &fakeAPI{items: []model.Product{product("a", "A1")}}
	s, _ := newTestStore(api)
	s.SetFilters(Filters{CategoryID: "cat-1", LowStock: true, SortBy: "name", SortOrder: "asc"})

	_, err := s.FetchProducts(context.Background(), 2, false)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.CurrentPage)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Equal(t, 45, snap.TotalProducts)
	assert.Len(t, snap.Products, 1)

	v := api.lastQ.Values()
	assert.Equal(t, "cat-1", v.Get("categoryId"))
	assert.Equal(t, "true", v.Get("lowStock"))
	assert.Equal(t, "name", v.Get("sortBy"))
	assert.Equal(t, "20", v.Get("limit"))
}

func TestMutationsSpliceLocalList(t *testing.T) {
	api := &fakeAPI{items: []model.Product{product("a", "A1"), product("b", "B1")}}
	s, _ := newTestStore(api)
	ctx := context.Background()
	_, err := s.FetchProducts(ctx, 1, false)
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, &productdto.CreateProductInput{Name: "New", SKU: "N"})
	require.NoError(t, err)
	assert.Equal(t, "new", s.Products()[0].ID)

	_, err = s.UpdateProduct(ctx, "b", &productdto.UpdateProductInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", s.Products()[2].Name)

	require.NoError(t, s.DeleteProduct(ctx, "a"))
	ids := []string{}
	for _, p := range s.Products() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new", "b"}, ids)
	assert.Equal(t, 45, s.Snapshot().TotalProducts)
	assert.Equal(t, 1, api.calls, "mutations never refetch")
}

func TestFindByCode(t *testing.T) {
	api := &fakeAPI{items: []model.Product{product("a", "abc123")}}
	s, _ := newTestStore(api)
	_, err := s.FetchProducts(context.Background(), 1, false)
	require.NoError(t, err)

	p := s.FindByCode("ABC123")
	require.NotNil(t, p)
	assert.Equal(t, "a", p.ID)
	assert.Nil(t, s.FindByCode("nope"))
}

func TestAdjustQuantityNeverNegative(t *testing.T) {
	api := &fakeAPI{items: []model.Product{product("a", "A1")}}
	s, _ := newTestStore(api)
	ctx := context.Background()
	_, err := s.FetchProducts(ctx, 1, false)
	require.NoError(t, err)

	_, err = s.AdjustQuantity(ctx, "a", "store", 3, -5, "count")
	require.NoError(t, err)
	_, err = s.AdjustQuantity(ctx, "a", "store", 3, 2, "count")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 5}, api.adjusted)
	require.NotNil(t, s.Products()[0].Stock)
	assert.Equal(t, 5, s.Products()[0].Stock.Store)
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 0, ClampQuantity(2, -3))
	assert.Equal(t, 0, ClampQuantity(2, -2))
	assert.Equal(t, 7, ClampQuantity(2, 5))
}
