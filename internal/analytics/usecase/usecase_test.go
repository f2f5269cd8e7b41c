package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	overviewCalls int
	since         time.Time
}

func (r *fakeRepo) Overview(context.Context, string) (*dto.Overview, error) {
	r.overviewCalls++
	return &dto.Overview{
		TotalProducts:   4,
		ActiveProducts:  3,
		LowStockCount:   1,
		OutOfStockCount: 1,
		StockValue:      decimal.RequireFromString("125.50"),
		StockTotals:     dto.StockTotals{Godown: 30, Store: 12, Reserved: 2},
	}, nil
}

func (r *fakeRepo) CategoryBreakdown(context.Context, string) ([]dto.CategoryBreakdown, error) {
	return []dto.CategoryBreakdown{{Name: "Uncategorized", Products: 4, Units: 42}}, nil
}

func (r *fakeRepo) CountUnreadAlerts(context.Context, string) (int, error) { return 2, nil }

func (r *fakeRepo) CountPendingOrders(context.Context, string) (int, error) { return 1, nil }

func (r *fakeRepo) TopSellers(_ context.Context, _ string, since time.Time, _ int) ([]model.SalesLine, error) {
	r.since = since
	return []model.SalesLine{{ProductID: "p1", ProductName: "Rice", Quantity: 9}}, nil
}

func (r *fakeRepo) RecentMovements(context.Context, string, int) ([]dto.RecentMovement, error) {
	return []dto.RecentMovement{}, nil
}

type memCache map[string]string

func (m memCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = string(value)
	return nil
}

func TestDashboard(t *testing.T) {
	repo := &fakeRepo{}
	cache := memCache{}
	uc := NewAnalyticsUseCase(repo, cache, logger.NewNop()).(*analyticsUseCase)
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	d, err := uc.Dashboard(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 42, d.Stock.Total)
	assert.Equal(t, 10, d.Stock.Available)
	assert.Equal(t, 2, d.UnreadAlerts)
	assert.Equal(t, 1, d.PendingOrders)
	assert.Equal(t, now.AddDate(0, 0, -30), repo.since)
	assert.Contains(t, cache, "analytics:dashboard:org-1")

	cached, err := uc.Dashboard(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.overviewCalls)
	assert.Equal(t, 42, cached.Stock.Total)
	assert.True(t, cached.StockValue.Equal(decimal.RequireFromString("125.5")))
	assert.Equal(t, 4, cached.TotalProducts)
	require.Len(t, cached.TopSellers, 1)
}

func TestDashboardWithoutCache(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewAnalyticsUseCase(repo, nil, logger.NewNop())
	_, err := uc.Dashboard(context.Background(), "org-1")
	require.NoError(t, err)
	_, err = uc.Dashboard(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.overviewCalls)
}
