package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/analytics"
	"github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	dashboardTTL   = time.Minute
	topSellerDays  = 30
	topSellerLimit = 5
	recentLimit    = 10
)

type analyticsUseCase struct {
	repo   analytics.Repository
	cache  analytics.Cache
	now    func() time.Time
	logger logger.ZapLogger
}

// NewAnalyticsUseCase accepts a nil cache.
func NewAnalyticsUseCase(repo analytics.Repository, cache analytics.Cache, log logger.ZapLogger) analytics.UseCase {
	return &analyticsUseCase{
		repo:   repo,
		cache:  cache,
		now:    time.Now,
		logger: log,
	}
}

func (uc *analyticsUseCase) Dashboard(ctx context.Context, orgID string) (*dto.Dashboard, error) {
	key := fmt.Sprintf("analytics:dashboard:%s", orgID)
	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, key); err == nil && ok {
			var d dto.Dashboard
			if err := json.Unmarshal([]byte(cached), &d); err == nil {
				return &d, nil
			}
		} else if err != nil {
			uc.logger.Warn("failed to read dashboard cache", zap.Error(err))
		}
	}

	overview, err := uc.repo.Overview(ctx, orgID)
	if err != nil {
		return nil, err
	}
	d := &dto.Dashboard{
		Overview:    *overview,
		Stock:       overview.StockTotals,
		GeneratedAt: uc.now(),
	}
	d.Stock.Total = d.Stock.Godown + d.Stock.Store
	d.Stock.Available = d.Stock.Store - d.Stock.Reserved

	if d.Categories, err = uc.repo.CategoryBreakdown(ctx, orgID); err != nil {
		return nil, err
	}
	if d.UnreadAlerts, err = uc.repo.CountUnreadAlerts(ctx, orgID); err != nil {
		return nil, err
	}
	if d.PendingOrders, err = uc.repo.CountPendingOrders(ctx, orgID); err != nil {
		return nil, err
	}
	since := d.GeneratedAt.AddDate(0, 0, -topSellerDays)
	if d.TopSellers, err = uc.repo.TopSellers(ctx, orgID, since, topSellerLimit); err != nil {
		return nil, err
	}
	if d.RecentMovements, err = uc.repo.RecentMovements(ctx, orgID, recentLimit); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(d); err == nil {
			if err := uc.cache.Set(ctx, key, data, dashboardTTL); err != nil {
				uc.logger.Warn("failed to cache dashboard", zap.Error(err))
			}
		}
	}
	return d, nil
}
