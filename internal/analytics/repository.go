package analytics

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	Overview(ctx context.Context, orgID string) (*dto.Overview, error)
	CategoryBreakdown(ctx context.Context, orgID string) ([]dto.CategoryBreakdown, error)
	CountUnreadAlerts(ctx context.Context, orgID string) (int, error)
	CountPendingOrders(ctx context.Context, orgID string) (int, error)
	TopSellers(ctx context.Context, orgID string, since time.Time, limit int) ([]model.SalesLine, error)
	RecentMovements(ctx context.Context, orgID string, limit int) ([]dto.RecentMovement, error)
}
