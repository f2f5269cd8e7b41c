package analytics

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
)

type UseCase interface {
	Dashboard(ctx context.Context, orgID string) (*dto.Dashboard, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
