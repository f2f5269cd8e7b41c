package alert

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	// Evaluate opens and resolves the alerts of one product so they match its current state.
	Evaluate(ctx context.Context, orgID, productID string) error
	// Sweep re-evaluates every product close to expiry; expiry changes with time, not with writes.
	Sweep(ctx context.Context) error

	ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error)
	CountUnread(ctx context.Context, orgID string) (int, error)
	MarkRead(ctx context.Context, orgID, id string) error
	MarkAllRead(ctx context.Context, orgID string) (int64, error)
	DeleteAlert(ctx context.Context, orgID, id string) error
}
