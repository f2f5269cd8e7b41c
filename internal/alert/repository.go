package alert

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	GetSubject(ctx context.Context, orgID, productID string) (*dto.Subject, error)
	// ListExpiringSubjects returns active products whose expiry is before the cutoff.
	ListExpiringSubjects(ctx context.Context, cutoff time.Time) ([]dto.Subject, error)
	ListOpen(ctx context.Context, orgID, productID string) ([]model.Alert, error)
	Create(ctx context.Context, alert *model.Alert) error
	Resolve(ctx context.Context, ids []string, at time.Time) error

	FindAll(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error)
	CountUnread(ctx context.Context, orgID string) (int, error)
	MarkRead(ctx context.Context, orgID, id string) (bool, error)
	MarkAllRead(ctx context.Context, orgID string) (int64, error)
	Delete(ctx context.Context, orgID, id string) (bool, error)
}
