package user

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
)

type Repository interface {
	CreateOrganization(ctx context.Context, org *model.Organization, admin *model.User) error
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, orgID, id string) (*model.User, error)
	FindAll(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, orgID, id string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	CountActiveAdmins(ctx context.Context, orgID string) (int, error)
}
