package user

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
)

type UseCase interface {
	Register(ctx context.Context, input *dto.RegisterInput) (*dto.Session, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.Session, error)
	Me(ctx context.Context, caller auth.UserContext) (*dto.Session, error)
	ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	UpdateUser(ctx context.Context, input *dto.UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, caller auth.UserContext, id string) error
}

type TokenIssuer interface {
	Generate(u auth.UserContext) (string, error)
	Expiry() time.Duration
}
