package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	orgs  map[string]model.Organization
	users map[string]model.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orgs: map[string]model.Organization{}, users: map[string]model.User{}}
}

func (r *fakeRepo) CreateOrganization(_ context.Context, org *model.Organization, admin *model.User) error {
	r.orgs[org.ID] = *org
	r.users[admin.ID] = *admin
	return nil
}

func (r *fakeRepo) GetOrganization(_ context.Context, id string) (*model.Organization, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *fakeRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) FindByID(_ context.Context, orgID, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok || u.OrganizationID != orgID {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeRepo) FindAll(context.Context, *dto.UserFilters) ([]model.User, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = *u
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, _, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	u := r.users[id]
	u.LastLoginAt = &at
	r.users[id] = u
	return nil
}

func (r *fakeRepo) CountActiveAdmins(_ context.Context, orgID string) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.OrganizationID == orgID && u.Role == model.RoleAdmin && u.IsActive {
			n++
		}
	}
	return n, nil
}

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(repo *fakeRepo) (*userUseCase, *auth.TokenManager) {
	tm := auth.NewTokenManager("test-secret", 8*time.Hour)
	uc := NewUserUseCase(repo, tm, 14, logger.NewNop()).(*userUseCase)
	uc.bcryptCost = bcrypt.MinCost
	uc.now = func() time.Time { return fixedNow }
	return uc, tm
}

func register(t *testing.T, uc *userUseCase) *dto.Session {
	t.Helper()
	s, err := uc.Register(context.Background(), &dto.RegisterInput{
		OrganizationName: "Toko Maju",
		Name:             "Sari",
		Email:            " Sari@Example.com ",
		Password:         "s3cret-pass",
	})
	require.NoError(t, err)
	return s
}

func TestRegisterStartsTrial(t *testing.T) {
	repo := newFakeRepo()
	uc, tm := newUseCase(repo)

	s := register(t, uc)
	assert.Equal(t, "sari@example.com", s.User.Email)
	assert.Equal(t, model.RoleAdmin, s.User.Role)
	assert.Equal(t, model.SubscriptionTrial, s.Subscription.Status)
	assert.Equal(t, 14, s.Subscription.DaysLeft)
	assert.True(t, s.Permissions.ManageUsers)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, fixedNow.Add(8*time.Hour), *s.ExpiresAt)

	caller, err := tm.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, caller.UserID)
	assert.Equal(t, s.User.OrganizationID, caller.OrganizationID)

	_, err = uc.Register(context.Background(), &dto.RegisterInput{
		OrganizationName: "Other", Name: "X", Email: "SARI@example.com", Password: "another-pass",
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	uc, _ := newUseCase(repo)
	reg := register(t, uc)

	s, err := uc.Login(context.Background(), &dto.LoginInput{Email: "SARI@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	require.NotNil(t, repo.users[reg.User.ID].LastLoginAt)

	_, err = uc.Login(context.Background(), &dto.LoginInput{Email: "sari@example.com", Password: "wrong-pass"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = uc.Login(context.Background(), &dto.LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	u := repo.users[reg.User.ID]
	u.IsActive = false
	repo.users[u.ID] = u
	_, err = uc.Login(context.Background(), &dto.LoginInput{Email: "sari@example.com", Password: "s3cret-pass"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestMeReportsExpiredTrial(t *testing.T) {
	repo := newFakeRepo()
	uc, _ := newUseCase(repo)
	reg := register(t, uc)

	uc.now = func() time.Time { return fixedNow.AddDate(0, 0, 15) }
	s, err := uc.Me(context.Background(), auth.UserContext{OrganizationID: reg.User.OrganizationID, UserID: reg.User.ID})
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionExpired, s.Subscription.Status)
	assert.Equal(t, 0, s.Subscription.DaysLeft)
	assert.Empty(t, s.Token)
}

func TestUserManagement(t *testing.T) {
	repo := newFakeRepo()
	uc, _ := newUseCase(repo)
	reg := register(t, uc)
	admin := auth.UserContext{OrganizationID: reg.User.OrganizationID, UserID: reg.User.ID}
	ctx := context.Background()

	staff, err := uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: admin.OrganizationID, Name: "Budi", Email: "budi@example.com", Password: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, staff.Role)

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: admin.OrganizationID, Name: "X", Email: "x@example.com", Password: "password1", Role: "owner",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.CreateUser(ctx, &dto.CreateUserInput{
		OrganizationID: admin.OrganizationID, Name: "X", Email: "x@example.com", Password: "short",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	manager := model.RoleManager
	got, err := uc.UpdateUser(ctx, &dto.UpdateUserInput{OrganizationID: admin.OrganizationID, ID: staff.ID, Role: &manager})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, got.Role)

	// The only admin can be neither demoted nor deleted.
	_, err = uc.UpdateUser(ctx, &dto.UpdateUserInput{OrganizationID: admin.OrganizationID, ID: reg.User.ID, Role: &manager})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	err = uc.DeleteUser(ctx, auth.UserContext{OrganizationID: admin.OrganizationID, UserID: staff.ID}, reg.User.ID)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	err = uc.DeleteUser(ctx, admin, admin.UserID)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	require.NoError(t, uc.DeleteUser(ctx, admin, staff.ID))
	assert.NotContains(t, repo.users, staff.ID)
}
