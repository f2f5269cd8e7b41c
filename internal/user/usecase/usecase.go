package usecase

import (
	"context"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/user"
	"github.com/fekuna/omnipos-inventory-service/internal/user/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type userUseCase struct {
	repo       user.Repository
	tokens     user.TokenIssuer
	trialDays  int
	bcryptCost int
	now        func() time.Time
	logger     logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, tokens user.TokenIssuer, trialDays int, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:       repo,
		tokens:     tokens,
		trialDays:  trialDays,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     log,
	}
}

// Register creates an organization on a trial plan with its first admin.
func (uc *userUseCase) Register(ctx context.Context, in *dto.RegisterInput) (*dto.Session, error) {
	orgName := strings.TrimSpace(in.OrganizationName)
	if orgName == "" {
		return nil, apperror.Validation("organization name is required")
	}
	if err := uc.checkNewAccount(ctx, in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	trialEnds := now.AddDate(0, 0, uc.trialDays)
	org := &model.Organization{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:               orgName,
		SubscriptionStatus: model.SubscriptionTrial,
		TrialEndsAt:        &trialEnds,
	}
	admin := &model.User{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: org.ID,
		Email:          normalizeEmail(in.Email),
		Name:           strings.TrimSpace(in.Name),
		PasswordHash:   hash,
		Role:           model.RoleAdmin,
		IsActive:       true,
	}
	if err := uc.repo.CreateOrganization(ctx, org, admin); err != nil {
		return nil, err
	}

	uc.logger.Info("organization registered", zap.String("organization_id", org.ID))
	return uc.issue(admin, org)
}

func (uc *userUseCase) Login(ctx context.Context, in *dto.LoginInput) (*dto.Session, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}
	u, err := uc.repo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if !u.IsActive {
		return nil, apperror.Forbidden("this account has been deactivated")
	}

	org, err := uc.repo.GetOrganization(ctx, u.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperror.Unauthorized("organization no longer exists")
	}

	now := uc.now()
	if err := uc.repo.TouchLogin(ctx, u.ID, now); err != nil {
		uc.logger.Warn("failed to record login", zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	uc.logger.Info("user logged in", zap.String("user_id", u.ID))
	return uc.issue(u, org)
}

func (uc *userUseCase) Me(ctx context.Context, caller auth.UserContext) (*dto.Session, error) {
	u, err := uc.repo.FindByID(ctx, caller.OrganizationID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, apperror.Unauthorized("session user no longer exists")
	}
	org, err := uc.repo.GetOrganization(ctx, u.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperror.Unauthorized("organization no longer exists")
	}
	return uc.session(u, org), nil
}

func (uc *userUseCase) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *userUseCase) CreateUser(ctx context.Context, in *dto.CreateUserInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleStaff
	}
	if !model.ValidRole(role) {
		return nil, apperror.Validation("role must be admin, manager or staff")
	}
	if err := uc.checkNewAccount(ctx, in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	u := &model.User{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: in.OrganizationID,
		Email:          normalizeEmail(in.Email),
		Name:           strings.TrimSpace(in.Name),
		PasswordHash:   hash,
		Role:           role,
		IsActive:       true,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) UpdateUser(ctx context.Context, in *dto.UpdateUserInput) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, in.OrganizationID, in.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.NotFound("user not found")
	}

	demotes := (in.Role != nil && *in.Role != model.RoleAdmin) || (in.IsActive != nil && !*in.IsActive)
	if u.Role == model.RoleAdmin && u.IsActive && demotes {
		if err := uc.keepOneAdmin(ctx, in.OrganizationID); err != nil {
			return nil, err
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("name is required")
		}
		u.Name = name
	}
	if in.Role != nil {
		if !model.ValidRole(*in.Role) {
			return nil, apperror.Validation("role must be admin, manager or staff")
		}
		u.Role = *in.Role
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperror.Validation("password must be at least %d characters", minPasswordLength)
		}
		hash, err := uc.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	u.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, caller auth.UserContext, id string) error {
	if caller.UserID == id {
		return apperror.Validation("you cannot delete your own account")
	}
	u, err := uc.repo.FindByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return err
	}
	if u == nil {
		return apperror.NotFound("user not found")
	}
	if u.Role == model.RoleAdmin && u.IsActive {
		if err := uc.keepOneAdmin(ctx, caller.OrganizationID); err != nil {
			return err
		}
	}
	return uc.repo.Delete(ctx, caller.OrganizationID, id)
}

func (uc *userUseCase) keepOneAdmin(ctx context.Context, orgID string) error {
	n, err := uc.repo.CountActiveAdmins(ctx, orgID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return apperror.Conflict("an organization needs at least one active admin")
	}
	return nil
}

func (uc *userUseCase) checkNewAccount(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.Validation("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.Validation("invalid email address")
	}
	if len(password) < minPasswordLength {
		return apperror.Validation("password must be at least %d characters", minPasswordLength)
	}
	existing, err := uc.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return apperror.Conflict("email is already registered")
	}
	return nil
}

func (uc *userUseCase) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return "", &apperror.Error{Kind: apperror.KindInternal, Message: "hash password", Err: err}
	}
	return string(b), nil
}

func (uc *userUseCase) issue(u *model.User, org *model.Organization) (*dto.Session, error) {
	token, err := uc.tokens.Generate(auth.UserContext{
		OrganizationID: u.OrganizationID,
		UserID:         u.ID,
		Email:          u.Email,
		Role:           u.Role,
	})
	if err != nil {
		return nil, &apperror.Error{Kind: apperror.KindInternal, Message: "sign token", Err: err}
	}
	s := uc.session(u, org)
	exp := uc.now().Add(uc.tokens.Expiry())
	s.Token = token
	s.ExpiresAt = &exp
	return s, nil
}

func (uc *userUseCase) session(u *model.User, org *model.Organization) *dto.Session {
	now := uc.now()
	sub := dto.Subscription{
		Status:      org.EffectiveStatus(now),
		TrialEndsAt: org.TrialEndsAt,
		EndsAt:      org.SubscriptionEndsAt,
	}
	end := org.SubscriptionEndsAt
	if org.SubscriptionStatus == model.SubscriptionTrial {
		end = org.TrialEndsAt
	}
	if end != nil && end.After(now) {
		sub.DaysLeft = int(math.Ceil(end.Sub(now).Hours() / 24))
	}
	return &dto.Session{
		User:         u,
		Organization: org,
		Permissions:  model.PermissionsFor(u.Role),
		Subscription: sub,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
