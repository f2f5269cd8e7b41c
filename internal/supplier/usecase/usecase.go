package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type supplierUseCase struct {
	repo   supplier.Repository
	logger logger.ZapLogger
}

func NewSupplierUseCase(repo supplier.Repository, log logger.ZapLogger) supplier.UseCase {
	return &supplierUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *supplierUseCase) CreateSupplier(ctx context.Context, in *dto.CreateSupplierInput) (*model.Supplier, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("supplier name is required")
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &model.Supplier{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: in.OrganizationID,
		Name:           name,
		ContactName:    optional(in.ContactName),
		Email:          optional(in.Email),
		Phone:          optional(in.Phone),
		Address:        optional(in.Address),
		IsActive:       true,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.logger.Info("supplier created", zap.String("supplier_id", s.ID))
	return s, nil
}

func (uc *supplierUseCase) GetSupplier(ctx context.Context, orgID, id string) (*model.Supplier, error) {
	s, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apperror.NotFound("supplier not found")
	}
	return s, nil
}

func (uc *supplierUseCase) ListSuppliers(ctx context.Context, filters *dto.SupplierFilters) ([]model.Supplier, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *supplierUseCase) UpdateSupplier(ctx context.Context, in *dto.UpdateSupplierInput) (*model.Supplier, error) {
	s, err := uc.GetSupplier(ctx, in.OrganizationID, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("supplier name is required")
		}
		s.Name = name
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return nil, err
		}
		s.Email = optional(*in.Email)
	}
	if in.ContactName != nil {
		s.ContactName = optional(*in.ContactName)
	}
	if in.Phone != nil {
		s.Phone = optional(*in.Phone)
	}
	if in.Address != nil {
		s.Address = optional(*in.Address)
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	s.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSupplier refuses suppliers with purchase history; deactivate those instead.
func (uc *supplierUseCase) DeleteSupplier(ctx context.Context, orgID, id string) error {
	if _, err := uc.GetSupplier(ctx, orgID, id); err != nil {
		return err
	}
	used, err := uc.repo.HasPurchaseOrders(ctx, orgID, id)
	if err != nil {
		return err
	}
	if used {
		return apperror.Conflict("supplier has purchase orders, deactivate it instead")
	}
	return uc.repo.Delete(ctx, orgID, id)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.Validation("invalid email address")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
