package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	"github.com/fekuna/omnipos-inventory-service/internal/alert/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type alertUseCase struct {
	repo     alert.Repository
	warnDays int
	now      func() time.Time
	logger   logger.ZapLogger
}

func NewAlertUseCase(repo alert.Repository, warnDays int, log logger.ZapLogger) alert.UseCase {
	return &alertUseCase{
		repo:     repo,
		warnDays: warnDays,
		now:      time.Now,
		logger:   log,
	}
}

func (uc *alertUseCase) Evaluate(ctx context.Context, orgID, productID string) error {
	subject, err := uc.repo.GetSubject(ctx, orgID, productID)
	if err != nil {
		return err
	}
	if subject == nil {
		return nil
	}
	return uc.reconcile(ctx, subject)
}

func (uc *alertUseCase) reconcile(ctx context.Context, s *dto.Subject) error {
	now := uc.now()
	open, err := uc.repo.ListOpen(ctx, s.OrganizationID, s.ProductID)
	if err != nil {
		return err
	}

	desired := Desired(s, now, uc.warnDays)
	want := make(map[string]bool, len(desired))
	for _, a := range desired {
		want[a.AlertType] = true
	}

	have := make(map[string]bool, len(open))
	var stale []string
	for _, a := range open {
		if want[a.AlertType] && !have[a.AlertType] {
			have[a.AlertType] = true
			continue
		}
		stale = append(stale, a.ID)
	}
	if len(stale) > 0 {
		if err := uc.repo.Resolve(ctx, stale, now); err != nil {
			return err
		}
	}

	for i := range desired {
		a := desired[i]
		if have[a.AlertType] {
			continue
		}
		a.ID = uuid.New().String()
		a.CreatedAt = now
		if err := uc.repo.Create(ctx, &a); err != nil {
			return err
		}
		uc.logger.Info("alert raised",
			zap.String("product_id", a.ProductID),
			zap.String("type", a.AlertType),
			zap.String("severity", a.Severity),
		)
	}
	return nil
}

func (uc *alertUseCase) Sweep(ctx context.Context) error {
	cutoff := uc.now().Add(time.Duration(uc.warnDays) * 24 * time.Hour)
	subjects, err := uc.repo.ListExpiringSubjects(ctx, cutoff)
	if err != nil {
		return err
	}
	var errs error
	for i := range subjects {
		errs = multierr.Append(errs, uc.reconcile(ctx, &subjects[i]))
	}
	return errs
}

func (uc *alertUseCase) ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.Alert, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *alertUseCase) CountUnread(ctx context.Context, orgID string) (int, error) {
	return uc.repo.CountUnread(ctx, orgID)
}

func (uc *alertUseCase) MarkRead(ctx context.Context, orgID, id string) error {
	ok, err := uc.repo.MarkRead(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("alert not found")
	}
	return nil
}

func (uc *alertUseCase) MarkAllRead(ctx context.Context, orgID string) (int64, error) {
	return uc.repo.MarkAllRead(ctx, orgID)
}

func (uc *alertUseCase) DeleteAlert(ctx context.Context, orgID, id string) error {
	ok, err := uc.repo.Delete(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("alert not found")
	}
	return nil
}
