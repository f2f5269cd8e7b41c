package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockTTL      = 5 * time.Second
	lockAttempts = 3
	lockBackoff  = 100 * time.Millisecond
)

type Option func(*inventoryUseCase)

func WithAlerts(a inventory.AlertEvaluator) Option {
	return func(uc *inventoryUseCase) { uc.alerts = a }
}

func WithEvents(p inventory.EventPublisher) Option {
	return func(uc *inventoryUseCase) { uc.events = p }
}

func WithCache(c inventory.CacheInvalidator) Option {
	return func(uc *inventoryUseCase) { uc.cache = c }
}

type inventoryUseCase struct {
	repo   inventory.Repository
	locker inventory.Locker
	alerts inventory.AlertEvaluator
	events inventory.EventPublisher
	cache  inventory.CacheInvalidator
	now    func() time.Time
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker inventory.Locker, log logger.ZapLogger, opts ...Option) inventory.UseCase {
	if locker == nil {
		locker = NewLocalLocker()
	}
	uc := &inventoryUseCase{
		repo:   repo,
		locker: locker,
		now:    time.Now,
		logger: log,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *inventoryUseCase) GetLevel(ctx context.Context, orgID, productID string) (*model.StockLevel, error) {
	level, err := uc.repo.GetLevel(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, apperror.NotFound("product not found")
	}
	return level, nil
}

func (uc *inventoryUseCase) ListLevels(ctx context.Context, filters *dto.LevelFilters) ([]dto.LevelView, int, error) {
	return uc.repo.ListLevels(ctx, filters)
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *inventoryUseCase) ReferenceMovements(ctx context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error) {
	return uc.repo.ListReferenceMovements(ctx, orgID, productID, refType, refID)
}

func (uc *inventoryUseCase) ListBatches(ctx context.Context, orgID, productID string) ([]model.Batch, error) {
	return uc.repo.ListBatches(ctx, orgID, productID)
}

// change describes one mutation of a stock level.
type change struct {
	orgID, productID, userID string
	movementType             string
	location                 string
	target                   *string
	delta                    int // signed delta recorded on the movement
	deltaFn                  func() int
	notes                    string
	refType, refID           string
	apply                    func(l *model.StockLevel) error

	// settle inspects the movements already recorded for refType/refID. A
	// returned movement means the change was applied before and is skipped.
	settle func(recorded []model.StockMovement) (*model.StockMovement, error)
}

// once treats an earlier movement of the same type for the reference as this
// change, so replays are no-ops.
func once(movementType string) func([]model.StockMovement) (*model.StockMovement, error) {
	return func(recorded []model.StockMovement) (*model.StockMovement, error) {
		for i := range recorded {
			if recorded[i].MovementType == movementType {
				return &recorded[i], nil
			}
		}
		return nil, nil
	}
}

// closeReservation settles a reservation exactly once: a replay of the same
// close is a no-op and closing it the other way is a conflict.
func closeReservation(movementType string) func([]model.StockMovement) (*model.StockMovement, error) {
	return func(recorded []model.StockMovement) (*model.StockMovement, error) {
		for i := range recorded {
			switch recorded[i].MovementType {
			case movementType:
				return &recorded[i], nil
			case model.MovementSale, model.MovementRelease:
				return nil, apperror.Conflict("reservation for %s %s was already closed by a %s movement",
					deref(recorded[i].ReferenceType), deref(recorded[i].ReferenceID), recorded[i].MovementType)
			}
		}
		return nil, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (uc *inventoryUseCase) Increase(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error) {
	if err := validateChange(in); err != nil {
		return nil, err
	}
	mt := model.MovementIn
	if in.ReferenceType == "return" {
		mt = model.MovementReturn
	}
	return uc.mutate(ctx, change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: mt, location: in.Location, delta: in.Quantity,
		notes: in.Notes, refType: in.ReferenceType, refID: in.ReferenceID,
		apply: func(l *model.StockLevel) error {
			l.Set(in.Location, l.At(in.Location)+in.Quantity)
			return nil
		},
	})
}

func (uc *inventoryUseCase) Reduce(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error) {
	if err := validateChange(in); err != nil {
		return nil, err
	}
	c := change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementOut, location: in.Location, delta: -in.Quantity,
		notes: in.Notes, refType: in.ReferenceType, refID: in.ReferenceID,
	}
	if in.ReferenceType == "sale" {
		c.movementType = model.MovementSale
		c.settle = once(model.MovementSale)
	}
	c.apply = func(l *model.StockLevel) error {
		free := l.At(in.Location)
		if in.Location == model.LocationStore {
			free = l.Available()
		}
		if free < in.Quantity {
			return apperror.InsufficientStock("only %d unreserved in %s, cannot remove %d", free, in.Location, in.Quantity)
		}
		l.Set(in.Location, l.At(in.Location)-in.Quantity)
		return nil
	}
	return uc.mutate(ctx, c)
}

func (uc *inventoryUseCase) Move(ctx context.Context, in *dto.MoveStockInput) (*model.StockMovement, error) {
	if in.ProductID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if !model.ValidLocation(in.From) || !model.ValidLocation(in.To) {
		return nil, apperror.Validation("locations must be %q or %q", model.LocationGodown, model.LocationStore)
	}
	if in.From == in.To {
		return nil, apperror.Validation("source and target location are the same")
	}
	if in.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive")
	}
	target := in.To
	return uc.mutate(ctx, change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementTransfer, location: in.From, target: &target, delta: -in.Quantity,
		notes: in.Notes,
		apply: func(l *model.StockLevel) error {
			free := l.At(in.From)
			if in.From == model.LocationStore {
				free = l.Available()
			}
			if free < in.Quantity {
				return apperror.InsufficientStock("only %d movable from %s, cannot move %d", free, in.From, in.Quantity)
			}
			l.Set(in.From, l.At(in.From)-in.Quantity)
			l.Set(in.To, l.At(in.To)+in.Quantity)
			return nil
		},
	})
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, in *dto.AdjustStockInput) (*model.StockMovement, error) {
	if in.ProductID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if !model.ValidLocation(in.Location) {
		return nil, apperror.Validation("location must be %q or %q", model.LocationGodown, model.LocationStore)
	}
	if in.NewQuantity < 0 {
		return nil, apperror.Validation("quantity cannot be negative")
	}
	c := change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementAdjust, location: in.Location,
		notes: in.Reason, refType: "manual",
	}
	var delta int
	c.apply = func(l *model.StockLevel) error {
		if in.Location == model.LocationStore && in.NewQuantity < l.Reserved {
			return apperror.InsufficientStock("%d units are reserved, store cannot be set to %d", l.Reserved, in.NewQuantity)
		}
		delta = in.NewQuantity - l.At(in.Location)
		l.Set(in.Location, in.NewQuantity)
		return nil
	}
	c.deltaFn = func() int { return delta }
	return uc.mutate(ctx, c)
}

func (uc *inventoryUseCase) Reserve(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error) {
	in.Location = model.LocationStore
	if err := validateChange(in); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementReserve, location: model.LocationStore, delta: 0,
		notes: in.Notes, refType: in.ReferenceType, refID: in.ReferenceID,
		settle: once(model.MovementReserve),
		apply: func(l *model.StockLevel) error {
			if l.Available() < in.Quantity {
				return apperror.InsufficientStock("only %d available in store, cannot reserve %d", l.Available(), in.Quantity)
			}
			l.Reserved += in.Quantity
			return nil
		},
	})
}

func (uc *inventoryUseCase) Release(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error) {
	in.Location = model.LocationStore
	if err := validateChange(in); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementRelease, location: model.LocationStore, delta: 0,
		notes: in.Notes, refType: in.ReferenceType, refID: in.ReferenceID,
		settle: closeReservation(model.MovementRelease),
		apply: func(l *model.StockLevel) error {
			if l.Reserved < in.Quantity {
				return apperror.Validation("only %d reserved, cannot release %d", l.Reserved, in.Quantity)
			}
			l.Reserved -= in.Quantity
			return nil
		},
	})
}

func (uc *inventoryUseCase) SellReserved(ctx context.Context, in *dto.StockChangeInput) (*model.StockMovement, error) {
	in.Location = model.LocationStore
	if err := validateChange(in); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, change{
		orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
		movementType: model.MovementSale, location: model.LocationStore, delta: -in.Quantity,
		notes: in.Notes, refType: in.ReferenceType, refID: in.ReferenceID,
		settle: closeReservation(model.MovementSale),
		apply: func(l *model.StockLevel) error {
			if l.Reserved < in.Quantity {
				return apperror.InsufficientStock("only %d reserved, cannot sell %d", l.Reserved, in.Quantity)
			}
			l.Reserved -= in.Quantity
			l.Store -= in.Quantity
			return nil
		},
	})
}

func (uc *inventoryUseCase) ReceiveBatch(ctx context.Context, in *dto.ReceiveBatchInput) (*model.Batch, error) {
	if in.ProductID == "" {
		return nil, apperror.Validation("productId is required")
	}
	if strings.TrimSpace(in.BatchNumber) == "" {
		return nil, apperror.Validation("batch number is required")
	}
	if in.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive")
	}

	now := uc.now()
	batch := &model.Batch{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ProductID:      in.ProductID,
		BatchNumber:    strings.TrimSpace(in.BatchNumber),
		Quantity:       in.Quantity,
		ExpirationDate: in.ExpirationDate,
		ReceivedAt:     now,
		CreatedAt:      now,
	}
	if in.ReceivedAt != nil {
		batch.ReceivedAt = *in.ReceivedAt
	}

	m, err := uc.withLock(ctx, in.OrganizationID, in.ProductID, func() (*model.StockMovement, error) {
		level, err := uc.loadLevel(ctx, in.OrganizationID, in.ProductID)
		if err != nil {
			return nil, err
		}
		before := *level
		level.Godown += in.Quantity
		level.UpdatedAt = now
		m := uc.movement(change{
			orgID: in.OrganizationID, productID: in.ProductID, userID: in.UserID,
			movementType: model.MovementIn, location: model.LocationGodown, delta: in.Quantity,
			notes: "Batch " + batch.BatchNumber, refType: "batch", refID: batch.ID,
		}, &before, level, now)
		if err := uc.repo.CreateBatch(ctx, batch, level, m); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	uc.afterChange(ctx, in.OrganizationID, in.ProductID, m)
	return batch, nil
}

// mutate runs one change under the product lock and records its movement.
// A change whose reference was already settled returns the recorded movement
// and leaves the level untouched.
func (uc *inventoryUseCase) mutate(ctx context.Context, c change) (*model.StockMovement, error) {
	replayed := false
	m, err := uc.withLock(ctx, c.orgID, c.productID, func() (*model.StockMovement, error) {
		if c.settle != nil && c.refType != "" && c.refID != "" {
			recorded, err := uc.repo.ListReferenceMovements(ctx, c.orgID, c.productID, c.refType, c.refID)
			if err != nil {
				return nil, err
			}
			prior, err := c.settle(recorded)
			if err != nil {
				return nil, err
			}
			if prior != nil {
				replayed = true
				return prior, nil
			}
		}

		level, err := uc.loadLevel(ctx, c.orgID, c.productID)
		if err != nil {
			return nil, err
		}
		before := *level
		if err := c.apply(level); err != nil {
			return nil, err
		}
		if err := checkInvariants(level); err != nil {
			return nil, err
		}
		now := uc.now()
		level.UpdatedAt = now

		m := uc.movement(c, &before, level, now)
		if err := uc.repo.ApplyMovement(ctx, level, m); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		uc.logger.Info("stock change already recorded",
			zap.String("product_id", c.productID),
			zap.String("type", c.movementType),
			zap.String("reference_type", c.refType),
			zap.String("reference_id", c.refID),
		)
		return m, nil
	}

	uc.logger.Info("stock changed",
		zap.String("product_id", c.productID),
		zap.String("type", m.MovementType),
		zap.String("location", m.Location),
		zap.Int("quantity", m.Quantity),
	)
	uc.afterChange(ctx, c.orgID, c.productID, m)
	return m, nil
}

func (uc *inventoryUseCase) withLock(ctx context.Context, orgID, productID string, fn func() (*model.StockMovement, error)) (*model.StockMovement, error) {
	var m *model.StockMovement
	err := WithLock(ctx, uc.locker, uc.logger, fmt.Sprintf("lock:inventory:%s:%s", orgID, productID),
		"stock for this product is being updated, please try again",
		func() (err error) {
			m, err = fn()
			return err
		})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (uc *inventoryUseCase) loadLevel(ctx context.Context, orgID, productID string) (*model.StockLevel, error) {
	level, err := uc.repo.GetLevel(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, apperror.NotFound("product not found")
	}
	return level, nil
}

func (uc *inventoryUseCase) movement(c change, before, after *model.StockLevel, now time.Time) *model.StockMovement {
	delta := c.delta
	if c.deltaFn != nil {
		delta = c.deltaFn()
	}
	m := &model.StockMovement{
		ID:             uuid.New().String(),
		OrganizationID: c.orgID,
		ProductID:      c.productID,
		MovementType:   c.movementType,
		Location:       c.location,
		TargetLocation: c.target,
		Quantity:       delta,
		GodownBefore:   before.Godown,
		StoreBefore:    before.Store,
		ReservedBefore: before.Reserved,
		GodownAfter:    after.Godown,
		StoreAfter:     after.Store,
		ReservedAfter:  after.Reserved,
		Notes:          c.notes,
		CreatedAt:      now,
	}
	if c.refType != "" {
		m.ReferenceType = &c.refType
	}
	if c.refID != "" {
		m.ReferenceID = &c.refID
	}
	if c.userID != "" && c.userID != "system" {
		m.CreatedBy = &c.userID
	}
	return m
}

type stockChangedEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   *model.StockMovement `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

func (uc *inventoryUseCase) afterChange(ctx context.Context, orgID, productID string, m *model.StockMovement) {
	if uc.alerts != nil {
		if err := uc.alerts.Evaluate(ctx, orgID, productID); err != nil {
			uc.logger.Warn("failed to evaluate alerts", zap.String("product_id", productID), zap.Error(err))
		}
	}
	if uc.cache != nil {
		go func() {
			if err := uc.cache.DeletePattern(context.Background(), fmt.Sprintf("products:list:%s:*", orgID)); err != nil {
				uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
			}
		}()
	}
	if uc.events != nil && m != nil {
		evt := stockChangedEvent{
			EventID:   uuid.New().String(),
			EventType: "StockChanged",
			Payload:   m,
			Timestamp: m.CreatedAt,
		}
		go func() {
			if err := uc.events.PublishJSON(context.Background(), productID, evt); err != nil {
				uc.logger.Error("failed to publish stock event", zap.Error(err))
			}
		}()
	}
}

func validateChange(in *dto.StockChangeInput) error {
	if in.ProductID == "" {
		return apperror.Validation("productId is required")
	}
	if !model.ValidLocation(in.Location) {
		return apperror.Validation("location must be %q or %q", model.LocationGodown, model.LocationStore)
	}
	if in.Quantity <= 0 {
		return apperror.Validation("quantity must be positive")
	}
	return nil
}

func checkInvariants(l *model.StockLevel) error {
	if l.Godown < 0 || l.Store < 0 {
		return apperror.InsufficientStock("stock cannot go negative")
	}
	if l.Reserved < 0 || l.Reserved > l.Store {
		return apperror.InsufficientStock("reserved stock must stay within store stock")
	}
	return nil
}
