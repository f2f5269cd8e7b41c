package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const referenceType = "purchase_order"

type purchaseOrderUseCase struct {
	repo      purchaseorder.Repository
	suppliers purchaseorder.SupplierFinder
	stock     purchaseorder.StockReceiver
	locker    inventory.Locker
	now       func() time.Time
	logger    logger.ZapLogger
}

// NewPurchaseOrderUseCase builds the purchase order use case; a nil locker
// falls back to an in-process one.
func NewPurchaseOrderUseCase(repo purchaseorder.Repository, suppliers purchaseorder.SupplierFinder, stock purchaseorder.StockReceiver, locker inventory.Locker, log logger.ZapLogger) purchaseorder.UseCase {
	if locker == nil {
		locker = invUCPkg.NewLocalLocker()
	}
	return &purchaseOrderUseCase{
		repo:      repo,
		suppliers: suppliers,
		stock:     stock,
		locker:    locker,
		now:       time.Now,
		logger:    log,
	}
}

func (uc *purchaseOrderUseCase) CreatePurchaseOrder(ctx context.Context, in *dto.CreatePurchaseOrderInput) (*model.PurchaseOrder, error) {
	if in.SupplierID == "" {
		return nil, apperror.Validation("supplierId is required")
	}
	if len(in.Items) == 0 {
		return nil, apperror.Validation("a purchase order needs at least one item")
	}
	s, err := uc.suppliers.GetSupplier(ctx, in.OrganizationID, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, apperror.Validation("supplier %s is inactive", s.Name)
	}

	now := uc.now()
	po := &model.PurchaseOrder{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: in.OrganizationID,
		SupplierID:     in.SupplierID,
		PONumber:       fmt.Sprintf("PO-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:6])),
		Status:         model.PurchaseOrderDraft,
		Total:          decimal.Zero,
		ExpectedAt:     in.ExpectedAt,
		Notes:          in.Notes,
	}
	if in.Submit {
		po.Status = model.PurchaseOrderOrdered
	}
	if in.UserID != "" {
		po.CreatedBy = &in.UserID
	}

	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, apperror.Validation("productId is required")
		}
		if it.Quantity <= 0 {
			return nil, apperror.Validation("quantity must be positive")
		}
		if it.UnitCost.IsNegative() {
			return nil, apperror.Validation("unit cost cannot be negative")
		}
		po.Items = append(po.Items, model.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitCost:        it.UnitCost,
		})
		po.Total = po.Total.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if err := uc.repo.Create(ctx, po); err != nil {
		return nil, err
	}
	uc.logger.Info("purchase order created", zap.String("po_id", po.ID), zap.String("number", po.PONumber))
	return po, nil
}

func (uc *purchaseOrderUseCase) GetPurchaseOrder(ctx context.Context, orgID, id string) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperror.NotFound("purchase order not found")
	}
	return po, nil
}

func (uc *purchaseOrderUseCase) ListPurchaseOrders(ctx context.Context, filters *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *purchaseOrderUseCase) UpdateStatus(ctx context.Context, in *dto.UpdateStatusInput) (*model.PurchaseOrder, error) {
	if in.Status == model.PurchaseOrderReceived {
		return uc.Receive(ctx, in.OrganizationID, in.UserID, in.ID)
	}
	var po *model.PurchaseOrder
	err := uc.withOrderLock(ctx, in.ID, func() error {
		var err error
		po, err = uc.GetPurchaseOrder(ctx, in.OrganizationID, in.ID)
		if err != nil {
			return err
		}
		if !model.CanTransitionPurchaseOrder(po.Status, in.Status) {
			return apperror.Validation("cannot change purchase order from %s to %s", po.Status, in.Status)
		}
		previous := po.Status
		po.Status = in.Status
		po.UpdatedAt = uc.now()
		return uc.repo.UpdateStatus(ctx, po, previous)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Receive books every line into the godown while holding the order lock. A
// failing line undoes the lines already booked so the order can be received
// again.
func (uc *purchaseOrderUseCase) Receive(ctx context.Context, orgID, userID, id string) (*model.PurchaseOrder, error) {
	var (
		po     *model.PurchaseOrder
		booked []model.PurchaseOrderItem
	)
	err := uc.withOrderLock(ctx, id, func() error {
		var err error
		po, err = uc.GetPurchaseOrder(ctx, orgID, id)
		if err != nil {
			return err
		}
		if !model.CanTransitionPurchaseOrder(po.Status, model.PurchaseOrderReceived) {
			return apperror.Validation("purchase order is already %s", po.Status)
		}

		for _, it := range po.Items {
			if _, err := uc.stock.Increase(ctx, uc.stockInput(po, userID, it)); err != nil {
				uc.undo(ctx, po, userID, booked)
				return err
			}
			booked = append(booked, it)
		}

		previous := po.Status
		now := uc.now()
		po.Status = model.PurchaseOrderReceived
		po.ReceivedAt = &now
		po.UpdatedAt = now
		if err := uc.repo.UpdateStatus(ctx, po, previous); err != nil {
			uc.undo(ctx, po, userID, booked)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("purchase order received", zap.String("po_id", po.ID), zap.Int("lines", len(booked)))
	return po, nil
}

func (uc *purchaseOrderUseCase) withOrderLock(ctx context.Context, id string, fn func() error) error {
	return invUCPkg.WithLock(ctx, uc.locker, uc.logger, fmt.Sprintf("lock:purchase_order:%s", id),
		"purchase order is being updated, please try again", fn)
}

func (uc *purchaseOrderUseCase) stockInput(po *model.PurchaseOrder, userID string, it model.PurchaseOrderItem) *invdto.StockChangeInput {
	return &invdto.StockChangeInput{
		OrganizationID: po.OrganizationID,
		UserID:         userID,
		ProductID:      it.ProductID,
		Location:       model.LocationGodown,
		Quantity:       it.Quantity,
		Notes:          "Purchase order " + po.PONumber,
		ReferenceType:  referenceType,
		ReferenceID:    po.ID,
	}
}

func (uc *purchaseOrderUseCase) undo(ctx context.Context, po *model.PurchaseOrder, userID string, items []model.PurchaseOrderItem) {
	for _, it := range items {
		in := uc.stockInput(po, userID, it)
		in.Notes = "Reverted receipt of " + po.PONumber
		if _, err := uc.stock.Reduce(ctx, in); err != nil {
			uc.logger.Error("failed to revert purchase order line",
				zap.String("po_id", po.ID),
				zap.String("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}
