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
	"github.com/fekuna/omnipos-inventory-service/internal/order"
	"github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const referenceType = "order"

type orderUseCase struct {
	repo   order.Repository
	stock  order.StockReserver
	events order.EventPublisher
	locker inventory.Locker
	now    func() time.Time
	logger logger.ZapLogger
}

// NewOrderUseCase builds the order use case; events may be nil and a nil
// locker falls back to an in-process one.
func NewOrderUseCase(repo order.Repository, stock order.StockReserver, events order.EventPublisher, locker inventory.Locker, log logger.ZapLogger) order.UseCase {
	if locker == nil {
		locker = invUCPkg.NewLocalLocker()
	}
	return &orderUseCase{
		repo:   repo,
		stock:  stock,
		events: events,
		locker: locker,
		now:    time.Now,
		logger: log,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, in *dto.CreateOrderInput) (*model.Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, apperror.Validation("customer name is required")
	}
	if len(in.Items) == 0 {
		return nil, apperror.Validation("an order needs at least one item")
	}

	// Merge duplicate lines so each product is reserved once.
	quantities := map[string]int{}
	var ids []string
	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, apperror.Validation("productId is required")
		}
		if it.Quantity <= 0 {
			return nil, apperror.Validation("quantity must be positive")
		}
		if _, ok := quantities[it.ProductID]; !ok {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}

	priced, err := uc.repo.PriceProducts(ctx, in.OrganizationID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]dto.PricedProduct, len(priced))
	for _, p := range priced {
		byID[p.ID] = p
	}

	now := uc.now()
	o := &model.Order{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrganizationID: in.OrganizationID,
		OrderNumber:    orderNumber(now),
		CustomerName:   strings.TrimSpace(in.CustomerName),
		Status:         model.OrderPending,
		Total:          decimal.Zero,
		Notes:          in.Notes,
	}
	if phone := strings.TrimSpace(in.CustomerPhone); phone != "" {
		o.CustomerPhone = &phone
	}
	if in.UserID != "" {
		o.CreatedBy = &in.UserID
	}

	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive {
			return nil, apperror.NotFound("product %s not found", id)
		}
		unit := p.UnitPrice()
		line := unit.Mul(decimal.NewFromInt(int64(quantities[id])))
		o.Items = append(o.Items, model.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ProductID:   id,
			ProductName: p.Name,
			Quantity:    quantities[id],
			UnitPrice:   unit,
			LineTotal:   line,
		})
		o.Total = o.Total.Add(line)
	}

	reserved := make([]model.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if _, err := uc.stock.Reserve(ctx, uc.stockInput(o, in.UserID, it)); err != nil {
			uc.rollbackReservations(ctx, o, in.UserID, reserved)
			return nil, err
		}
		reserved = append(reserved, it)
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		uc.rollbackReservations(ctx, o, in.UserID, reserved)
		return nil, err
	}

	uc.logger.Info("order created", zap.String("order_id", o.ID), zap.String("number", o.OrderNumber))
	uc.publish(o, "")
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orgID, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("order not found")
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

// UpdateStatus moves an order along its status machine under the order lock.
// Stock lines are settled per reference, so a fulfil or cancel that failed
// half way can be retried and only books the lines still open.
func (uc *orderUseCase) UpdateStatus(ctx context.Context, in *dto.UpdateStatusInput) (*model.Order, error) {
	var (
		o        *model.Order
		previous string
	)
	err := invUCPkg.WithLock(ctx, uc.locker, uc.logger, fmt.Sprintf("lock:order:%s", in.ID),
		"order is being updated, please try again",
		func() error {
			var err error
			o, err = uc.GetOrder(ctx, in.OrganizationID, in.ID)
			if err != nil {
				return err
			}
			if !model.CanTransition(o.Status, in.Status) {
				return apperror.Validation("cannot change order from %s to %s", o.Status, in.Status)
			}
			if err := uc.settleStock(ctx, o, in); err != nil {
				return err
			}

			previous = o.Status
			now := uc.now()
			o.Status = in.Status
			o.UpdatedAt = now
			if in.Status == model.OrderFulfilled {
				o.FulfilledAt = &now
			}
			return uc.repo.UpdateStatus(ctx, o, previous)
		})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", previous),
		zap.String("to", o.Status),
	)
	uc.publish(o, previous)
	return o, nil
}

// settleStock sells or releases the reservations of every line. All lines are
// attempted and their failures returned together.
func (uc *orderUseCase) settleStock(ctx context.Context, o *model.Order, in *dto.UpdateStatusInput) error {
	settle, opposite, partly := uc.stock.SellReserved, model.MovementRelease, "cancelled"
	switch in.Status {
	case model.OrderFulfilled:
	case model.OrderCancelled:
		settle, opposite, partly = uc.stock.Release, model.MovementSale, "fulfilled"
	default:
		return nil
	}

	// A reservation closed the other way means the order is already half way
	// through the opposite transition; only that one can be completed.
	for _, it := range o.Items {
		recorded, err := uc.stock.ReferenceMovements(ctx, o.OrganizationID, it.ProductID, referenceType, o.ID)
		if err != nil {
			return err
		}
		for _, m := range recorded {
			if m.MovementType == opposite {
				return apperror.Conflict("order %s is already partly %s", o.OrderNumber, partly)
			}
		}
	}

	var errs error
	for _, it := range o.Items {
		if _, err := settle(ctx, uc.stockInput(o, in.UserID, it)); err != nil {
			uc.logger.Error("failed to settle order line",
				zap.String("order_id", o.ID),
				zap.String("product_id", it.ProductID),
				zap.String("status", in.Status),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (uc *orderUseCase) SalesByProduct(ctx context.Context, filters *dto.SalesFilters) ([]model.SalesLine, error) {
	if !filters.To.After(filters.From) {
		return nil, apperror.Validation("report period is empty")
	}
	return uc.repo.SalesByProduct(ctx, filters)
}

func (uc *orderUseCase) stockInput(o *model.Order, userID string, it model.OrderItem) *invdto.StockChangeInput {
	return &invdto.StockChangeInput{
		OrganizationID: o.OrganizationID,
		UserID:         userID,
		ProductID:      it.ProductID,
		Location:       model.LocationStore,
		Quantity:       it.Quantity,
		Notes:          "Order " + o.OrderNumber,
		ReferenceType:  referenceType,
		ReferenceID:    o.ID,
	}
}

func (uc *orderUseCase) rollbackReservations(ctx context.Context, o *model.Order, userID string, items []model.OrderItem) {
	for _, it := range items {
		if _, err := uc.stock.Release(ctx, uc.stockInput(o, userID, it)); err != nil {
			uc.logger.Error("failed to release reservation",
				zap.String("order_id", o.ID),
				zap.String("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}

type orderEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   orderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type orderPayload struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	OrderNumber    string          `json:"order_number"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
}

func (uc *orderUseCase) publish(o *model.Order, previous string) {
	if uc.events == nil {
		return
	}
	eventType := "OrderStatusChanged"
	if previous == "" {
		eventType = "OrderCreated"
	}
	evt := orderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload: orderPayload{
			ID:             o.ID,
			OrganizationID: o.OrganizationID,
			OrderNumber:    o.OrderNumber,
			Status:         o.Status,
			PreviousStatus: previous,
			Total:          o.Total,
		},
		Timestamp: o.UpdatedAt,
	}
	go func() {
		if err := uc.events.PublishJSON(context.Background(), o.ID, evt); err != nil {
			uc.logger.Error("failed to publish order event", zap.Error(err))
		}
	}()
}

func orderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), strings.ToUpper(uuid.New().String()[:6]))
}
