package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]*model.PurchaseOrder
}

func (r *fakeRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, orgID, id string) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.orders[id]
	if !ok || po.OrganizationID != orgID {
		return nil, nil
	}
	cp := *po
	return &cp, nil
}

func (r *fakeRepo) FindAll(context.Context, *dto.PurchaseOrderFilters) ([]model.PurchaseOrder, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, po *model.PurchaseOrder, previous string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.orders[po.ID].Status != previous {
		return apperror.Conflict("purchase order is no longer %s", previous)
	}
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

type fakeSuppliers map[string]model.Supplier

func (f fakeSuppliers) GetSupplier(_ context.Context, _, id string) (*model.Supplier, error) {
	s, ok := f[id]
	if !ok {
		return nil, apperror.NotFound("supplier not found")
	}
	return &s, nil
}

type fakeStock struct {
	mu      sync.Mutex
	godown  map[string]int
	inputs  []invdto.StockChangeInput
	failFor string
}

func (s *fakeStock) Increase(_ context.Context, in *invdto.StockChangeInput) (*model.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.ProductID == s.failFor {
		return nil, apperror.NotFound("product not found")
	}
	s.inputs = append(s.inputs, *in)
	s.godown[in.ProductID] += in.Quantity
	return &model.StockMovement{MovementType: model.MovementIn}, nil
}

func (s *fakeStock) Reduce(_ context.Context, in *invdto.StockChangeInput) (*model.StockMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.godown[in.ProductID] -= in.Quantity
	return &model.StockMovement{MovementType: model.MovementOut}, nil
}

func setup() (*purchaseOrderUseCase, *fakeRepo, *fakeStock) {
	repo := &fakeRepo{orders: map[string]*model.PurchaseOrder{}}
	stock := &fakeStock{godown: map[string]int{}}
	suppliers := fakeSuppliers{
		"s1": {BaseModel: model.BaseModel{ID: "s1"}, Name: "Grosir", IsActive: true},
		"s2": {BaseModel: model.BaseModel{ID: "s2"}, Name: "Closed", IsActive: false},
	}
	uc := NewPurchaseOrderUseCase(repo, suppliers, stock, nil, logger.NewNop()).(*purchaseOrderUseCase)
	uc.now = func() time.Time { return time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC) }
	return uc, repo, stock
}

func createInput(supplier string) *dto.CreatePurchaseOrderInput {
	return &dto.CreatePurchaseOrderInput{
		OrganizationID: "org-1",
		UserID:         "u-1",
		SupplierID:     supplier,
		Items: []dto.PurchaseOrderItemInput{
			{ProductID: "p1", Quantity: 10, UnitCost: decimal.RequireFromString("2.50")},
			{ProductID: "p2", Quantity: 4, UnitCost: decimal.RequireFromString("7")},
		},
	}
}

func TestCreatePurchaseOrder(t *testing.T) {
	uc, _, _ := setup()

	po, err := uc.CreatePurchaseOrder(context.Background(), createInput("s1"))
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderDraft, po.Status)
	assert.Regexp(t, `^PO-20260402-`, po.PONumber)
	assert.True(t, po.Total.Equal(decimal.NewFromInt(53)), po.Total.String())

	_, err = uc.CreatePurchaseOrder(context.Background(), createInput("s2"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = uc.CreatePurchaseOrder(context.Background(), createInput("missing"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	in := createInput("s1")
	in.Items[0].Quantity = 0
	_, err = uc.CreatePurchaseOrder(context.Background(), in)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestReceiveBooksGodownStock(t *testing.T) {
	uc, repo, stock := setup()
	in := createInput("s1")
	in.Submit = true
	po, err := uc.CreatePurchaseOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderOrdered, po.Status)

	got, err := uc.Receive(context.Background(), "org-1", "u-1", po.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)
	assert.Equal(t, model.PurchaseOrderReceived, repo.orders[po.ID].Status)

	assert.Equal(t, 10, stock.godown["p1"])
	assert.Equal(t, 4, stock.godown["p2"])
	for _, ch := range stock.inputs {
		assert.Equal(t, model.LocationGodown, ch.Location)
		assert.Equal(t, "purchase_order", ch.ReferenceType)
		assert.Equal(t, po.ID, ch.ReferenceID)
	}

	_, err = uc.Receive(context.Background(), "org-1", "u-1", po.ID)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestReceiveUndoesBookedLinesOnFailure(t *testing.T) {
	uc, repo, stock := setup()
	po, err := uc.CreatePurchaseOrder(context.Background(), createInput("s1"))
	require.NoError(t, err)
	stock.failFor = "p2"

	_, err = uc.Receive(context.Background(), "org-1", "u-1", po.ID)
	require.Error(t, err)
	assert.Equal(t, 0, stock.godown["p1"])
	assert.Equal(t, model.PurchaseOrderDraft, repo.orders[po.ID].Status)
}

func TestUpdateStatus(t *testing.T) {
	uc, _, stock := setup()
	po, err := uc.CreatePurchaseOrder(context.Background(), createInput("s1"))
	require.NoError(t, err)

	got, err := uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{OrganizationID: "org-1", ID: po.ID, Status: model.PurchaseOrderCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseOrderCancelled, got.Status)

	_, err = uc.UpdateStatus(context.Background(), &dto.UpdateStatusInput{OrganizationID: "org-1", ID: po.ID, Status: model.PurchaseOrderReceived})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, stock.inputs)
}

func TestConcurrentReceiveBooksStockOnce(t *testing.T) {
	uc, repo, stock := setup()
	in := createInput("s1")
	in.Submit = true
	po, err := uc.CreatePurchaseOrder(context.Background(), in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Receive(context.Background(), "org-1", "u-1", po.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 10, stock.godown["p1"])
	assert.Equal(t, 4, stock.godown["p2"])
	assert.Len(t, stock.inputs, 2)
	assert.Equal(t, model.PurchaseOrderReceived, repo.orders[po.ID].Status)
}
