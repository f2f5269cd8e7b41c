// Package inventorytest provides an in-memory inventory.Repository for tests
// of the packages that book stock through the inventory use case.
package inventorytest

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repo struct {
	mu        sync.Mutex
	levels    map[string]model.StockLevel
	movements []model.StockMovement

	// FailApply, when set, is consulted before a movement is stored. A
	// non-nil error aborts the write.
	FailApply func(m *model.StockMovement) error
}

func NewRepo(levels ...model.StockLevel) *Repo {
	r := &Repo{levels: map[string]model.StockLevel{}}
	for _, l := range levels {
		r.levels[l.ProductID] = l
	}
	return r
}

func (r *Repo) GetLevel(_ context.Context, orgID, productID string) (*model.StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.levels[productID]
	if !ok || l.OrganizationID != orgID {
		return nil, nil
	}
	return &l, nil
}

func (r *Repo) ListLevels(context.Context, *dto.LevelFilters) ([]dto.LevelView, int, error) {
	return nil, 0, nil
}

func (r *Repo) ApplyMovement(_ context.Context, level *model.StockLevel, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailApply != nil {
		if err := r.FailApply(m); err != nil {
			return err
		}
	}
	r.levels[level.ProductID] = *level
	r.movements = append(r.movements, *m)
	return nil
}

func (r *Repo) ListMovements(context.Context, *dto.MovementFilters) ([]model.StockMovement, int, error) {
	ms := r.Movements()
	return ms, len(ms), nil
}

func (r *Repo) ListReferenceMovements(_ context.Context, orgID, productID, refType, refID string) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.OrganizationID == orgID && m.ProductID == productID &&
			m.ReferenceType != nil && *m.ReferenceType == refType &&
			m.ReferenceID != nil && *m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Repo) CreateBatch(ctx context.Context, _ *model.Batch, level *model.StockLevel, m *model.StockMovement) error {
	return r.ApplyMovement(ctx, level, m)
}

func (r *Repo) ListBatches(context.Context, string, string) ([]model.Batch, error) {
	return nil, nil
}

// Level returns the stored level of a product.
func (r *Repo) Level(productID string) model.StockLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[productID]
}

// Movements returns a copy of the ledger in booking order.
func (r *Repo) Movements() []model.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.StockMovement(nil), r.movements...)
}
