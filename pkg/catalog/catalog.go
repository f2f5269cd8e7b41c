// Package catalog keeps a page of products in memory for list screens and
// the scanner, backed by the products API.
package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/scanner"
	"go.uber.org/zap"
)

const (
	DefaultMinInterval = 30 * time.Second
	DefaultPageSize    = 20
)

type API interface {
	ListProducts(ctx context.Context, q apiclient.Query) (*apiclient.Page[model.Product], error)
	CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, input *productdto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, input *invdto.AdjustStockInput) (*apiclient.StockResult, error)
}

type Filters struct {
	CategoryID string
	Search     string
	LowStock   bool
	SortBy     string
	SortOrder  string
}

type Snapshot struct {
	Products      []model.Product
	CurrentPage   int
	TotalPages    int
	TotalProducts int
	FetchedAt     time.Time
}

type Store struct {
	api         API
	MinInterval time.Duration
	PageSize    int
	now         func() time.Time
	logger      logger.ZapLogger

	mu            sync.RWMutex
	filters       Filters
	products      []model.Product
	currentPage   int
	totalPages    int
	totalProducts int
	lastKey       string
	lastFetch     time.Time
}

func NewStore(api API, log logger.ZapLogger) *Store {
	return &Store{
		api:         api,
		MinInterval: DefaultMinInterval,
		PageSize:    DefaultPageSize,
		now:         time.Now,
		logger:      log,
		filters:     Filters{SortBy: "createdAt", SortOrder: "desc"},
		currentPage: 1,
	}
}

// SetFilters replaces the filters; the next fetch always goes to the server.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	s.filters = f
	s.lastKey = ""
}

// FetchProducts loads a page. A repeat of the last fetch within MinInterval
// is skipped unless force is set; it reports whether the server was called.
func (s *Store) FetchProducts(ctx context.Context, page int, force bool) (bool, error) {
	if page < 1 {
		page = 1
	}
	s.mu.RLock()
	q := s.query(page)
	key := q.Values().Encode()
	fresh := key == s.lastKey && s.now().Sub(s.lastFetch) < s.MinInterval
	s.mu.RUnlock()

	if fresh && !force {
		s.logger.Debug("product fetch throttled", zap.Int("page", page))
		return false, nil
	}

	res, err := s.api.ListProducts(ctx, q)
	if err != nil {
		return true, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = res.Items
	s.currentPage = page
	s.totalPages = res.Pagination.TotalPages
	s.totalProducts = res.Pagination.Total
	s.lastKey = key
	s.lastFetch = s.now()
	return true, nil
}

func (s *Store) query(page int) apiclient.Query {
	f := s.filters
	q := apiclient.Query{
		Page:      page,
		Limit:     s.PageSize,
		Search:    f.Search,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
		Filters:   map[string]string{"categoryId": f.CategoryID},
	}
	if f.LowStock {
		q.Filters["lowStock"] = strconv.FormatBool(true)
	}
	return q
}

// CreateProduct prepends the new product to the loaded page.
func (s *Store) CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error) {
	p, err := s.api.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]model.Product{*p}, s.products...)
	s.totalProducts++
	return p, nil
}

// UpdateProduct replaces the product in place.
func (s *Store) UpdateProduct(ctx context.Context, id string, input *productdto.UpdateProductInput) (*model.Product, error) {
	p, err := s.api.UpdateProduct(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = *p
			break
		}
	}
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i:i], s.products[i+1:]...)
			s.totalProducts--
			break
		}
	}
	return nil
}

// FindByCode matches a scanned or typed code against the loaded products.
func (s *Store) FindByCode(code string) *model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := scanner.MatchProduct(s.products, code); p != nil {
		cp := *p
		return &cp
	}
	return nil
}

func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Products:      append([]model.Product(nil), s.products...),
		CurrentPage:   s.currentPage,
		TotalPages:    s.totalPages,
		TotalProducts: s.totalProducts,
		FetchedAt:     s.lastFetch,
	}
}

// AdjustQuantity sets a location to current+delta, clamped at zero, and
// refreshes the loaded product's stock from the response.
func (s *Store) AdjustQuantity(ctx context.Context, id, location string, current, delta int, reason string) (*apiclient.StockResult, error) {
	res, err := s.api.AdjustStock(ctx, &invdto.AdjustStockInput{
		ProductID:   id,
		Location:    location,
		NewQuantity: ClampQuantity(current, delta),
		Reason:      reason,
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			stock := res.Stock
			s.products[i].Stock = &stock
			break
		}
	}
	return res, nil
}

// ClampQuantity applies a delta without going below zero.
func ClampQuantity(current, delta int) int {
	if n := current + delta; n > 0 {
		return n
	}
	return 0
}
