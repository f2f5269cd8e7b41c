package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	indexName = "products"
	listTTL   = 5 * time.Minute
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"organizationId": { "type": "keyword" },
			"categoryId": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"sku": { "type": "keyword" },
			"qrCode": { "type": "keyword" },
			"price": { "type": "double" },
			"isActive": { "type": "boolean" },
			"createdAt": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo             product.Repository
	cache            product.Cache
	es               product.SearchIndex
	alerts           product.AlertEvaluator
	defaultThreshold int
	logger           logger.ZapLogger
}

// NewProductUseCase accepts nil cache, search index and alert evaluator.
func NewProductUseCase(repo product.Repository, cache product.Cache, es product.SearchIndex, alerts product.AlertEvaluator, defaultThreshold int, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:             repo,
		cache:            cache,
		es:               es,
		alerts:           alerts,
		defaultThreshold: defaultThreshold,
		logger:           log,
	}
}

// EnsureIndex creates the search index if it is missing.
func EnsureIndex(ctx context.Context, es product.SearchIndex) error {
	return es.CreateIndex(ctx, indexName, indexMapping)
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if err := validate(input.Name, input.SKU, input.Price.IsNegative()); err != nil {
		return nil, err
	}
	if input.InitialGodown < 0 || input.InitialStore < 0 {
		return nil, apperror.Validation("initial stock cannot be negative")
	}
	sku := strings.TrimSpace(input.SKU)
	qr := strings.TrimSpace(input.QRCode)
	if err := uc.checkUnique(ctx, input.OrganizationID, sku, qr, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	threshold := uc.defaultThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}
	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}

	p := &model.Product{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID:    input.OrganizationID,
		CategoryID:        optional(input.CategoryID),
		SKU:               sku,
		QRCode:            optional(qr),
		Name:              strings.TrimSpace(input.Name),
		Description:       optional(input.Description),
		Price:             input.Price,
		CostPrice:         input.CostPrice,
		Unit:              unit,
		LowStockThreshold: threshold,
		ReorderQuantity:   input.ReorderQuantity,
		ExpirationDate:    input.ExpirationDate,
		ImageURL:          optional(input.ImageURL),
		IsActive:          true,
	}
	level := &model.StockLevel{
		ProductID:      p.ID,
		OrganizationID: p.OrganizationID,
		Godown:         input.InitialGodown,
		Store:          input.InitialStore,
		UpdatedAt:      now,
	}
	summary := level.Summary()
	p.Stock = &summary

	if err := uc.repo.Create(ctx, p, level); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), p.OrganizationID)
	go uc.syncToElastic(context.Background(), p)
	uc.evaluateAlerts(ctx, p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, orgID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product not found")
	}
	return p, nil
}

func (uc *productUseCase) LookupByCode(ctx context.Context, orgID, code string) (*model.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("code is required")
	}
	p, err := uc.repo.FindByCode(ctx, orgID, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("no product matches code %q", code)
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey := ""
	if uc.cache != nil {
		if key, err := generateCacheKey(filters); err == nil {
			cacheKey = key
			if val, ok, err := uc.cache.Get(ctx, cacheKey); err == nil && ok {
				var result cachedList
				if err := json.Unmarshal([]byte(val), &result); err == nil {
					return result.Products, result.Count, nil
				}
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil && !filters.LowStock {
		products, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			if err := uc.cache.Set(ctx, cacheKey, data, listTTL); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}
	return products, count, nil
}

// searchElastic resolves ids from the index and hydrates them from the database so stock is current.
func (uc *productUseCase) searchElastic(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", escapeQueryString(filters.SearchQuery)),
				"fields": []string{"name^3", "sku", "qrCode", "description"},
			},
		},
		{"term": map[string]interface{}{"organizationId": filters.OrganizationID}},
	}
	if filters.CategoryID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"categoryId": filters.CategoryID}})
	}
	q := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"_source": false,
	}
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	products, err := uc.repo.FindByIDs(ctx, filters.OrganizationID, ids)
	if err != nil {
		return nil, 0, err
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product not found")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = p.Name
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		sku = p.SKU
	}
	if err := validate(name, sku, input.Price.IsNegative()); err != nil {
		return nil, err
	}
	qr := strings.TrimSpace(input.QRCode)

	checkSKU := ""
	if !strings.EqualFold(sku, p.SKU) {
		checkSKU = sku
	}
	checkQR := ""
	if p.QRCode == nil || !strings.EqualFold(qr, *p.QRCode) {
		checkQR = qr
	}
	if err := uc.checkUnique(ctx, input.OrganizationID, checkSKU, checkQR, p.ID); err != nil {
		return nil, err
	}

	p.SKU = sku
	p.Name = name
	p.QRCode = optional(qr)
	p.CategoryID = optional(input.CategoryID)
	p.Description = optional(input.Description)
	p.Price = input.Price
	p.CostPrice = input.CostPrice
	if input.Unit != "" {
		p.Unit = input.Unit
	}
	if input.LowStockThreshold != nil {
		p.LowStockThreshold = *input.LowStockThreshold
	}
	p.ReorderQuantity = input.ReorderQuantity
	p.ExpirationDate = input.ExpirationDate
	if input.ImageURL != "" {
		p.ImageURL = &input.ImageURL
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), p.OrganizationID)
	go uc.syncToElastic(context.Background(), p)
	uc.evaluateAlerts(ctx, p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, orgID, id string) error {
	p, err := uc.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NotFound("product not found")
	}

	if err := uc.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), orgID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) checkUnique(ctx context.Context, orgID, sku, qr, excludeID string) error {
	if sku != "" {
		unique, err := uc.repo.IsSKUUnique(ctx, orgID, sku, excludeID)
		if err != nil {
			return err
		}
		if !unique {
			return apperror.Conflict("SKU %q already exists", sku)
		}
	}
	if qr != "" {
		unique, err := uc.repo.IsQRCodeUnique(ctx, orgID, qr, excludeID)
		if err != nil {
			return err
		}
		if !unique {
			return apperror.Conflict("QR code %q already exists", qr)
		}
	}
	return nil
}

func (uc *productUseCase) evaluateAlerts(ctx context.Context, p *model.Product) {
	if uc.alerts == nil {
		return
	}
	if err := uc.alerts.Evaluate(ctx, p.OrganizationID, p.ID); err != nil {
		uc.logger.Warn("failed to evaluate alerts", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, orgID string) {
	if err := InvalidateCache(ctx, uc.cache, orgID); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.Error(err))
	}
}

// InvalidateCache drops cached product lists after stock changes elsewhere.
func InvalidateCache(ctx context.Context, cache product.Cache, orgID string) error {
	if cache == nil {
		return nil
	}
	return cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", orgID))
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.OrganizationID, md5.Sum(data)), nil
}

func validate(name, sku string, negativePrice bool) error {
	if strings.TrimSpace(name) == "" {
		return apperror.Validation("product name is required")
	}
	if strings.TrimSpace(sku) == "" {
		return apperror.Validation("SKU is required")
	}
	if negativePrice {
		return apperror.Validation("price cannot be negative")
	}
	return nil
}

var queryStringEscaper = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `>`, `\>`, `<`, `\<`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

func escapeQueryString(s string) string {
	return queryStringEscaper.Replace(s)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
