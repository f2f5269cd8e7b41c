package server

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/alert"
	alertRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/alert/repository"
	alertUCPkg "github.com/fekuna/omnipos-inventory-service/internal/alert/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/analytics"
	analyticsRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/analytics/repository"
	analyticsUCPkg "github.com/fekuna/omnipos-inventory-service/internal/analytics/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/category"
	catRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-inventory-service/internal/category/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	invRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/order"
	orderRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-inventory-service/internal/order/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/promotion"
	promoRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/promotion/repository"
	promoUCPkg "github.com/fekuna/omnipos-inventory-service/internal/promotion/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/purchaseorder"
	poRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/repository"
	poUCPkg "github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	reportUCPkg "github.com/fekuna/omnipos-inventory-service/internal/report/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/supplier"
	supplierRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/supplier/repository"
	supplierUCPkg "github.com/fekuna/omnipos-inventory-service/internal/supplier/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/upload"
	"github.com/fekuna/omnipos-inventory-service/internal/user"
	userRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-inventory-service/internal/user/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/scanner"
)

const uploadURLPrefix = "/static/uploads"

type services struct {
	tokens    *auth.TokenManager
	images    *upload.ImageStore
	decoder   *scanner.Chain
	users     user.UseCase
	category  category.UseCase
	products  product.UseCase
	inventory inventory.UseCase
	alerts    alert.UseCase
	orders    order.UseCase
	suppliers supplier.UseCase
	purchases purchaseorder.UseCase
	promos    promotion.UseCase
	analytics analytics.UseCase
	reports   report.UseCase
}

// newServices wires repositories into use cases. Optional backends are only
// handed over when present so no use case sees a typed nil.
func newServices(cfg *config.Config, deps Deps, log logger.ZapLogger) (*services, error) {
	images, err := upload.NewImageStore(cfg.Server.UploadDir, uploadURLPrefix)
	if err != nil {
		return nil, err
	}

	var (
		productCache   product.Cache
		analyticsCache analytics.Cache
		locker         inventory.Locker
		searchIndex    product.SearchIndex
	)
	invOpts := []invUCPkg.Option{}
	if deps.Redis != nil {
		productCache = deps.Redis
		analyticsCache = deps.Redis
		locker = deps.Redis
		invOpts = append(invOpts, invUCPkg.WithCache(deps.Redis))
	}
	if deps.Search != nil {
		searchIndex = deps.Search
	}
	if locker == nil {
		locker = invUCPkg.NewLocalLocker()
	}

	var events order.EventPublisher
	if deps.Events != nil {
		events = deps.Events
		invOpts = append(invOpts, invUCPkg.WithEvents(deps.Events))
	}

	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Expiry)
	alertUC := alertUCPkg.NewAlertUseCase(alertRepoPkg.NewPGRepository(deps.DB), cfg.Inventory.ExpiryWarningDays, log)
	invOpts = append(invOpts, invUCPkg.WithAlerts(alertUC))
	invUC := invUCPkg.NewInventoryUseCase(invRepoPkg.NewPGRepository(deps.DB), locker, log, invOpts...)
	prodUC := prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(deps.DB), productCache, searchIndex, alertUC,
		cfg.Inventory.DefaultLowStockThreshold, log)
	supplierUC := supplierUCPkg.NewSupplierUseCase(supplierRepoPkg.NewPGRepository(deps.DB), log)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepoPkg.NewPGRepository(deps.DB), invUC, events, locker, log)

	return &services{
		tokens:    tokens,
		images:    images,
		decoder:   scanner.NewChain(nil),
		users:     userUCPkg.NewUserUseCase(userRepoPkg.NewPGRepository(deps.DB), tokens, cfg.Inventory.TrialDays, log),
		category:  catUCPkg.NewCategoryUseCase(catRepoPkg.NewPGRepository(deps.DB), log),
		products:  prodUC,
		inventory: invUC,
		alerts:    alertUC,
		orders:    orderUC,
		suppliers: supplierUC,
		purchases: poUCPkg.NewPurchaseOrderUseCase(poRepoPkg.NewPGRepository(deps.DB), supplierUC, invUC, locker, log),
		promos:    promoUCPkg.NewPromotionUseCase(promoRepoPkg.NewPGRepository(deps.DB), log),
		analytics: analyticsUCPkg.NewAnalyticsUseCase(analyticsRepoPkg.NewPGRepository(deps.DB), analyticsCache, log),
		reports:   reportUCPkg.NewReportUseCase(prodUC, orderUC, log),
	}, nil
}

// EnsureSearchIndex creates the product index when search is enabled.
func (s *Server) EnsureSearchIndex(ctx context.Context) error {
	if s.deps.Search == nil {
		return nil
	}
	return prodUCPkg.EnsureIndex(ctx, s.deps.Search)
}
