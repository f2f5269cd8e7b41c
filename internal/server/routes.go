package server

import (
	"context"
	"time"

	alertH "github.com/fekuna/omnipos-inventory-service/internal/alert/handler"
	analyticsH "github.com/fekuna/omnipos-inventory-service/internal/analytics/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	catH "github.com/fekuna/omnipos-inventory-service/internal/category/handler"
	invH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	orderH "github.com/fekuna/omnipos-inventory-service/internal/order/handler"
	prodH "github.com/fekuna/omnipos-inventory-service/internal/product/handler"
	promoH "github.com/fekuna/omnipos-inventory-service/internal/promotion/handler"
	poH "github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/handler"
	reportH "github.com/fekuna/omnipos-inventory-service/internal/report/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/scan"
	supplierH "github.com/fekuna/omnipos-inventory-service/internal/supplier/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/upload"
	userH "github.com/fekuna/omnipos-inventory-service/internal/user/handler"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (s *Server) routes() {
	log := s.logger
	svc := s.svc

	s.app.Get("/health", s.healthCheck)
	s.app.Static(uploadURLPrefix, s.cfg.Server.UploadDir)

	api := s.app.Group("/api")

	// Public routes must be mounted before the auth middleware.
	users := userH.NewUserHandler(svc.users, s.cfg.JWT.Expiry, s.cfg.Server.CookieSecure, log)
	users.RegisterPublic(api.Group("/users"))

	secured := api.Group("", auth.Middleware(svc.tokens))
	users.Register(secured.Group("/users"))

	stock := invH.NewInventoryHandler(svc.inventory, log)
	stock.RegisterStock(secured.Group("/stock"))
	stock.RegisterBatches(secured.Group("/batches"))

	catH.NewCategoryHandler(svc.category, log).Register(secured.Group("/categories"))
	prodH.NewProductHandler(svc.products, svc.images, log).Register(secured.Group("/products"))
	alertH.NewAlertHandler(svc.alerts, log).Register(secured.Group("/alerts"))
	orderH.NewOrderHandler(svc.orders, log).Register(secured.Group("/orders"))
	supplierH.NewSupplierHandler(svc.suppliers, log).Register(secured.Group("/suppliers"))
	poH.NewPurchaseOrderHandler(svc.purchases, log).Register(secured.Group("/purchase-orders"))
	promoH.NewPromotionHandler(svc.promos, log).Register(secured.Group("/promotions"))
	analyticsH.NewAnalyticsHandler(svc.analytics, log).Register(secured.Group("/analytics"))
	reportH.NewReportHandler(svc.reports, log).Register(secured.Group("/reports"))
	upload.NewHandler(svc.images, log).Register(secured.Group("/uploads"))
	scan.NewHandler(svc.decoder, svc.products, log).Register(secured.Group("/scan"))
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	checks := fiber.Map{}
	healthy := true

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if s.deps.DB != nil {
		checks["postgres"] = "ok"
		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", "postgres"), zap.Error(err))
			checks["postgres"] = "down"
			healthy = false
		}
	}
	if s.deps.Redis != nil {
		checks["redis"] = "ok"
		if err := s.deps.Redis.Client.Ping(ctx).Err(); err != nil {
			checks["redis"] = "degraded"
		}
	}

	status := fiber.StatusOK
	state := "ok"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		state = "down"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "checks": checks})
}
