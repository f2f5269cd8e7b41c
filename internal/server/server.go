// Package server assembles the REST API, the gRPC health endpoint and the
// background workers from the configured backing services.
package server

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/listener"
	"github.com/fekuna/omnipos-inventory-service/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/fekuna/omnipos-inventory-service/pkg/search"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	sweepInterval = time.Hour
	bodyLimit     = 12 << 20
)

// Deps are the backing services. Only DB is required; nil Redis, Events or
// Search switch the matching feature off.
type Deps struct {
	DB     *sqlx.DB
	Redis  *cache.RedisClient
	Events *broker.KafkaProducer
	Search *search.Client
}

type Server struct {
	cfg    *config.Config
	deps   Deps
	app    *fiber.App
	grpc   *grpc.Server
	health *health.Server
	svc    *services
	logger logger.ZapLogger
}

func New(cfg *config.Config, deps Deps, log logger.ZapLogger) (*Server, error) {
	svc, err := newServices(cfg, deps, log)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "omnipos-inventory",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    bodyLimit,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language, Authorization",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(log))

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		app:    app,
		health: health.NewServer(),
		svc:    svc,
		logger: log,
	}
	s.routes()

	s.grpc = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	return s, nil
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Run serves HTTP and gRPC and runs the workers until ctx is cancelled or a
// listener fails.
func (s *Server) Run(ctx context.Context, sales listener.MessageReader) error {
	lis, err := net.Listen("tcp", normalizePort(s.cfg.Server.GRPCPort))
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("Starting gRPC server", zap.String("port", s.cfg.Server.GRPCPort))
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("port", s.cfg.Server.HTTPPort))
		if err := s.app.Listen(normalizePort(s.cfg.Server.HTTPPort)); err != nil {
			errCh <- err
		}
	}()

	if sales != nil {
		go listener.NewSalesListener(sales, s.svc.inventory, s.logger).Start(ctx)
	}
	go s.sweepAlerts(ctx)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	var errs error
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	errs = multierr.Append(errs, s.app.ShutdownWithContext(ctx))
	return errs
}

// sweepAlerts re-evaluates expiry alerts; expiry moves with the clock, not with writes.
func (s *Server) sweepAlerts(ctx context.Context) {
	run := func() {
		if err := s.svc.alerts.Sweep(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("alert sweep failed", zap.Error(err))
		}
	}
	run()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
