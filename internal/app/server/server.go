// Package server runs the HTTP and gRPC front of the order book together with
// its background workers.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Satyam-Vyas/order-book/internal/bootstrap"
	"github.com/Satyam-Vyas/order-book/internal/rest"
	"github.com/Satyam-Vyas/order-book/internal/ws"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/grpclib/health"
	"github.com/Satyam-Vyas/order-book/pkg/httplib/healthcheck"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
)

// Server is the HTTP and gRPC server.
type Server struct {
	app        *fiber.App
	grpcServer *grpc.Server
	health     *health.Server
	checks     *healthcheck.HealthCheck

	b      *bootstrap.Bootstrap
	logger logger.Interface

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewServer creates a new Server over a wired bootstrap.
func NewServer(b *bootstrap.Bootstrap) *Server {
	s := &Server{
		grpcServer: grpc.NewServer(),
		health:     health.NewServer(),
		checks:     healthcheck.New(2 * time.Second),
		b:          b,
		logger:     b.Logger,
	}

	s.checks.Register("ledger", b.Ledger.Ping)
	if b.Infrastructure.Redis != nil {
		s.checks.Register("redis", b.Infrastructure.Redis.Ping)
	}

	s.health.Register(s.grpcServer)
	s.app = s.newApp()
	return s
}

// App exposes the fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               s.b.Config.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(rest.RequestContext())
	app.Use(rest.Metrics(s.b.Metrics))

	app.Get("/health", s.checks.Handler)
	app.Get("/metrics", adaptor.HTTPHandler(s.b.Metrics.Handler()))

	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", websocket.New(s.b.Hub.Handler))

	rest.RegisterRoutes(app, s.b.REST.Handlers)
	return app
}

// errorHandler renders errors no handler turned into a response, such as
// unknown routes and recovered panics.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	if fe, ok := err.(*fiber.Error); ok {
		code, message = fe.Code, fe.Message
	} else {
		s.logger.ErrorContext(c.UserContext(), err,
			logger.NewField("action", "http_request"),
			logger.NewField("path", c.Path()),
		)
	}

	return c.Status(code).JSON(rest.ErrorResponse{
		Error: message,
		Code:  string(errors.GeneralInternalServerError),
	})
}

// Start serves HTTP and gRPC and runs the workers until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.b.Config.App

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)

	s.group.Go(func() error {
		return s.app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort))
	})
	s.group.Go(func() error {
		return s.grpcServer.Serve(lis)
	})

	if c := s.b.Worker.OrderConsumer; c != nil {
		s.group.Go(func() error { return c.Start(ctx) })
	}
	if br := s.b.Worker.Broadcaster; br != nil {
		if err := br.Start(ctx); err != nil {
			return err
		}
	}

	s.group.Go(func() error {
		s.health.Watch(ctx, cfg.HealthInterval, func(ctx context.Context) bool {
			_, healthy := s.checks.Report(ctx)
			return healthy
		})
		return nil
	})
	s.logger.Info("server started",
		logger.NewField("http_port", cfg.HTTPPort),
		logger.NewField("grpc_port", cfg.GRPCPort),
		logger.NewField("storage", s.b.Config.Storage.Driver),
	)
	return nil
}

// Wait blocks until a server goroutine fails or Shutdown completes.
func (s *Server) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Shutdown stops accepting work, drains the workers and closes the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		s.logger.Error(err, logger.NewField("action", "shutdown_http"))
	}
	s.grpcServer.GracefulStop()

	if s.cancel != nil {
		s.cancel()
	}
	if br := s.b.Worker.Broadcaster; br != nil {
		if err := br.Stop(ctx); err != nil {
			s.logger.Error(err, logger.NewField("action", "shutdown_broadcaster"))
		}
	}

	return s.b.Close(ctx)
}
