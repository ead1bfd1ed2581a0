package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reisekosten/reisekosten/internal/async"
	"github.com/reisekosten/reisekosten/internal/common"
	"github.com/reisekosten/reisekosten/internal/export"
	"github.com/reisekosten/reisekosten/internal/metrics"
	"github.com/reisekosten/reisekosten/internal/repository"
)

// Enqueuer is satisfied by the parsing queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

// Server wires the HTTP API: auth, travel and receipt management, exports.
type Server struct {
	app      *fiber.App
	cfg      *common.Config
	pool     *pgxpool.Pool
	users    repository.UserRepository
	travels  repository.TravelRepository
	receipts repository.ReceiptRepository
	queue    Enqueuer
	export   *export.Service
	logger   *slog.Logger
}

func New(
	cfg *common.Config,
	pool *pgxpool.Pool,
	users repository.UserRepository,
	travels repository.TravelRepository,
	receipts repository.ReceiptRepository,
	queue Enqueuer,
	exportSvc *export.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    int(cfg.Uploads.MaxBytes) + 1<<20,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		pool:     pool,
		users:    users,
		travels:  travels,
		receipts: receipts,
		queue:    queue,
		export:   exportSvc,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	s.app.Use(s.countRequests)

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	api.Post("/auth/login", s.handleLogin)

	protected := api.Use(s.authMiddleware())

	protected.Get("/auth/me", s.handleMe)

	protected.Post("/travels", s.handleCreateTravel)
	protected.Get("/travels", s.handleListTravels)
	protected.Get("/travels/:id", s.handleGetTravel)
	protected.Put("/travels/:id", s.handleUpdateTravel)
	protected.Delete("/travels/:id", s.handleDeleteTravel)
	protected.Post("/travels/:id/submit", s.handleSubmitTravel)
	protected.Post("/travels/:id/approve", s.handleApproveTravel)
	protected.Post("/travels/:id/reject", s.handleRejectTravel)
	protected.Get("/travels/:id/export", s.handleExportTravel)

	protected.Post("/travels/:id/receipts", s.handleUploadReceipt)
	protected.Get("/travels/:id/receipts", s.handleListReceipts)
	protected.Get("/receipts/:id", s.handleGetReceipt)
	protected.Put("/receipts/:id", s.handleUpdateReceipt)
	protected.Post("/receipts/:id/verify", s.handleVerifyReceipt)
	protected.Post("/receipts/:id/reparse", s.handleReparseReceipt)
	protected.Delete("/receipts/:id", s.handleDeleteReceipt)

	admin := protected.Group("/admin", s.requireRole("admin"))
	admin.Get("/users", s.handleListUsers)
	admin.Post("/users", s.handleCreateUser)
	admin.Put("/users/:id", s.handleUpdateUser)
	admin.Delete("/users/:id", s.handleDeleteUser)
	admin.Post("/users/:id/controller", s.handleAssignController)
}

func (s *Server) countRequests(c *fiber.Ctx) error {
	err := c.Next()
	route := c.Route().Path
	metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(c.Response().StatusCode())).Inc()
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := repository.HealthCheck(c.Context(), s.pool, 2*time.Second, s.logger); err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "degraded", "error": "database unreachable"})
	}
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

// respondError maps application errors to HTTP status codes.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, common.ErrInvalidInput):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, common.ErrUnauthorized):
		return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, common.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, common.ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "internal error"})
	}
}
