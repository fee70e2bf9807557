package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/retroconnect/idverify/internal/admin"
	"github.com/retroconnect/idverify/internal/api/docs"
	"github.com/retroconnect/idverify/internal/api/handler"
	adminHandler "github.com/retroconnect/idverify/internal/api/handler/admin"
	"github.com/retroconnect/idverify/internal/api/middleware"
	"github.com/retroconnect/idverify/internal/database"
	"github.com/retroconnect/idverify/internal/registration"
)

// Database is the slice of *pgxpool.Pool the HTTP layer touches.
type Database interface {
	database.Pinger
	admin.Querier
}

type Dependencies struct {
	DB           Database
	Verifier     handler.VerificationService
	Moderation   handler.ModerationService
	Submitter    registration.FormSubmitter
	Tokens       middleware.TokenValidator
	RateLimitMax int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "ID Verify API",
		BodyLimit:    20 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.FunctionsPrefix, middleware.Preflight())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Client-Info,Apikey",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	if r.deps == nil {
		healthHandler := handler.NewHealthHandler(nil)
		r.app.Get("/health", healthHandler.Health)
		r.app.Get("/ready", healthHandler.Ready)
		return
	}

	healthHandler := handler.NewHealthHandler(r.deps.DB)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(r.deps.RateLimitMax))

	moderatorAuth := middleware.ModeratorAuth(middleware.ModeratorAuthDependencies{
		Tokens: r.deps.Tokens,
		Logger: r.logger,
	})

	// Contract endpoints
	functionsHandler := handler.NewFunctionsHandler(r.deps.Verifier, r.deps.Moderation, r.logger)
	functions := r.app.Group(middleware.FunctionsPrefix)
	functions.Post("/verify-face", r.rateLimiter.Handler(), functionsHandler.VerifyFace)
	functions.Post("/suspend-user", moderatorAuth, functionsHandler.SuspendUser)
	functions.Post("/send-warning", moderatorAuth, functionsHandler.SendWarning)

	v1 := r.app.Group("/v1")

	registrationHandler := handler.NewRegistrationHandler(r.deps.Submitter, r.logger)
	v1.Post("/registrations", r.rateLimiter.Handler(), registrationHandler.Create)

	r.setupAdminRoutes(v1.Group("/admin", moderatorAuth))
}

func (r *Router) setupAdminRoutes(adminGroup fiber.Router) {
	statsService := admin.NewStatsService(r.deps.DB, r.logger)
	metricsHandler := adminHandler.NewMetricsHandler(statsService, r.logger)

	metricsGroup := adminGroup.Group("/metrics")
	metricsGroup.Get("/verifications", metricsHandler.GetVerificationMetrics)
	metricsGroup.Get("/latency", metricsHandler.GetLatencyMetrics)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
