package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ersuite/reimbursement-api/internal/api/handler"
	"github.com/ersuite/reimbursement-api/internal/api/middleware"
	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
	"github.com/ersuite/reimbursement-api/internal/core/service"
	"github.com/ersuite/reimbursement-api/internal/core/validation"
	mongorepo "github.com/ersuite/reimbursement-api/internal/infrastructure/db/mongo"
)

// RouterDeps carries the wiring the router does not build itself: live
// connections and the background audit pipeline started by main.
type RouterDeps struct {
	DB           *mongo.Database
	Redis        *redis.Client
	Recorder     ports.DecisionRecorder
	AuditService ports.AuditService
	JWTSecret    string
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("ers"))

	// --- Dependencies ---
	rules := validation.Rules{}
	userRepo := mongorepo.NewUserRepository(deps.DB)
	reimbRepo := mongorepo.NewReimbRepository(deps.DB)

	userService := service.NewUserService(userRepo, rules, deps.Logger)
	reimbService := service.NewReimbService(reimbRepo, rules, deps.Recorder, deps.Logger)

	authHandler := handler.NewAuthHandler(userService, deps.JWTSecret)
	userHandler := handler.NewUserHandler(userService)
	reimbHandler := handler.NewReimbHandler(reimbService, deps.AuditService)

	authMW := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- User management (administrators only) ---
	users := e.Group("/v1/users", authMW, middleware.RBAC(domain.RoleAdmin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Reimbursements ---
	reimbs := e.Group("/v1/reimbursements", authMW)
	managerOnly := middleware.RBAC(domain.RoleManager, domain.RoleAdmin)

	reimbs.GET("", reimbHandler.List, managerOnly)
	reimbs.GET("/author/:id", reimbHandler.ListByAuthor)
	reimbs.GET("/:id", reimbHandler.Get)
	reimbs.POST("", reimbHandler.Create)
	reimbs.PUT("", reimbHandler.Update, managerOnly)
	reimbs.DELETE("/:id", reimbHandler.Delete, managerOnly)
	reimbs.GET("/:id/decisions", reimbHandler.Decisions, managerOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
