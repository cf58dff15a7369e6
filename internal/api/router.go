package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identitylab/account-service/internal/api/handler"
	"github.com/identitylab/account-service/internal/api/middleware"
	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
	"github.com/identitylab/account-service/internal/core/service"
	"github.com/identitylab/account-service/internal/infrastructure/config"
	mongodb "github.com/identitylab/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/identitylab/account-service/internal/infrastructure/db/redis"
	"github.com/identitylab/account-service/internal/infrastructure/security"
)

// NewRouter wires repositories, services, and handlers, and returns the Echo
// instance with all routes registered. It is the composition root: every
// collaborator is constructed here and injected explicitly — nothing reaches
// for ambient globals.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *goredis.Client, events ports.EventPublisher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := security.NewBcryptHasher(0)
	codec := service.NewTokenCodec(cfg.JWTSecret)
	verification := redisdb.NewVerificationStore(rdb, cfg.Auth.VerificationTTL)

	authService := service.NewAuthService(
		userRepo, hasher, codec, verification, events, nil,
		cfg.Auth.TokenTTL, cfg.Auth.MaxFailedLogins, log,
	)
	userService := service.NewUserService(userRepo, hasher, events, nil, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	authenticated := middleware.Authenticate(authService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify-email", authHandler.VerifyEmail)

	// --- Self-service routes (any resolved identity) ---
	me := e.Group("/users/me", authenticated)
	me.GET("", userHandler.Me)
	me.PATCH("", userHandler.UpdateMe)

	// --- Administration routes ---
	staff := e.Group("/users", authenticated, middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin))
	staff.GET("", userHandler.List)
	staff.GET("/:id", userHandler.Get)
	staff.POST("/:id/verify-email", userHandler.VerifyEmail)

	admin := e.Group("/users", authenticated, middleware.RequireRoles(domain.RoleAdmin))
	admin.PUT("/:id/role", userHandler.ChangeRole)
	admin.POST("/:id/lock", userHandler.Lock)
	admin.POST("/:id/unlock", userHandler.Unlock)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
