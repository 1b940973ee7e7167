package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskmaster/taskmaster-api/internal/api/handler"
	"github.com/taskmaster/taskmaster-api/internal/api/middleware"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
	"github.com/taskmaster/taskmaster-api/internal/core/service"
	"github.com/taskmaster/taskmaster-api/internal/infrastructure/config"
	mongostore "github.com/taskmaster/taskmaster-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskmaster/taskmaster-api/internal/infrastructure/db/redis"
	"github.com/taskmaster/taskmaster-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The activity recorder and service are constructed by the caller because the
// recorder's worker pool has its own lifecycle; either may be nil to disable
// the feed.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	cfg *config.Config,
	recorder ports.ActivityRecorder,
	activityService ports.ActivityService,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskmaster"))

	// --- Dependencies ---
	var throttle ports.LoginThrottle
	if rdb != nil {
		throttle = redisstore.NewLoginThrottle(rdb)
	}

	userRepo := mongostore.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, throttle, cfg.JWTSecret, cfg.TokenTTL)
	authHandler := handler.NewAuthHandler(authService)

	taskRepo := mongostore.NewTaskRepository(db)
	taskService := service.NewTaskService(taskRepo, recorder, log)
	taskHandler := handler.NewTaskHandler(taskService, activityService)

	authMiddleware := middleware.Auth(authService)

	// --- User routes (the /api aliases mirror the historical mount points) ---
	for _, g := range []*echo.Group{e.Group("/users"), e.Group("/api/users")} {
		g.POST("/register", authHandler.Register)
		g.POST("/login", authHandler.Login)
	}

	// --- Task routes (all behind the Auth gate) ---
	for _, g := range []*echo.Group{e.Group("/tasks"), e.Group("/api/tasks")} {
		g.Use(authMiddleware)
		g.POST("", taskHandler.Create)
		g.GET("", taskHandler.List)
		g.GET("/activity", taskHandler.Activity)
		g.PATCH("/:id", taskHandler.Update)
		g.DELETE("/:id", taskHandler.Delete)
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
