package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oceanflame/fishpond/internal/api/handler"
	"github.com/oceanflame/fishpond/internal/api/middleware"
	"github.com/oceanflame/fishpond/internal/core/domain"
	"github.com/oceanflame/fishpond/internal/core/service"
	"github.com/oceanflame/fishpond/internal/infrastructure/config"
	mongodb "github.com/oceanflame/fishpond/internal/infrastructure/db/mongo"
	redisdb "github.com/oceanflame/fishpond/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("fishpond"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	fishRepo := mongodb.NewFishRepository(db)
	couponRepo := mongodb.NewCouponRepository(db)
	feedingRepo := mongodb.NewFeedingRepository(db)
	adminRepo := mongodb.NewAdminRepository(db)
	tokenStore := redisdb.NewTokenStore(rdb, cfg.PlayerTokenTTL)

	// --- Services ---
	playerAuth := service.NewPlayerAuthService(userRepo, tokenStore, log)
	gameService := service.NewGameService(userRepo, fishRepo, couponRepo, feedingRepo, cfg.DailyFeedLimit, log)
	couponService := service.NewCouponService(couponRepo, fishRepo, adminRepo, log)
	adminService := service.NewAdminService(adminRepo, userRepo, fishRepo, couponRepo, cfg.JWTSecret, cfg.StaffTokenTTL, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(playerAuth)
	gameHandler := handler.NewGameHandler(gameService, couponService)
	adminHandler := handler.NewAdminHandler(adminService, couponService)

	playerMW := middleware.PlayerAuth(tokenStore)
	staffMW := middleware.StaffAuth(cfg.JWTSecret)

	// --- Player auth ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/guest", authHandler.Guest)
	auth.GET("/me", authHandler.Me, playerMW)

	// --- Game ---
	game := e.Group("/api/game", playerMW)
	game.GET("/state", gameHandler.State)
	game.POST("/fish", gameHandler.AddFish)
	game.POST("/fish/:id/feed", gameHandler.Feed)
	game.POST("/fish/:id/harvest", gameHandler.Harvest)
	game.GET("/coupons", gameHandler.ListCoupons)

	// --- Staff console ---
	admin := e.Group("/api/admin")
	admin.POST("/login", adminHandler.Login)
	admin.POST("/register", adminHandler.Register, staffMW, middleware.RBAC(domain.RoleAdmin))

	staff := admin.Group("", staffMW, middleware.RBAC(domain.RoleAdmin, domain.RoleStaff))
	staff.GET("/coupons/:code", adminHandler.CheckCoupon)
	staff.POST("/coupons/verify", adminHandler.VerifyCoupon)
	staff.GET("/stats", adminHandler.Stats)

	// --- Ops endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
