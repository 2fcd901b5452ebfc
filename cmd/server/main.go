package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/accrual"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/application"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/auth"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/config"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/database"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/events"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/handler"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/health"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/logger"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/middleware"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-store")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-store",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := db.AutoMigrate(
		&repository.UserModel{},
		&repository.CategoryModel{},
		&repository.ProductModel{},
		&repository.CartItemModel{},
		&repository.OrderModel{},
		&repository.OrderLineModel{},
		&repository.BonusProgramModel{},
		&repository.BonusPrizeModel{},
		&repository.BonusLevelModel{},
		&repository.BonusProgressModel{},
		&repository.BonusHistoryModel{},
		&repository.BonusRedemptionModel{},
	); err != nil {
		zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
	}
	zapLogger.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaConfig.Enabled {
		publisher = events.NewKafkaPublisher(cfg.KafkaConfig.Brokers, zapLogger)
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	programRepo := repository.NewGormProgramRepository(db)
	progressRepo := repository.NewGormProgressRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)

	// Initialize accrual engine
	accrualEngine := accrual.NewEngine(programRepo, progressRepo, zapLogger)

	// Initialize application services
	authService := application.NewAuthService(userRepo, jwtManager, zapLogger)
	catalogService := application.NewCatalogService(productRepo, categoryRepo, zapLogger)
	cartService := application.NewCartService(cartRepo, productRepo, zapLogger)
	orderService := application.NewOrderService(orderRepo, cartRepo, productRepo, accrualEngine, publisher, zapLogger)
	bonusService := application.NewBonusService(programRepo, progressRepo, historyRepo, userRepo, publisher, zapLogger)
	statsService := application.NewStatsService(userRepo, productRepo, orderRepo)

	// Bootstrap admin account
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(bootstrapCtx, cfg.AdminConfig.Email, cfg.AdminConfig.Password); err != nil {
		zapLogger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}
	bootstrapCancel()

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService)
	bonusHandler := handler.NewBonusHandler(bonusService)
	adminHandler := handler.NewAdminHandler(catalogService, orderService, authService, statsService)
	adminBonusHandler := handler.NewAdminBonusHandler(bonusService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-store")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	api := router.Group("/api")
	authHandler.RegisterRoutes(api, jwtManager)
	catalogHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api, jwtManager)
	orderHandler.RegisterRoutes(api, jwtManager)
	bonusHandler.RegisterRoutes(api, jwtManager)

	// Register admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	adminHandler.RegisterRoutes(admin)
	adminBonusHandler.RegisterRoutes(admin)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-store...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-store stopped")
}
