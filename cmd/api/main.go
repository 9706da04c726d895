package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rxbridge-service/internal/auth"
	"rxbridge-service/internal/cache"
	"rxbridge-service/internal/compliance"
	"rxbridge-service/internal/config"
	"rxbridge-service/internal/events"
	"rxbridge-service/internal/handlers"
	"rxbridge-service/internal/kafka"
	"rxbridge-service/internal/metrics"
	"rxbridge-service/internal/recommendation"
	"rxbridge-service/internal/repository"
	"rxbridge-service/internal/scan"
	"rxbridge-service/pkg/logger"
	"rxbridge-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "rxbridge-service/docs" // Import docs for Swagger
)

// @title           RxBridge Scan Service API
// @version         1.0
// @description     Days-of-supply classification and alert severity for pharmacy inventory.

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()

	appLogger.Info("Starting RxBridge scan service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("inventory_source", cfg.InventorySource),
	)

	appMetrics := metrics.New()

	inventoryRepo, err := repository.NewInventoryRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize inventory source", zap.Error(err))
	}
	if closer, ok := inventoryRepo.(io.Closer); ok {
		defer closer.Close()
	}

	aggregator := compliance.NewAggregator(compliance.NewSources(cfg, appMetrics, appLogger), appMetrics, appLogger)
	scanCache := cache.NewCache(cfg, appLogger)
	if closer, ok := scanCache.(io.Closer); ok {
		defer closer.Close()
	}

	var publisher events.EventPublisher = events.NewInMemoryEventPublisher(appLogger)
	if cfg.UseKafka {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg, appMetrics, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka publisher, using in-memory publisher", zap.Error(err))
		} else {
			defer kafkaPublisher.Close()
			publisher = kafkaPublisher
		}
	} else {
		appLogger.Info("Kafka disabled (USE_KAFKA=false), scan events stay in memory")
	}

	scanService := scan.NewService(inventoryRepo, aggregator, scanCache, publisher, appMetrics,
		cache.TTL(cfg.CacheTTL), appLogger)

	// Inventory change events drop cached scans (optional)
	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if cfg.UseKafka {
		consumer, err := kafka.NewConsumer(cfg, scanService, appMetrics, appLogger)
		if err != nil {
			appLogger.Warn("Failed to initialize Kafka consumer, continuing without cache invalidation", zap.Error(err))
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Start(backgroundCtx); err != nil {
					appLogger.Error("Kafka consumer error", zap.Error(err))
				}
			}()
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, appLogger)
	authHandler := auth.NewAuthHandler(jwtManager, cfg.AuthUsers, appLogger)
	recommender := recommendation.NewFallbackProvider(recommendation.NewRuleBasedProvider(), appLogger)
	inventoryHandler := handlers.NewInventoryHandler(scanService, recommender, appLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// CORS middleware (must be first to handle preflight requests)
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RecoveryHandler(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinMiddleware(appLogger))
	router.Use(middleware.MetricsMiddleware(appMetrics))
	router.Use(middleware.ErrorHandler(appLogger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		authGroup := v1.Group("/auth")
		loginLimiter := middleware.PerMinute(cfg.LoginRatePerMinute)
		go loginLimiter.RunCleanup(backgroundCtx, time.Minute)
		authGroup.Use(middleware.RateLimitMiddleware(loginLimiter))
		{
			authGroup.POST("/login", authHandler.Login)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, appLogger))
		{
			inventory := protected.Group("/inventory")
			{
				inventory.POST("/run", inventoryHandler.RunScan)
				inventory.GET("/scan/latest", inventoryHandler.GetLatestScan)
				inventory.DELETE("/scan/latest", inventoryHandler.ClearLatestScan)
				inventory.GET("/items", inventoryHandler.ListItems)
				inventory.GET("/items/:drug/recommendation", inventoryHandler.GetRecommendation)
			}
		}
	}

	// Scans are bounded by the write timeout; there is no separate scan deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		appLogger.Info("Starting HTTP server",
			zap.String("address", ":"+cfg.Port),
			zap.String("swagger_url", "http://localhost:"+cfg.Port+"/swagger/index.html"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("Server exited")
}
