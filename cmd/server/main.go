package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"limoride/internal/config"
	"limoride/internal/flow"
	"limoride/internal/handlers"
	"limoride/internal/middleware"
	"limoride/internal/repositories/mongodb"
	"limoride/internal/services"
	"limoride/internal/utils"
	"limoride/pkg/cache"
	"limoride/pkg/database"
	"limoride/pkg/flight"
	"limoride/pkg/logger"
	"limoride/pkg/maps"
	"limoride/pkg/payment"
	"limoride/pkg/sms"
	"limoride/pkg/websocket"
	"limoride/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Environment files are optional outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Storage
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Repositories
	bookingRepo := mongodb.NewBookingRepository(db.Database)
	vehicleTypeRepo := mongodb.NewVehicleTypeRepository(db.Database)
	pricingRuleRepo := mongodb.NewPricingRuleRepository(db.Database)
	creditRepo := mongodb.NewRideCreditRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)

	// External providers
	mapsProvider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
	if err != nil {
		appLogger.Fatalf("Failed to initialize maps provider: %v", err)
	}
	paymentProvider := payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey)
	smsProvider := sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
	flightClient := flight.NewClient(cfg.Flight.AccessKey)

	// Dispatch websocket
	hub := websocket.NewHub()
	go hub.Run()

	// Services
	notificationService := services.NewNotificationService(smsProvider, hub, userRepo, cfg.SMS.DefaultFrom, appLogger)
	quoteService := services.NewQuoteService(pricingRuleRepo, vehicleTypeRepo, userRepo, mapsProvider, cfg.Booking, appLogger)
	bookingService := services.NewBookingService(
		bookingRepo, vehicleTypeRepo, userRepo, creditRepo,
		paymentProvider, notificationService, services.NoopReassigner{},
		cfg.Booking, cfg.App.Currency, appLogger,
	)
	flightService := services.NewFlightService(flightClient, cfg.Flight, appLogger)
	flowStore := flow.NewStore(redisCache, cfg.Booking.FlowStateTTL)

	// Handlers
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	flowHandler := handlers.NewFlowHandler(flowStore, quoteService, bookingService, flightService)
	bookingHandler := handlers.NewBookingHandler(bookingService, userRepo)
	driverHandler := handlers.NewDriverHandler(bookingService, hub, appLogger)
	adminHandler := handlers.NewAdminHandler(bookingService, vehicleTypeRepo, pricingRuleRepo, creditRepo, userRepo)
	flightHandler := handlers.NewFlightHandler(flightService)

	limiter := middleware.NewRedisRateLimiter(redisCache)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.Security.RateLimitPerMinute, "global"))

	v1 := router.Group("/api/v1")
	{
		routes.SetupQuoteRoutes(v1, quoteHandler, flowHandler, flightHandler, adminHandler, limiter, cfg.Security.JWTSecret)
		routes.SetupBookingRoutes(v1, bookingHandler, cfg.Security.JWTSecret)
		routes.SetupDriverRoutes(v1, driverHandler, cfg.Security.JWTSecret)
		routes.SetupAdminRoutes(v1, adminHandler, cfg.Security.JWTSecret)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"mongodb": "up", "redis": "up"}
		if err := db.Ping(); err != nil {
			checks["mongodb"] = "down"
			status = http.StatusServiceUnavailable
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "down"
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"status":  utils.StatusSuccess,
			"version": cfg.App.Version,
			"checks":  checks,
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting %s on port %d", cfg.App.Name, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorf("Forced shutdown: %v", err)
	}
}
