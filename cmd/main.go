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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bakery-order-service/internal/config"
	"bakery-order-service/internal/events"
	"bakery-order-service/internal/handlers"
	"bakery-order-service/internal/middleware"
	"bakery-order-service/internal/models"
	"bakery-order-service/internal/repository"
	"bakery-order-service/internal/services"
	"bakery-order-service/internal/templates"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	if err := migrateDatabase(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize email provider failover chain
	emailProvider := initEmailProvider(cfg)

	// Initialize asset store for design-reference images (optional)
	var assetStore services.AssetStore
	if cfg.Storage.S3Bucket != "" {
		store, err := services.NewS3AssetStore(&services.ProviderConfig{
			AWSRegion:          cfg.AWS.Region,
			AWSAccessKeyID:     cfg.AWS.AccessKeyID,
			AWSSecretAccessKey: cfg.AWS.SecretAccessKey,
		}, cfg.Storage.S3Bucket, cfg.Storage.S3KeyPrefix, logrus.StandardLogger())
		if err != nil {
			log.Printf("Warning: Failed to initialize asset store: %v - orders will have no image references", err)
		} else {
			assetStore = store
			log.Printf("Asset store configured: s3://%s/%s", cfg.Storage.S3Bucket, cfg.Storage.S3KeyPrefix)
		}
	} else {
		log.Println("Warning: No asset store configured - design images will only travel by email")
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	// Initialize Redis client for rate limiting (optional)
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v - rate limiting will use in-memory fallback", err)
			redisClient = nil
		} else {
			log.Println("Redis connected for rate limiting")
		}
	}

	// Initialize rate limiter (if enabled)
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiterWithConfig(redisClient, logrus.StandardLogger(), middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
		})
		log.Printf("Inquiry rate limiting enabled (%d requests / %v per IP)",
			cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	// Initialize NATS publisher (optional - service works without it)
	var natsClient *events.Client
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(cfg.NATS.URL, cfg.NATS.MaxReconnects, cfg.NATS.ReconnectWait)
		if err != nil {
			log.Printf("Warning: Failed to connect to NATS: %v - domain events disabled", err)
			natsClient = nil
		}
	}
	publisher := events.NewPublisher(natsClient, logrus.StandardLogger())

	// Initialize template renderer
	renderer, err := templates.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to initialize template renderer: %v", err)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	inquiryHandler := handlers.NewInquiryHandler(
		orderRepo,
		emailProvider,
		assetStore,
		renderer,
		publisher,
		cfg.App.BusinessName,
		cfg.App.AdminEmail,
	)
	orderHandler := handlers.NewOrderHandler(orderRepo)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)

	// Setup router
	router := setupRouter(cfg, rateLimiter, healthHandler, inquiryHandler, orderHandler, catalogHandler)

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Starting Bakery Order Service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down Bakery Order Service...")

	if natsClient != nil {
		natsClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Bakery Order Service stopped")
}

// initDatabase initializes the database connection
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// Surfaces unique-violation errors as gorm.ErrDuplicatedKey so
		// order-number collisions can be retried.
		TranslateError: true,
	}
	if cfg.App.Environment == "production" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// migrateDatabase runs database migrations
func migrateDatabase(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.Order{},
		&models.Product{},
		&models.Testimonial{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("Database migration completed successfully")
	return nil
}

// initEmailProvider initializes the email provider with failover chain
// Priority: AWS SES (primary) -> SendGrid (secondary) -> SMTP (legacy)
func initEmailProvider(cfg *config.Config) services.Provider {
	var providers []services.Provider

	// 1. Primary: AWS SES
	if cfg.Email.SESFrom != "" && (cfg.AWS.AccessKeyID != "" || cfg.AWS.Region != "") {
		sesConfig := &services.ProviderConfig{
			AWSRegion:          cfg.AWS.Region,
			AWSAccessKeyID:     cfg.AWS.AccessKeyID,
			AWSSecretAccessKey: cfg.AWS.SecretAccessKey,
			SESFrom:            cfg.Email.SESFrom,
			SESFromName:        cfg.Email.SESFromName,
		}
		sesProvider, err := services.NewSESProvider(sesConfig)
		if err != nil {
			log.Printf("Warning: Failed to initialize AWS SES: %v", err)
		} else {
			providers = append(providers, sesProvider)
			log.Printf("Email provider configured: AWS SES (primary) - region: %s", cfg.AWS.Region)
		}
	}

	// 2. Secondary: SendGrid API
	if cfg.Email.SendGridAPIKey != "" {
		sendgridConfig := &services.ProviderConfig{
			SendGridAPIKey: cfg.Email.SendGridAPIKey,
			SendGridFrom:   cfg.Email.SendGridFrom,
			SendGridName:   cfg.App.BusinessName,
		}
		providers = append(providers, services.NewSendGridProvider(sendgridConfig))
		log.Printf("Email provider configured: SendGrid (secondary)")
	}

	// 3. Legacy SMTP fallback (if no other providers)
	if len(providers) == 0 && cfg.Email.SMTPHost != "" {
		smtpConfig := &services.ProviderConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			SMTPFrom:     cfg.Email.SMTPFrom,
			SMTPFromName: cfg.App.BusinessName,
		}
		providers = append(providers, services.NewSMTPProvider(smtpConfig))
		log.Printf("Email provider configured: Legacy SMTP - %s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}

	if len(providers) == 0 {
		log.Println("Warning: No email provider configured - submissions will be rejected")
		return nil
	}

	failoverConfig := &services.FailoverConfig{
		EnableFailover: cfg.Email.EnableFailover,
		MaxRetries:     1,
		RetryDelay:     2 * time.Second,
	}

	failover := services.NewFailoverEmailProvider(providers, failoverConfig)
	log.Printf("Email failover chain initialized: %s (failover=%v)", failover.GetName(), cfg.Email.EnableFailover)

	return failover
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(
	cfg *config.Config,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handlers.HealthHandler,
	inquiryHandler *handlers.InquiryHandler,
	orderHandler *handlers.OrderHandler,
	catalogHandler *handlers.CatalogHandler,
) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/livez", healthHandler.Livez)
	router.GET("/readyz", healthHandler.Readyz)

	// API routes
	api := router.Group("/api/v1")
	{
		// Inquiry intake (public, rate limited)
		inquiries := api.Group("/inquiries")
		if rateLimiter != nil {
			inquiries.Use(rateLimiter.Handler())
		}
		inquiries.POST("", inquiryHandler.Submit)

		// Catalog (public)
		api.GET("/products", catalogHandler.ListProducts)
		api.GET("/products/:slug", catalogHandler.GetProduct)
		api.GET("/testimonials", catalogHandler.ListTestimonials)

		// Order review (admin key required)
		orders := api.Group("/orders")
		orders.Use(middleware.AdminAuth(cfg.App.AdminAPIKey))
		{
			orders.GET("", orderHandler.List)
			orders.GET("/:id", orderHandler.Get)
			orders.POST("/:id/messages", orderHandler.AppendMessage)
		}
	}

	return router
}
