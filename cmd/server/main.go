package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/config"
	"github.com/consultly/consultly-backend/internal/database"
	"github.com/consultly/consultly-backend/internal/handlers"
	"github.com/consultly/consultly-backend/internal/middleware"
	"github.com/consultly/consultly-backend/internal/services"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Consultly Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize Redis. The cache and rate limiter degrade to no-ops when
	// Redis is unreachable, so a failed ping is a warning, not a fatal.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unavailable, caching and rate limiting degraded")
		redisClient = nil
	} else {
		defer redisClient.Close()
		logger.Info("Redis connection established")
	}
	cancelPing()

	// Initialize repositories
	consultantRepo := database.NewConsultantRepository(db)
	clientRepo := database.NewClientRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	availabilityRepo := database.NewAvailabilityRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	auditRepo := database.NewPaymentAuditRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	cacheService := services.NewCacheService(redisClient, logger)
	emailService := services.NewEmailService(&cfg.Resend, logger)
	gatewayService := services.NewRazorpayService(&cfg.Razorpay, logger)
	rateLimitService := services.NewRateLimitService(redisClient, &cfg.RateLimit, logger)
	slotGenerator := services.NewSlotGeneratorService(availabilityRepo, logger)

	consultantService := services.NewConsultantService(consultantRepo, cacheService, logger)
	availabilityService := services.NewAvailabilityService(availabilityRepo, consultantRepo, slotGenerator, logger)
	bookingService := services.NewBookingService(
		consultantRepo, sessionRepo, availabilityRepo, bookingRepo,
		emailService, cacheService, &cfg.Booking, logger)
	paymentService := services.NewPaymentService(
		paymentRepo, auditRepo, sessionRepo, clientRepo,
		gatewayService, emailService, cacheService, logger)

	// Initialize handlers
	consultantHandler := handlers.NewConsultantHandler(consultantService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService, &cfg.Booking, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, &cfg.Booking, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public booking surface
		public := v1.Group("")
		public.Use(middleware.RateLimitMiddleware(rateLimitService))
		{
			public.GET("/consultants/:slug", consultantHandler.GetPublicProfile)
			public.GET("/consultants/:slug/slots", availabilityHandler.ListOpenSlots)
			public.POST("/book", bookingHandler.BookSession)

			public.POST("/payments/create-order", paymentHandler.CreateOrder)
			public.POST("/payments/verify", paymentHandler.VerifyPayment)
			public.POST("/payments/failed", paymentHandler.PaymentFailed)
		}

		// Gateway webhook: no rate limiting, no auth; the signature check
		// is the gate
		v1.POST("/payments/webhook", paymentHandler.Webhook)

		// Consultant-authenticated routes
		consultant := v1.Group("/consultant")
		consultant.Use(middleware.AuthMiddleware(cfg.JWT.Secret, logger))
		{
			consultant.POST("/availability/patterns", availabilityHandler.CreatePattern)
			consultant.GET("/availability/patterns", availabilityHandler.ListPatterns)
			consultant.DELETE("/availability/patterns/:pattern_id", availabilityHandler.DeletePattern)
			consultant.POST("/availability/generate", availabilityHandler.GenerateSlots)

			consultant.POST("/payments/create-order", paymentHandler.CreateOrderAuthenticated)
			consultant.POST("/payments/verify", paymentHandler.VerifyPayment)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			logger.WithFields(fields).Error("Request completed with errors")
			return
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.WithFields(fields).Error("Request failed")
		case c.Writer.Status() >= 400:
			logger.WithFields(fields).Warn("Request rejected")
		default:
			logger.WithFields(fields).Info("Request completed")
		}
	}
}

// healthCheckHandler reports process and database health
func healthCheckHandler(db interface{ Ping() error }) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"details": "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	}
}
