package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SVG-campus/ContractKit/config"
	"github.com/SVG-campus/ContractKit/handler"
	"github.com/SVG-campus/ContractKit/middleware"
	"github.com/SVG-campus/ContractKit/pdf"
	"github.com/SVG-campus/ContractKit/pkg/logger"
	"github.com/SVG-campus/ContractKit/service"
	"github.com/SVG-campus/ContractKit/store"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Connect to the database and migrate
	st, err := store.Open(&cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// Object storage for rendered PDFs
	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}
	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	// Core services
	stripeSvc := service.NewStripeService(&cfg.Stripe)
	iplookupSvc := service.NewIPLookupService(&cfg.IPLookup)
	notifier := service.NewLogNotifier()

	gate := service.NewSubscriptionService(st, stripeSvc, cfg.Trial.Days)
	versions := service.NewVersionService(st)
	delivery := service.NewDeliveryService(st, gate, versions, pdf.NewRenderer(), minioSvc, notifier, cfg.Server.BaseURL)
	signing := service.NewSigningService(st, iplookupSvc, notifier)

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, st, gate)
	profileHandler := handler.NewProfileHandler(st)
	contractHandler := handler.NewContractHandler(st, delivery, versions)
	invoiceHandler := handler.NewInvoiceHandler(st, delivery)
	signingHandler := handler.NewSigningHandler(signing)
	billingHandler := handler.NewBillingHandler(gate, cfg.Server.BaseURL)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/signin", authHandler.SignIn)

		// Signing links carry the contract id as their only credential
		api.GET("/sign/:id", signingHandler.Show)
		api.POST("/sign/:id", signingHandler.Sign)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Save)

		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.POST("/contracts/:id/send", contractHandler.Send)
		protected.POST("/contracts/:id/cancel", contractHandler.Cancel)
		protected.GET("/contracts/:id/versions", contractHandler.Versions)
		protected.POST("/contracts/:id/pdf", contractHandler.RegeneratePDF)
		protected.GET("/contracts/:id/audit", contractHandler.Audit)

		protected.POST("/invoices", invoiceHandler.Create)
		protected.GET("/invoices", invoiceHandler.List)
		protected.GET("/invoices/:id", invoiceHandler.Get)
		protected.POST("/invoices/:id/send", invoiceHandler.Send)
		protected.POST("/invoices/:id/pay", invoiceHandler.MarkPaid)

		protected.POST("/billing/checkout", billingHandler.Checkout)
		protected.POST("/billing/success", billingHandler.Success)
		protected.GET("/billing/subscription", billingHandler.Status)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
