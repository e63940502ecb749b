package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/landdesk/api/internal/config"
	"github.com/landdesk/api/internal/database"
	"github.com/landdesk/api/internal/handlers"
	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/middleware"
	"github.com/landdesk/api/internal/repository"
	"github.com/landdesk/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Landdesk API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository layer
	parcelRepo := repository.NewParcelRepository(db)
	linkageRepo := repository.NewLinkageRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)

	// Initialize service layer
	parcelService := services.NewParcelService(parcelRepo, projectRepo, log)
	linkageService := services.NewLinkageService(linkageRepo, log)
	propertyService := services.NewPropertyService(propertyRepo, projectRepo, log)
	projectService := services.NewProjectService(projectRepo, log)
	inquiryService := services.NewInquiryService(inquiryRepo, propertyRepo, log)

	// Initialize handlers
	parcelHandler := handlers.NewParcelHandler(parcelService, linkageService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	projectHandler := handlers.NewProjectHandler(projectService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	adminOnly := middleware.AdminRequired(cfg.Auth.JWTSecret)
	{
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.POST("", adminOnly, projectHandler.Create)
		}

		properties := v1.Group("/properties")
		{
			properties.GET("", propertyHandler.List)
			properties.GET("/:id", propertyHandler.Get)
			properties.POST("", adminOnly, propertyHandler.Create)
		}

		parcels := v1.Group("/parcels")
		{
			parcels.GET("", parcelHandler.List)
			parcels.GET("/:id", parcelHandler.Get)
			parcels.POST("", adminOnly, parcelHandler.Create)
			parcels.PATCH("/:id/metrics", adminOnly, parcelHandler.UpdateMetrics)
			parcels.POST("/:id/status", adminOnly, parcelHandler.ChangeStatus)
			parcels.POST("/:id/links", adminOnly, parcelHandler.Link)
			parcels.DELETE("/:id/links/:propertyId", adminOnly, parcelHandler.Unlink)
		}

		// Fleet-wide parcel statistics live under /stats to keep the
		// /parcels route tree free of literal-vs-param conflicts.
		v1.GET("/stats/parcels", parcelHandler.Stats)

		inquiries := v1.Group("/inquiries")
		{
			inquiries.POST("", inquiryHandler.Submit)
			inquiries.GET("", adminOnly, inquiryHandler.List)
			inquiries.PATCH("/:id/status", adminOnly, inquiryHandler.Triage)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
