// Package api wires the HTTP routes of the upload service.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/api/handlers"
	"github.com/welldanyogia/webrana-uploadable/internal/api/middleware"
	"github.com/welldanyogia/webrana-uploadable/internal/logger"
	"github.com/welldanyogia/webrana-uploadable/internal/repository"
	"github.com/welldanyogia/webrana-uploadable/internal/uploader"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterMaxIdle         = 30 * time.Minute
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB      *gorm.DB
	Uploads *uploader.Handler
	Logger  *slog.Logger

	// PublicDir, when set, is served under /uploads. Only useful with the
	// local storage backend, whose root it should be.
	PublicDir string
	// BodyLimit caps request bodies, e.g. "26M". Empty disables the cap.
	BodyLimit string

	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	Production     bool
	RateLimit      float64 // Requests per second per IP (0 = unlimited)
	RateBurst      int     // Burst size for rate limiter
}

// NewRouter creates and configures the Echo router with all routes. The
// rate limiter cleanup runs until ctx is done.
func NewRouter(ctx context.Context, cfg *RouterConfig) *echo.Echo {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	sec := logger.NewSecurityLogger(log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))
	if cfg.RateLimit > 0 {
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
		go limiter.RunCleanup(ctx, limiterCleanupInterval, limiterMaxIdle)
		e.Use(middleware.RateLimiter(limiter, sec))
	}
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	documentRepo := repository.NewDocumentRepository(cfg.DB)

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Uploads.Storage().Backend())
	documentHandler := handlers.NewDocumentHandler(documentRepo, cfg.Uploads, sec)
	mappingHandler := handlers.NewMappingHandler(documentRepo, cfg.Uploads)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	if cfg.PublicDir != "" {
		e.Static("/uploads", cfg.PublicDir)
	}

	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.APIKey, sec))

	// Mapping routes
	mappings := api.Group("/mappings")
	mappings.GET("", mappingHandler.List)
	mappings.GET("/:name", mappingHandler.Get)

	// Document routes
	documents := api.Group("/documents")
	documents.POST("", documentHandler.Create)
	documents.GET("", documentHandler.List)
	documents.GET("/:id", documentHandler.Get)
	documents.PUT("/:id", documentHandler.Update)
	documents.DELETE("/:id", documentHandler.Delete)
	documents.GET("/:id/mappings", mappingHandler.Document)
	documents.GET("/:id/files/:field", documentHandler.Download)

	return e
}
