package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/storage"
	"gorm.io/gorm"
)

// probeKey is looked up in the storage backend to check it is reachable
const probeKey = "healthz"

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	db      *gorm.DB
	storage storage.FileStorage
}

// NewHealthHandler creates a new HealthHandler. fileStorage may be nil,
// in which case only the database is checked.
func NewHealthHandler(db *gorm.DB, fileStorage storage.FileStorage) *HealthHandler {
	return &HealthHandler{db: db, storage: fileStorage}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	services := make(map[string]string)
	status := "healthy"

	if h.pingDatabase() != nil {
		services["database"] = "unhealthy"
		status = "unhealthy"
	} else {
		services["database"] = "healthy"
	}

	if h.storage != nil {
		if _, err := h.storage.Exists(c.Request().Context(), probeKey); err != nil {
			services["storage"] = "unhealthy"
			status = "unhealthy"
		} else {
			services["storage"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, HealthResponse{
		Status:   status,
		Services: services,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database connection failed",
		})
	}

	if err := sqlDB.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database ping failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (h *HealthHandler) pingDatabase() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
