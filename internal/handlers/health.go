package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// DropCounter reports how many notifications could not be recorded
type DropCounter interface {
	Dropped() int64
}

// HealthHandler reports liveness and the database connection
type HealthHandler struct {
	db      *gorm.DB
	dropped DropCounter
}

func NewHealthHandler(db *gorm.DB, dropped DropCounter) *HealthHandler {
	return &HealthHandler{db: db, dropped: dropped}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{
		"status":                status,
		"service":               "team-feed",
		"dropped_notifications": h.dropped.Dropped(),
	})
}
