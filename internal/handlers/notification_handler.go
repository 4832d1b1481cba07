package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification pulls
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the most recent notifications, at most 20
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	notifications, err := h.notifications.ListFor(c.Request().Context(), user, limit)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, notifications)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), user, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.notifications.MarkAllRead(c.Request().Context(), user)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, echo.Map{"updated": updated})
}
