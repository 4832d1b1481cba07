package handlers

import (
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/repositories"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler exposes the moderation queue to administrators
type AdminHandler struct {
	moderation *services.ModerationService
}

func NewAdminHandler(moderation *services.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

// RegisterAdminRoutes registers moderation routes. The group must already require an administrator.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/approve", h.Approve)
	g.POST("/users/:id/reject", h.Reject)
}

// ListUsers lists non-admin accounts. ?filter= is pending (default), approved or all.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	page, err := h.moderation.ListUsers(c.Request().Context(), admin, services.UserFilter{
		Status: repositories.UserStatus(c.QueryParam("filter")),
		Page:   queryPage(c),
	})
	if err != nil {
		return respondError(err)
	}
	return paged(c, page)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.moderation.Approve(c.Request().Context(), admin, id)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, user)
}

// Reject deletes a pending or approved member together with everything they created
func (h *AdminHandler) Reject(c echo.Context) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.moderation.Reject(c.Request().Context(), admin, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
