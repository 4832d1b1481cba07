package handlers

import (
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler toggles likes on posts and comments
type LikeHandler struct {
	reactions *services.ReactionService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(reactions *services.ReactionService) *LikeHandler {
	return &LikeHandler{reactions: reactions}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.TogglePostLike)
	g.POST("/comments/:id/like", h.ToggleCommentLike)
}

func (h *LikeHandler) TogglePostLike(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.reactions.TogglePostLike(c.Request().Context(), user, id)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, result)
}

func (h *LikeHandler) ToggleCommentLike(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.reactions.ToggleCommentLike(c.Request().Context(), user, id)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, result)
}
