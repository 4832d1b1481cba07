package handlers

import (
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	content *services.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content *services.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	comment, err := h.content.CreateComment(c.Request().Context(), user, postID, req)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusCreated, comment)
}

// DeleteComment deletes a comment. Only its author or an administrator may do this.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.DeleteComment(c.Request().Context(), user, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
