package handlers

import (
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content *services.ContentService
	images  ImageSaver
	log     *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *services.ContentService, images ImageSaver, log *zap.Logger) *PostHandler {
	return &PostHandler{content: content, images: images, log: log}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost accepts a multipart form (content, category, optional image) or a JSON body
func (h *PostHandler) CreatePost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	ref, err := saveFormImage(c, h.images, "image", "post")
	if err != nil {
		return err
	}
	var imageRef *string
	if ref != "" {
		imageRef = &ref
	}

	ctx := c.Request().Context()
	post, err := h.content.CreatePost(ctx, user, req, imageRef)
	if err != nil {
		if ref != "" {
			if derr := h.images.Delete(ctx, ref); derr != nil {
				h.log.Warn("failed to remove orphaned upload", zap.String("ref", ref), zap.Error(derr))
			}
		}
		return respondError(err)
	}
	return success(c, http.StatusCreated, post)
}

// GetPost returns a post with its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.content.GetPost(c.Request().Context(), user, id)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, post)
}

// DeletePost removes a post. Only its author or an administrator may do this.
func (h *PostHandler) DeletePost(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.DeletePost(c.Request().Context(), user, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
