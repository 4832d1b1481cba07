package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/anonto42/team-feed/backend/internal/media"
	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// UploadHandler streams stored images back to clients
type UploadHandler struct {
	store storage.FileStore
}

func NewUploadHandler(store storage.FileStore) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.GET("/uploads/:ref", h.GetUpload)
}

func (h *UploadHandler) GetUpload(c echo.Context) error {
	ref := c.Param("ref")
	rc, err := h.store.Open(c.Request().Context(), ref)
	if err != nil {
		return respondError(err)
	}
	defer rc.Close()

	contentType := media.ContentType(strings.TrimPrefix(filepath.Ext(ref), "."))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
