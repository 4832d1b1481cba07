package handlers

import (
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the category-filtered home feed
type FeedHandler struct {
	content *services.ContentService
}

func NewFeedHandler(content *services.ContentService) *FeedHandler {
	return &FeedHandler{content: content}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns ten posts per page, newest first. ?category= narrows the feed.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	page, err := h.content.Feed(c.Request().Context(), user, services.FeedQuery{
		Category: c.QueryParam("category"),
		Page:     queryPage(c),
	})
	if err != nil {
		return respondError(err)
	}
	return paged(c, page)
}
