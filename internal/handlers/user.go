package handlers

import (
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler handles profile requests
type UserHandler struct {
	identity *services.IdentityService
	content  *services.ContentService
	images   ImageSaver
	log      *zap.Logger
}

func NewUserHandler(identity *services.IdentityService, content *services.ContentService, images ImageSaver, log *zap.Logger) *UserHandler {
	return &UserHandler{identity: identity, content: content, images: images, log: log}
}

// RegisterProfileRoutes registers routes on the caller's own profile
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.PUT("/profile/password", h.ChangePassword)
	g.POST("/profile/image", h.UploadProfileImage)
}

// RegisterUserRoutes registers routes that show other members
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	updated, err := h.identity.UpdateProfile(c.Request().Context(), user, req)
	if err != nil {
		return respondError(err)
	}
	return success(c, http.StatusOK, updated)
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.identity.ChangePassword(c.Request().Context(), user, req); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password changed"})
}

// UploadProfileImage replaces the caller's profile image with the multipart "image" file
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ref, err := saveFormImage(c, h.images, "image", "profile")
	if err != nil {
		return err
	}
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "An image file is required")
	}

	ctx := c.Request().Context()
	updated, err := h.identity.SetProfileImage(ctx, user, ref)
	if err != nil {
		if derr := h.images.Delete(ctx, ref); derr != nil {
			h.log.Warn("failed to remove orphaned upload", zap.String("ref", ref), zap.Error(derr))
		}
		return respondError(err)
	}
	return success(c, http.StatusOK, updated)
}

// GetUser shows a member's public profile with one page of their posts
func (h *UserHandler) GetUser(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.identity.GetUser(ctx, id)
	if err != nil {
		return respondError(err)
	}
	posts, err := h.content.UserPosts(ctx, viewer, user.ID, queryPage(c))
	if err != nil {
		return respondError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":            user.ID,
			"username":      user.Username,
			"display_name":  user.DisplayName,
			"bio":           user.Bio,
			"profile_image": user.ProfileImage,
			"created_at":    user.CreatedAt,
		},
		"posts": posts,
	})
}
