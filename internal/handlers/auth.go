package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/team-feed/backend/internal/auth"
	"github.com/anonto42/team-feed/backend/internal/middleware"
	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// IDTokenVerifier checks Firebase ID tokens. *firebaseauth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	identity  *services.IdentityService
	tokens    *auth.TokenManager
	blacklist auth.TokenBlacklist
	firebase  IDTokenVerifier // optional
	log       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil.
func NewAuthHandler(identity *services.IdentityService, tokens *auth.TokenManager, blacklist auth.TokenBlacklist, firebase IDTokenVerifier, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		identity:  identity,
		tokens:    tokens,
		blacklist: blacklist,
		firebase:  firebase,
		log:       log,
	}
}

// RegisterAuthRoutes registers authentication-related routes. Logout runs behind requireAuth.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, requireAuth)
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *models.User `json:"user"`
}

type firebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// Signup registers an account that waits for administrator approval
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	user, err := h.identity.Register(c.Request().Context(), req)
	if err != nil {
		return respondError(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Signup complete. You can log in once an administrator approves your account.",
		"data":    user,
	})
}

// Login exchanges a username and password for a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.identity.Authenticate(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrBadCredential) {
		// unknown usernames and wrong passwords look the same to the caller
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return respondError(err)
	}
	return h.issue(c, user)
}

// FirebaseLogin accepts a Firebase ID token for an existing account with the same email
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebase == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Firebase login is not enabled")
	}

	var req firebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		h.log.Debug("firebase token rejected", zap.Error(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
	}
	email, _ := token.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase token carries no email")
	}

	user, err := h.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return respondError(err)
	}
	if err := services.RequireApproved(user); err != nil {
		return respondError(err)
	}
	return h.issue(c, user)
}

// Logout revokes the current token until it would have expired anyway
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if err := h.blacklist.AddToBlacklist(c.Request().Context(), claims.ID, h.tokens.Remaining(claims)); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) issue(c echo.Context, user *models.User) error {
	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	h.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return success(c, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
		User:      user,
	})
}
