package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/team-feed/backend/internal/auth"
	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// UserLoader resolves the account behind a token
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// JWTAuthMiddleware checks for a valid, unrevoked bearer token and loads the
// current user row on every request, so approval changes apply immediately.
func JWTAuthMiddleware(tokens *auth.TokenManager, blacklist auth.TokenBlacklist, users UserLoader, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := c.Request().Context()
			revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
			if err != nil {
				log.Error("token blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Session store unavailable")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
			}

			user, err := users.GetUser(ctx, claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Account no longer exists")
			}

			c.Set(userKey, user)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// CurrentUser returns the user loaded by JWTAuthMiddleware, or nil
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}

// CurrentClaims returns the parsed token claims, or nil
func CurrentClaims(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get(claimsKey).(*models.JwtCustomClaims)
	return claims
}
