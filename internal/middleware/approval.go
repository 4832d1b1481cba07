package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RequireApproved lets through approved members and administrators
func RequireApproved() echo.MiddlewareFunc {
	return gate(services.RequireApproved)
}

// RequireAdmin lets through administrators only
func RequireAdmin() echo.MiddlewareFunc {
	return gate(services.RequireAdmin)
}

func gate(check func(*models.User) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if err := check(user); err != nil {
				var se *services.Error
				if errors.As(err, &se) {
					return echo.NewHTTPError(http.StatusForbidden, se.Message)
				}
				return echo.NewHTTPError(http.StatusForbidden, err.Error())
			}
			return next(c)
		}
	}
}
