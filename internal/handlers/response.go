package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/team-feed/backend/internal/media"
	"github.com/anonto42/team-feed/backend/internal/middleware"
	"github.com/anonto42/team-feed/backend/internal/models"
	"github.com/anonto42/team-feed/backend/internal/services"
	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

var statusByCode = map[services.Code]int{
	services.CodeValidationFailed:  http.StatusBadRequest,
	services.CodeInvalidTarget:     http.StatusBadRequest,
	services.CodeBadCredential:     http.StatusUnauthorized,
	services.CodeNotApproved:       http.StatusForbidden,
	services.CodeForbidden:         http.StatusForbidden,
	services.CodeNotFound:          http.StatusNotFound,
	services.CodeDuplicateUsername: http.StatusConflict,
	services.CodeDuplicateEmail:    http.StatusConflict,
}

// respondError turns a service or upload failure into an HTTP error.
// Anything unrecognised is a 500 whose cause stays internal.
func respondError(err error) error {
	if status, ok := statusByCode[services.CodeOf(err)]; ok {
		return echo.NewHTTPError(status, err.Error())
	}
	switch {
	case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrInvalidImage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{
		"success": true,
		"data":    data,
	})
}

func paged[T any](c echo.Context, page *services.Page[T]) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    page.Items,
		"meta": echo.Map{
			"currentPage":     page.Page,
			"totalPages":      page.Pages,
			"totalItems":      page.Total,
			"itemsPerPage":    page.PerPage,
			"hasNextPage":     page.HasNext,
			"hasPreviousPage": page.HasPrev,
		},
	})
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func queryPage(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

func currentUser(c echo.Context) (*models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return user, nil
}
