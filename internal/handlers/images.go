package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ImageSaver stores uploaded images and removes them again
type ImageSaver interface {
	Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// saveFormImage stores the optional multipart file under field. It returns "" when no file was sent.
func saveFormImage(c echo.Context, images ImageSaver, field, prefix string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart upload")
	}
	if fh.Size == 0 {
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Cannot read uploaded file")
	}
	defer src.Close()

	ref, err := images.Save(c.Request().Context(), prefix, fh.Filename, src)
	if err != nil {
		return "", respondError(err)
	}
	return ref, nil
}
