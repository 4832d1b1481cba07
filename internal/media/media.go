// Package media turns uploaded images into bounded thumbnails in a FileStore.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// MaxDimension bounds both sides of a stored image
const MaxDimension = 1200

// MaxPixels caps the decoded size of an upload, read from its header
const MaxPixels = 40_000_000

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidImage    = errors.New("invalid image data")
)

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// Extension returns the lower-cased extension of filename if it is an allowed image type
func Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := contentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
	}
	return ext, nil
}

// ContentType maps an allowed extension to its MIME type
func ContentType(ext string) string {
	return contentTypes[strings.ToLower(ext)]
}

// Thumbnail scales src down to fit within bound x bound, keeping its aspect ratio.
// Images already inside the bound are returned unchanged.
func Thumbnail(src image.Image, bound int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= bound && h <= bound {
		return src
	}
	nw, nh := bound, bound
	if w >= h {
		nh = h * bound / w
	} else {
		nw = w * bound / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// Processor stores uploaded images as thumbnails
type Processor struct {
	store storage.FileStore
	now   func() time.Time
}

func NewProcessor(store storage.FileStore) *Processor {
	return &Processor{store: store, now: time.Now}
}

// NewFilename builds "<prefix>_<timestamp>_<uuid>.<ext>"
func (p *Processor) NewFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, p.now().Format("20060102_150405"), uuid.NewString(), ext)
}

// Save decodes the upload, bounds it to MaxDimension, re-encodes it in its
// source format and returns the store reference.
func (p *Processor) Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error) {
	ext, err := Extension(filename)
	if err != nil {
		return "", err
	}
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds the pixel limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	var buf bytes.Buffer
	if err := encode(&buf, Thumbnail(img, MaxDimension), ext); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return p.store.Save(ctx, p.NewFilename(prefix, ext), &buf, ContentType(ext))
}

// Delete removes a stored image
func (p *Processor) Delete(ctx context.Context, ref string) error {
	return p.store.Delete(ctx, ref)
}

func encode(w io.Writer, img image.Image, ext string) error {
	switch ext {
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	}
}
