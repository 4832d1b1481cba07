package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/team-feed/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring w x h grey pixels
// with no image data behind it.
func pngHeader(w, h uint32) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], w)
	binary.BigEndian.PutUint32(data[4:8], h)
	data[8] = 8 // bit depth

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	chunk := append([]byte("IHDR"), data...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestExtension(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif"} {
		_, err := Extension(name)
		assert.NoError(t, err, name)
	}
	ext, _ := Extension("photo.JPG")
	assert.Equal(t, "jpg", ext)
	assert.Equal(t, "image/jpeg", ContentType(ext))

	for _, name := range []string{"a.svg", "noext", "x.png.exe", ""} {
		_, err := Extension(name)
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestThumbnail(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 2400, 1200))
	got := Thumbnail(wide, MaxDimension).Bounds()
	assert.Equal(t, 1200, got.Dx())
	assert.Equal(t, 600, got.Dy())

	tall := image.NewRGBA(image.Rect(0, 0, 300, 3000))
	got = Thumbnail(tall, MaxDimension).Bounds()
	assert.Equal(t, 120, got.Dx())
	assert.Equal(t, 1200, got.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 40, 30))
	assert.Same(t, small, Thumbnail(small, MaxDimension))
}

func TestProcessorSave(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	p := NewProcessor(store)
	p.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

	ref, err := p.Save(ctx, "post", "holiday.PNG", bytes.NewReader(pngBytes(t, 1600, 800)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "post_20240301_093000_"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	rc, err := store.Open(ctx, ref)
	require.NoError(t, err)
	defer rc.Close()
	cfg, err := png.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 600, cfg.Height)

	require.NoError(t, p.Delete(ctx, ref))
}

func TestProcessorSaveRejects(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	p := NewProcessor(store)

	_, err = p.Save(ctx, "post", "notes.txt", strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = p.Save(ctx, "post", "broken.png", strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestProcessorSaveRejectsOversizedImage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := storage.NewLocalFileStore(dir)
	require.NoError(t, err)
	p := NewProcessor(store)

	// a few dozen bytes that would decode to 256 million pixels
	bomb := pngHeader(16000, 16000)
	cfg, err := png.DecodeConfig(bytes.NewReader(bomb))
	require.NoError(t, err)
	assert.Equal(t, 16000, cfg.Width)

	_, err = p.Save(ctx, "post", "bomb.png", bytes.NewReader(bomb))
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "pixel limit")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
