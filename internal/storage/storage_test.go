package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRef(t *testing.T) {
	assert.NoError(t, ValidateRef("post_20240101120000_ab12cd34.png"))
	assert.Error(t, ValidateRef(""))
	assert.Error(t, ValidateRef("../etc/passwd"))
	assert.Error(t, ValidateRef("a/b.png"))
	assert.Error(t, ValidateRef(".hidden"))
}

func TestLocalFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalFileStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(ctx, "post_1.png", strings.NewReader("image-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "post_1.png", ref)

	rc, err := store.Open(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Open(ctx, ref)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, ref))

	_, err = store.Save(ctx, "../escape.png", strings.NewReader("x"), "image/png")
	assert.Error(t, err)
	_, err = store.Open(ctx, "../escape.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3FileStoreValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr string
	}{
		{"missing bucket", S3Config{AccessKey: "a", SecretKey: "s"}, "bucket"},
		{"missing access key", S3Config{Bucket: "b", SecretKey: "s"}, "access key"},
		{"missing secret key", S3Config{Bucket: "b", AccessKey: "a"}, "secret key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3FileStore(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	store, err := NewS3FileStore(ctx, S3Config{
		Bucket: "team-feed", AccessKey: "a", SecretKey: "s", Endpoint: "localhost:9000", UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "team-feed", store.bucket)

	_, err = store.Save(ctx, "../bad", strings.NewReader("x"), "image/png")
	assert.Error(t, err)
}
