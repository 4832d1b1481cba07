package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFileStore writes files into a single directory on disk
type LocalFileStore struct {
	dir string
}

// NewLocalFileStore creates the directory if needed
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{dir: dir}, nil
}

func (s *LocalFileStore) Save(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	if err := ValidateRef(name); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("move file into place: %w", err)
	}
	return name, nil
}

func (s *LocalFileStore) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	if err := ValidateRef(ref); err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalFileStore) Delete(_ context.Context, ref string) error {
	if err := ValidateRef(ref); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ FileStore = (*LocalFileStore)(nil)
