// Package storage keeps uploaded images behind a single FileStore interface
// with local disk, S3-compatible and MongoDB GridFS backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
)

// ErrNotFound is returned when a reference points at nothing
var ErrNotFound = errors.New("file not found")

// FileStore saves, serves and removes opaque file references
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

var refPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)

// ValidateRef rejects references that could escape the store, such as paths
func ValidateRef(ref string) error {
	if !refPattern.MatchString(ref) {
		return fmt.Errorf("invalid file reference %q", ref)
	}
	return nil
}
