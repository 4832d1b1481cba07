package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSFileStore keeps files in a MongoDB GridFS bucket, keyed by filename
type GridFSFileStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSFileStore opens the "uploads" bucket in db
func NewGridFSFileStore(db *mongo.Database) (*GridFSFileStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("uploads"))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSFileStore{bucket: bucket}, nil
}

func (s *GridFSFileStore) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if err := ValidateRef(name); err != nil {
		return "", err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}
	defer stream.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("write gridfs file: %w", err)
	}
	return name, nil
}

func (s *GridFSFileStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ValidateRef(ref); err != nil {
		return nil, ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStreamByName(ref)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open download stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, nil
}

func (s *GridFSFileStore) Delete(ctx context.Context, ref string) error {
	if err := ValidateRef(ref); err != nil {
		return err
	}
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": ref})
	if err != nil {
		return fmt.Errorf("find gridfs file: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("decode gridfs file: %w", err)
		}
		if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete gridfs file: %w", err)
		}
	}
	return cursor.Err()
}

var _ FileStore = (*GridFSFileStore)(nil)
