package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"discovery-api/config"
)

var (
	// ErrPresignUnsupported is returned by backends that can only stream.
	ErrPresignUnsupported = errors.New("storage backend does not support presigned URLs")
	// ErrFileNotFound is returned by Open when no object is stored under the key.
	ErrFileNotFound = errors.New("stored file not found")
)

// FileStorage stores deliverable uploads under opaque keys.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewFileStorage picks the backend named by STORAGE_DRIVER.
func NewFileStorage(ctx context.Context, s config.Settings) (FileStorage, error) {
	switch s.StorageDriver {
	case "", "local":
		return NewLocalStorage(s.UploadPath)
	case "s3":
		return NewS3Storage(ctx, S3Options{
			Endpoint:  s.S3Endpoint,
			Region:    s.S3Region,
			Bucket:    s.S3Bucket,
			AccessKey: s.S3AccessKey,
			SecretKey: s.S3SecretKey,
			PathStyle: s.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", s.StorageDriver)
	}
}

// DeliverableFileKey builds the storage key of an uploaded deliverable file.
func DeliverableFileKey(deliverableID, filename string) string {
	return path.Join("deliverables", deliverableID, filename)
}

// LocalStorage keeps files on disk below Root.
type LocalStorage struct {
	Root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{Root: root}, nil
}

// resolve maps key below Root; ".." segments cannot escape it.
func (l *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (l *LocalStorage) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

func (l *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the file; a missing file is not an error.
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	p, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *LocalStorage) PresignedURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}
