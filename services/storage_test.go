package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discovery-api/config"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)
	ctx := context.Background()

	key := DeliverableFileKey("d1", "plan.pdf")
	require.NoError(t, store.Save(ctx, key, strings.NewReader("%PDF-1.7"), 8, "application/pdf"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "deliverables", "d1", "plan.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, key), "deleting a missing file is not an error")

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorageKeysStayBelowRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, ""))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)

	_, err = store.resolve("/")
	assert.Error(t, err)
}

func TestLocalStorageHasNoPresignedURLs(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.PresignedURL(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrPresignUnsupported)
}

func TestNewFileStorageRejectsUnknownDriver(t *testing.T) {
	_, err := NewFileStorage(context.Background(), config.Settings{StorageDriver: "ftp"})
	assert.Error(t, err)
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
