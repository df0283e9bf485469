package storage_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	sentinels "photo_studio/internal/storage"
	storage "photo_studio/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileStorage(t *testing.T) (*storage.LocalFileStorage, string) {
	t.Helper()

	tempDir := t.TempDir()

	fs, err := storage.NewLocalFileStorage(tempDir, "http://test.local/uploads/")
	require.NoError(t, err)

	return fs, tempDir
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestLocalFileStorage_Upload(t *testing.T) {
	fs, tempDir := setupFileStorage(t)
	ctx := context.Background()

	t.Run("successful upload", func(t *testing.T) {
		data := pngBytes(t, 30, 20)

		asset, err := fs.Upload(ctx, data, "galleries", "beach_1")
		require.NoError(t, err)

		assert.Equal(t, "galleries/beach_1", asset.PublicID)
		assert.Equal(t, "http://test.local/uploads/galleries/beach_1.png", asset.URL)
		assert.Equal(t, 30, asset.Width)
		assert.Equal(t, 20, asset.Height)
		assert.Equal(t, int64(len(data)), asset.Bytes)
		assert.Equal(t, "png", asset.Format)

		stored, err := os.ReadFile(filepath.Join(tempDir, "galleries", "beach_1.png"))
		require.NoError(t, err)
		assert.Equal(t, data, stored)
	})

	t.Run("path traversal stays inside base dir", func(t *testing.T) {
		_, err := fs.Upload(ctx, pngBytes(t, 1, 1), "../../etc", "evil")
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(tempDir, "etc", "evil.png"))
		assert.NoError(t, err)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := fs.Upload(ctx, []byte("plain text"), "galleries", "notes")
		assert.ErrorIs(t, err, sentinels.ErrInvalidFileType)
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := fs.Upload(ctx, pngBytes(t, 1, 1), "galleries", "cancelled")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalFileStorage_URL(t *testing.T) {
	fs, _ := setupFileStorage(t)
	ctx := context.Background()

	_, err := fs.Upload(ctx, pngBytes(t, 1, 1), "galleries", "thumb")
	require.NoError(t, err)

	u, err := fs.URL("galleries/thumb", "c_fill,w_400,h_400")
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/galleries/thumb.png", parsed.Path)
	assert.Equal(t, "c_fill,w_400,h_400", parsed.Query().Get("tr"))

	_, err = fs.URL("galleries/missing", "")
	assert.ErrorIs(t, err, sentinels.ErrFileNotFound)
}

func TestLocalFileStorage_Delete(t *testing.T) {
	fs, tempDir := setupFileStorage(t)
	ctx := context.Background()

	_, err := fs.Upload(ctx, pngBytes(t, 1, 1), "galleries", "to_delete")
	require.NoError(t, err)

	require.NoError(t, fs.Delete(ctx, "galleries/to_delete"))

	_, err = os.Stat(filepath.Join(tempDir, "galleries", "to_delete.png"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, fs.Delete(ctx, "galleries/to_delete"))
}
