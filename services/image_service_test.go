package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yunshui/materials-api/utils"
)

func TestS3ImageService(t *testing.T) {
	ctx := context.Background()
	s3 := NewMockS3Service()
	images := NewS3ImageService(s3)

	key, err := images.UploadImage(ctx, imageHeader(t, "door.JPG", []byte("jpeg bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "materials/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, s3.FileExists(key))

	url, err := images.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	url, err = images.GetImageURL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, url)

	_, err = images.GetImageURL(ctx, "materials/missing.png")
	assert.Error(t, err)

	require.NoError(t, images.DeleteImage(ctx, key))
	assert.Empty(t, s3.Keys())

	_, err = images.UploadImage(ctx, imageHeader(t, "notes.txt", []byte("text")))
	var uploadErr *utils.FileUploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	assert.Empty(t, s3.Keys())
}

func TestLocalImageService(t *testing.T) {
	ctx := context.Background()
	images := NewLocalImageService(filepath.Join(t.TempDir(), "uploads"))

	key, err := images.UploadImage(ctx, imageHeader(t, "panel.webp", []byte("webp bytes")))
	require.NoError(t, err)
	assert.Equal(t, ".webp", filepath.Ext(key))

	stored, err := os.ReadFile(filepath.Join(images.Dir(), key))
	require.NoError(t, err)
	assert.Equal(t, "webp bytes", string(stored))

	url, err := images.GetImageURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/uploads/"+key, url)

	require.NoError(t, images.DeleteImage(ctx, key))
	_, err = os.Stat(filepath.Join(images.Dir(), key))
	assert.True(t, os.IsNotExist(err))
}
