package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a multipart.FileHeader for testing
func createTestFileHeader(t *testing.T, filename string, size int64, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["image"], 1)
	fileHeader := form.File["image"][0]
	// Override size for testing purposes
	fileHeader.Size = size
	return fileHeader
}

func TestValidateImageFile_AcceptedFormats(t *testing.T) {
	for _, name := range []string{"tile.png", "tile.jpg", "tile.jpeg", "tile.webp", "TILE.PNG"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(t, name, int64(len(content)), content)
			assert.NoError(t, ValidateImageFile(fileHeader))
		})
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader(t, "large.png", 11*1024*1024, content)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	for _, name := range []string{"tile.gif", "tile.pdf", "tilefile"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake content")
			fileHeader := createTestFileHeader(t, name, int64(len(content)), content)

			err := ValidateImageFile(fileHeader)
			require.Error(t, err)

			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
			assert.Contains(t, fileErr.Message, ".jpeg, .jpg, .png, .webp")
		})
	}
}

func TestValidateImageFile_NoFile(t *testing.T) {
	err := ValidateImageFile(nil)
	require.Error(t, err)
	assert.Equal(t, "NO_FILE", err.(*FileUploadError).Code)
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/png", ImageContentType("a.PNG"))
	assert.Equal(t, "image/jpeg", ImageContentType("a.jpeg"))
	assert.Equal(t, "image/webp", ImageContentType("dir/a.webp"))
	assert.Empty(t, ImageContentType("a.gif"))
}

func TestSaveAndRemoveUploadedFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("png bytes")
	fileHeader := createTestFileHeader(t, "board.png", int64(len(content)), content)

	name, err := SaveUploadedFile(fileHeader, dir)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(name))
	assert.NotEqual(t, "board.png", name)

	saved, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, content, saved)

	require.NoError(t, RemoveUploadedFile(name, dir))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, RemoveUploadedFile(name, dir))
}

func TestGetImageURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/abc.png", GetImageURL("abc.png"))
	assert.Empty(t, GetImageURL(""))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
