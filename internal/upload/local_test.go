package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/config"
	apperrors "realtyhub/pkg/errors"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func newStore(t *testing.T, maxBytes int64) (*LocalStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(&config.UploadConfig{Dir: dir, PublicPath: "/uploads/", MaxBytes: maxBytes, MaxFiles: 10})
	require.NoError(t, err)
	return store, dir
}

func TestSaveStoresImage(t *testing.T) {
	store, dir := newStore(t, 1024)

	file, err := store.Save(fileHeader(t, "house.txt", pngBytes))
	require.NoError(t, err)

	assert.Equal(t, "image/png", file.ContentType)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(file.Filename, ".png"))
	assert.Equal(t, "house.txt", file.OriginalName)
	assert.Equal(t, int64(len(pngBytes)), file.Size)

	stored, err := os.ReadFile(filepath.Join(dir, file.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSaveRejectsNonImages(t *testing.T) {
	store, dir := newStore(t, 1024)

	_, err := store.Save(fileHeader(t, "house.png", []byte("<html><script>alert(1)</script></html>")))
	assert.Equal(t, apperrors.ErrCodeUploadRejected, apperrors.CodeOf(err))

	_, err = store.Save(fileHeader(t, "logo.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)))
	assert.Equal(t, apperrors.ErrCodeUploadRejected, apperrors.CodeOf(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveRejectsOversizedFiles(t *testing.T) {
	store, _ := newStore(t, 16)

	_, err := store.Save(fileHeader(t, "big.png", pngBytes))
	assert.Equal(t, apperrors.ErrCodeUploadRejected, apperrors.CodeOf(err))
}

func TestHandlerServesFiles(t *testing.T) {
	store, _ := newStore(t, 1024)
	file, err := store.Save(fileHeader(t, "house.png", pngBytes))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, file.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	store, dir := newStore(t, 1024)
	file, err := store.Save(fileHeader(t, "house.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, store.Remove(file.Filename))
	_, err = os.Stat(filepath.Join(dir, file.Filename))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(file.Filename))
	assert.NoError(t, store.Remove("../"+file.Filename))
}
