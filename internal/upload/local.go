// Package upload stores uploaded images on local disk and serves them back.
package upload

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"realtyhub/internal/config"
	"realtyhub/internal/metrics"
	apperrors "realtyhub/pkg/errors"
)

// Image types accepted by Save. SVG is excluded since it can carry script.
var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/avif"}

// File describes a stored upload
type File struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
}

// LocalStore writes uploads into a directory served under a public path
type LocalStore struct {
	dir        string
	publicPath string
	maxBytes   int64
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(cfg *config.UploadConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:        cfg.Dir,
		publicPath: "/" + strings.Trim(cfg.PublicPath, "/"),
		maxBytes:   cfg.MaxBytes,
	}, nil
}

// PublicPath is the URL prefix uploads are served under
func (s *LocalStore) PublicPath() string {
	return s.publicPath
}

// Save stores one uploaded image under a random name. The content type is
// sniffed from the bytes; the client supplied type is ignored.
func (s *LocalStore) Save(header *multipart.FileHeader) (*File, error) {
	file, err := s.save(header)
	metrics.RecordUpload(err == nil)
	if err != nil {
		log.Printf("[UPLOAD] Rejected %q: %v", header.Filename, err)
		return nil, err
	}
	log.Printf("[UPLOAD] Stored %q as %s (%d bytes)", header.Filename, file.Filename, file.Size)
	return file, nil
}

func (s *LocalStore) save(header *multipart.FileHeader) (*File, error) {
	if header.Size > s.maxBytes {
		return nil, apperrors.UploadRejected(fmt.Sprintf("File exceeds the %d byte limit", s.maxBytes))
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeBadRequest, "Failed to read upload", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeBadRequest, "Failed to read upload", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, apperrors.UploadRejected("Only image files are allowed")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, apperrors.Internal("failed to rewind upload", err)
	}

	name := uuid.New().String() + mtype.Extension()
	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperrors.Internal("failed to create upload file", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, apperrors.Internal("failed to write upload file", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return nil, apperrors.UploadRejected(fmt.Sprintf("File exceeds the %d byte limit", s.maxBytes))
	}

	return &File{
		URL:          s.publicPath + "/" + name,
		Filename:     name,
		OriginalName: header.Filename,
		ContentType:  mtype.String(),
		Size:         written,
	}, nil
}

// Remove deletes a stored upload by its generated name
func (s *LocalStore) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// Handler serves stored files. Directory listings are not exposed.
func (s *LocalStore) Handler() http.Handler {
	files := http.StripPrefix(s.publicPath+"/", http.FileServer(http.Dir(s.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
