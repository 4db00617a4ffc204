package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edustore/edustore-backend/pkg/logger"
)

// ErrTooLarge is returned before anything is written when the upload
// exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds the maximum upload size")

// StoredFile describes a completed upload.
type StoredFile struct {
	// Filename is the server-assigned storage name, unique per upload.
	Filename string
	// OriginalName is the client-supplied name, kept for display only.
	OriginalName string
}

// LocalStorage writes uploads to <root>/<category>/ on the local disk.
// Files are served statically from the same tree, so disk stays the
// authoritative copy; an optional MinIO mirror receives a best-effort
// duplicate of every write.
type LocalStorage struct {
	root    string
	maxSize int64
	mirror  *MinIOStorage
}

func NewLocalStorage(root string, maxSize int64) *LocalStorage {
	return &LocalStorage{root: root, maxSize: maxSize}
}

// WithMirror attaches an object-store mirror. Mirror failures are logged,
// never surfaced to the uploader.
func (s *LocalStorage) WithMirror(m *MinIOStorage) *LocalStorage {
	s.mirror = m
	return s
}

// MaxSize returns the configured upload size limit in bytes.
func (s *LocalStorage) MaxSize() int64 { return s.maxSize }

// Save stores the uploaded file under the category subdirectory with a
// collision-resistant name, preserving the original extension. Directory
// creation is idempotent.
func (s *LocalStorage) Save(ctx context.Context, category string, fh *multipart.FileHeader) (StoredFile, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return StoredFile{}, ErrTooLarge
	}

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return StoredFile{}, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return StoredFile{}, fmt.Errorf("close upload file: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirrorObject(ctx, category, name, dst.Name(), fh); err != nil {
			logger.Warnf("upload mirror failed for %s/%s: %v", category, name, err)
		}
	}

	return StoredFile{Filename: name, OriginalName: fh.Filename}, nil
}

// Remove deletes a stored file. Missing files are not an error: the catalog
// entry may never have had one.
func (s *LocalStorage) Remove(ctx context.Context, category, filename string) error {
	if filename == "" {
		return nil
	}
	path := filepath.Join(s.root, category, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, category+"/"+filepath.Base(filename)); err != nil {
			logger.Warnf("mirror remove failed for %s/%s: %v", category, filename, err)
		}
	}
	return nil
}

func (s *LocalStorage) mirrorObject(ctx context.Context, category, name, path string, fh *multipart.FileHeader) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	contentType := fh.Header.Get("Content-Type")
	return s.mirror.Upload(ctx, category+"/"+name, f, fh.Size, contentType)
}
