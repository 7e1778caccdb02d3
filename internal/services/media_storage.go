package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"finance-tracker/internal/config"

	"github.com/google/uuid"
)

var ErrInvalidMediaPath = errors.New("invalid media path")

// LocalMediaStorage keeps uploaded files under a root directory and serves
// them under a URL prefix
type LocalMediaStorage struct {
	root      string
	urlPrefix string
}

// NewLocalMediaStorage creates a media storage rooted at cfg.Root
func NewLocalMediaStorage(cfg config.MediaConfig) MediaStorageInterface {
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/media/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &LocalMediaStorage{
		root:      cfg.Root,
		urlPrefix: prefix,
	}
}

// Save writes src to dir under a random name that keeps the original
// extension. It returns the slash-separated path relative to the root.
func (s *LocalMediaStorage) Save(dir, originalName string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	relPath := path.Join(path.Clean("/" + dir)[1:], uuid.NewString()+ext)

	fullPath, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return relPath, nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *LocalMediaStorage) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	fullPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

func (s *LocalMediaStorage) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.urlPrefix + strings.TrimPrefix(relPath, "/")
}

// resolve maps a relative path into the root and rejects anything that
// would escape it
func (s *LocalMediaStorage) resolve(relPath string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(relPath))
	if cleaned == "/" || strings.Contains(relPath, "..") {
		return "", ErrInvalidMediaPath
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned[1:])), nil
}
