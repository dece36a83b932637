package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem, rooted at a
// media directory. Used for development and tests.
type LocalStorage struct {
	mediaDir string
}

// NewLocalStorage creates a filesystem storage rooted at mediaDir
func NewLocalStorage(mediaDir string) *LocalStorage {
	return &LocalStorage{mediaDir: mediaDir}
}

// fullPath resolves a storage path inside the media root, rejecting
// anything that would escape it.
func (s *LocalStorage) fullPath(path string) (string, error) {
	clean := filepath.Clean(filepath.Join(s.mediaDir, filepath.FromSlash(path)))
	if !strings.HasPrefix(clean, filepath.Clean(s.mediaDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return clean, nil
}

// Put stores the blob bytes under the media directory
func (s *LocalStorage) Put(_ context.Context, path string, content io.Reader) error {
	filePath, err := s.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		// Clean up partial file if copy fails
		os.Remove(filePath)
		return fmt.Errorf("failed to write file content: %w", err)
	}

	return nil
}

// Get returns a reader for the blob content
func (s *LocalStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	filePath, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the blob. A file that is already gone is success.
func (s *LocalStorage) Delete(_ context.Context, path string) error {
	filePath, err := s.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil // already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
