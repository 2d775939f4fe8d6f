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
)

// createFile opens upload destinations; tests replace it.
var createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) }

// LocalStorage writes uploads under baseDir and serves them from baseURL.
type LocalStorage struct {
	baseDir string
	baseURL string
	maxSize int64
}

func NewLocal(baseDir, baseURL string, maxSize int64) *LocalStorage {
	return &LocalStorage{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
	}
}

func (s *LocalStorage) Dir() string { return s.baseDir }

func (s *LocalStorage) Save(_ context.Context, prefix string, fh *multipart.FileHeader, allowed map[string]bool) (string, error) {
	up, err := open(fh, prefix, allowed, s.maxSize)
	if err != nil {
		return "", err
	}
	defer up.file.Close()

	absPath := filepath.Join(s.baseDir, filepath.FromSlash(up.key))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := createFile(absPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, up.file); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("close file: %w", err)
	}

	return s.baseURL + "/" + up.key, nil
}

func (s *LocalStorage) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
