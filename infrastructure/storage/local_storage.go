package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"task-api/domain/ports"
	"task-api/pkg/logger"
)

// LocalStorage implements StoragePort on the local filesystem. Files are served
// by the API under BaseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

type LocalStorageConfig struct {
	BasePath string // ./uploads
	BaseURL  string // http://localhost:8080/uploads
}

var _ ports.StoragePort = (*LocalStorage)(nil)

func NewLocalStorage(config LocalStorageConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: config.BasePath,
		baseURL:  strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

func (l *LocalStorage) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalStorage) UploadFile(ctx context.Context, file io.Reader, size int64, path, contentType string) (string, error) {
	key, err := cleanKey(path)
	if err != nil {
		return "", err
	}

	fullPath := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if size >= 0 && written != size {
		os.Remove(fullPath)
		return "", fmt.Errorf("short write: %d of %d bytes", written, size)
	}

	logger.DebugContext(ctx, "File stored locally", "path", key, "content_type", contentType, "size", written)
	return l.GetFileURL(key), nil
}

func (l *LocalStorage) DeleteFile(ctx context.Context, path string) error {
	key, err := cleanKey(path)
	if err != nil {
		return err
	}

	if err := os.Remove(l.fullPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.DebugContext(ctx, "File deleted locally", "path", key)
	return nil
}

func (l *LocalStorage) DeleteFolder(ctx context.Context, prefix string) error {
	key, err := cleanPrefix(prefix)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(l.fullPath(key)); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	logger.DebugContext(ctx, "Folder deleted locally", "prefix", key)
	return nil
}

func (l *LocalStorage) GetFileURL(path string) string {
	return l.baseURL + "/" + strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
}

func (l *LocalStorage) PathFromURL(url string) (string, bool) {
	return trimBase(l.baseURL, url)
}

func (l *LocalStorage) GetProviderName() string {
	return "local"
}

// BasePath is the directory the API serves uploads from.
func (l *LocalStorage) BasePath() string {
	return l.basePath
}
