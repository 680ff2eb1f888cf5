package ports

import (
	"context"
	"io"
)

// StoragePort keeps user uploads (avatars) in local disk or S3-compatible storage.
// Paths are slash separated keys such as "avatars/<user>/<file>.png".
type StoragePort interface {
	// UploadFile stores size bytes from file and returns the public URL.
	UploadFile(ctx context.Context, file io.Reader, size int64, path, contentType string) (string, error)

	DeleteFile(ctx context.Context, path string) error

	// DeleteFolder removes every object under prefix.
	DeleteFolder(ctx context.Context, prefix string) error

	GetFileURL(path string) string

	// PathFromURL is the inverse of GetFileURL; ok is false for foreign URLs.
	PathFromURL(url string) (path string, ok bool)

	GetProviderName() string
}
