package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath = errors.New("path escapes the storage root")
	ErrNotFound    = errors.New("file not found")
)

// Driver stores blobs by slash separated path.
type Driver interface {
	Put(ctx context.Context, filePath string, payload io.Reader) error
	Get(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
	// List returns the sorted paths of every file below directory.
	List(ctx context.Context, directory string) ([]string, error)
	IsReady(ctx context.Context) error
}

// cleanPath normalises filePath relative to a storage root. "." is the root
// itself.
func cleanPath(filePath string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(filePath))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}

	return cleaned, nil
}
