// Package storage defines where compiled PDFs and other binary artifacts
// live.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when a key has no object.
var ErrNotFound = errors.New("object not found")

// ObjectStore saves and retrieves binary objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// PDFKey is the storage key of a resume's compiled PDF.
func PDFKey(resumeID string) string {
	return path.Join("resumes", resumeID, "resume.pdf")
}

// CleanKey normalises a slash-separated key and rejects keys that escape
// the store root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("invalid storage key: empty")
	}
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}
