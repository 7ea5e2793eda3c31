package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// BlobStore keeps item images outside the catalog store. Put returns the
// public URL that the catalog records as the item's image reference.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes key; a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a unique key for an image of itemID, keeping the
// extension of the uploaded filename.
func ObjectKey(itemID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("items/%s/%s%s", itemID, uuid.NewString(), ext)
}

// ContentTypeFor guesses an image content type from a key's extension.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}

// cleanKey rejects keys that would escape the storage root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
