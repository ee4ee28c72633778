// Package asset provides image storage backends for campground photos.
// The store owns raw bytes only; which campground an image belongs to is
// tracked in the database as a URL plus storage key pair.
package asset

import (
	"context"
	"errors"
	"io"
)

// Asset store errors.
var (
	// ErrAssetNotFound indicates the storage key does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrUnsupportedContentType indicates the upload is not an accepted image type.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)

// StoredAsset describes an uploaded image.
type StoredAsset struct {
	// URL is the public address clients fetch the image from.
	URL string

	// StorageKey identifies the object inside the backend for later deletion.
	StorageKey string

	// SHA256 is the hex-encoded content fingerprint, computed while the
	// upload streams through the store.
	SHA256 string

	// Size is the stored content length in bytes.
	Size int64
}

// Store defines the interface for image storage backends.
// Implementations include S3-compatible object storage and the local
// filesystem for development.
type Store interface {
	// Upload stores image content and returns its public URL and storage key.
	Upload(ctx context.Context, reader io.Reader, contentType string) (*StoredAsset, error)

	// Delete removes an image by storage key. Deleting an unknown key
	// returns ErrAssetNotFound.
	Delete(ctx context.Context, storageKey string) error
}

// extensions maps accepted image content types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// extensionFor returns the file extension for a content type, or an error
// for anything that is not an accepted image type.
func extensionFor(contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return ext, nil
}
