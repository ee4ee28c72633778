package asset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/pkg/crypto"
)

// FilesystemStore implements Store on the local filesystem.
// Suitable for development and single-node deployments; the data directory
// must be served under the configured public base URL.
type FilesystemStore struct {
	dataDir string
	baseURL string
	logger  zerolog.Logger
}

// NewFilesystemStore creates a filesystem-backed asset store.
func NewFilesystemStore(dataDir, baseURL string, logger zerolog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	return &FilesystemStore{
		dataDir: dataDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "asset_fs").Logger(),
	}, nil
}

// Upload stores image content under a random key.
// Content is written to a temp file first and renamed into place so a crash
// mid-write never leaves a partial asset at its final path.
func (f *FilesystemStore) Upload(ctx context.Context, reader io.Reader, contentType string) (*StoredAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext, err := extensionFor(contentType)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	// Shard by the first two characters of the ID to keep directories small.
	key := filepath.Join(id[:2], id+ext)

	dir := filepath.Join(f.dataDir, id[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create shard directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	hashed := crypto.NewHashReader(reader)
	if _, err := io.Copy(tmp, hashed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to close asset file: %w", err)
	}

	finalPath := filepath.Join(f.dataDir, key)
	if err := os.Rename(tmpName, finalPath); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("failed to finalize asset: %w", err)
	}

	f.logger.Debug().
		Str("key", key).
		Str("sha256", hashed.SHA256()).
		Int64("bytes", hashed.Size()).
		Msg("asset stored")

	return &StoredAsset{
		URL:        f.baseURL + "/" + filepath.ToSlash(key),
		StorageKey: key,
		SHA256:     hashed.SHA256(),
		Size:       hashed.Size(),
	}, nil
}

// Delete removes an image by storage key.
func (f *FilesystemStore) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reject keys that escape the data directory.
	path := filepath.Join(f.dataDir, filepath.FromSlash(storageKey))
	if !strings.HasPrefix(path, filepath.Clean(f.dataDir)+string(os.PathSeparator)) {
		return ErrAssetNotFound
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	f.logger.Debug().Str("key", storageKey).Msg("asset deleted")
	return nil
}

// Ensure FilesystemStore implements Store.
var _ Store = (*FilesystemStore)(nil)
