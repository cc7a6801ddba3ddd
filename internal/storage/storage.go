// Package storage abstracts "upload a file, get back a durable public URL"
// over interchangeable backends. Providers are constructed explicitly and
// injected into the listing workflow rather than held as package globals.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"go.uber.org/zap"
)

// Sentinel errors classifying provider failures. Callers match with
// errors.Is and decide whether to abort or continue with a partial
// asset list; nothing is retried inside this package.
var (
	// ErrProviderUnavailable covers network and authentication failures.
	ErrProviderUnavailable = errors.New("storage provider unavailable")
	// ErrProviderRejected covers quota and permission denials from the backend.
	ErrProviderRejected = errors.New("storage provider rejected the request")
	// ErrInvalidInput covers a source file that is missing or unreadable.
	ErrInvalidInput = errors.New("invalid upload input")
)

// Upload describes one file to store. Path must point at a readable local
// temporary file; it is deleted only after the remote write (and, where
// applicable, the public-read grant) succeeds.
type Upload struct {
	Path        string
	Name        string // original display name
	ContentType string
	Folder      string // optional destination folder id, from CreateFolder
}

// AssetRef is the result of a successful Store: the provider-assigned id
// and a publicly retrievable URL.
type AssetRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider is the uniform contract over the storage backends.
//
// CreateFolder is not idempotent: calling it twice with the same name
// creates two folders on backends with real folder objects. Callers
// wanting uniqueness pass a caller-generated unique name.
type Provider interface {
	Name() string
	Store(ctx context.Context, up Upload) (AssetRef, error)
	CreateFolder(ctx context.Context, name string, parent string) (string, error)
}

// New constructs the provider selected by configuration.
func New(ctx context.Context) (Provider, error) {
	providerType := config.Cfg.StorageProvider
	applog.L.Info("Initializing storage provider", zap.String("provider_type", providerType))

	switch providerType {
	case "local":
		return NewLocalProvider(config.Cfg.LocalUploadDir, config.Cfg.PublicBaseURL)
	case "drive":
		return NewDriveProvider(ctx)
	case "cloudinary":
		return NewCloudinaryProvider()
	case "gcs":
		return NewGCSProvider(ctx)
	case "s3":
		return NewS3Provider(ctx)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_PROVIDER %q", providerType)
	}
}

// objectName derives a unique object name from the original file name by
// prefixing a nanosecond timestamp. Two uploads racing with identical
// original names must not overwrite one another.
func objectName(original string) string {
	ext := filepath.Ext(original)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
}

// removeTemp deletes the local temporary copy after a confirmed remote
// write. A failed removal is logged, never surfaced: the asset is durable
// at that point and the request must not be failed over a stale temp file.
func removeTemp(path string) {
	if err := os.Remove(path); err != nil {
		applog.L.Warn("Failed to remove temp upload file",
			zap.String("path", path),
			zap.Error(err))
	}
}
