package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalProvider stores files on local disk under a base directory that the
// router serves statically at /uploads. The "folder" id is a relative
// subdirectory path.
type LocalProvider struct {
	baseDir string
	baseURL string
}

func NewLocalProvider(baseDir, baseURL string) (*LocalProvider, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage base directory not configured")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %q: %w", baseDir, err)
	}
	return &LocalProvider{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (l *LocalProvider) Name() string { return "local" }

func (l *LocalProvider) Store(ctx context.Context, up Upload) (AssetRef, error) {
	src, err := os.Open(up.Path)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	name := objectName(up.Name)
	relPath := path.Join(up.Folder, name)
	destPath := filepath.Join(l.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return AssetRef{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return AssetRef{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	src.Close()
	removeTemp(up.Path)

	return AssetRef{
		ID:  relPath,
		URL: l.baseURL + "/uploads/" + relPath,
	}, nil
}

func (l *LocalProvider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	rel := path.Join(parent, name)
	if err := os.MkdirAll(filepath.Join(l.baseDir, filepath.FromSlash(rel)), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return rel, nil
}
