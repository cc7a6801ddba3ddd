package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryProvider stores files in Cloudinary. Assets are delivered
// through Cloudinary's CDN with the account's default ACL, so no separate
// permission grant is needed. The "folder" id is a Cloudinary folder path.
type CloudinaryProvider struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryProvider() (*CloudinaryProvider, error) {
	if config.Cfg.CloudinaryURL == "" {
		return nil, fmt.Errorf("CLOUDINARY_URL not configured")
	}
	cld, err := cloudinary.NewFromURL(config.Cfg.CloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudinary client: %w", err)
	}
	applog.L.Info("Cloudinary provider initialized")
	return &CloudinaryProvider{cld: cld}, nil
}

func (c *CloudinaryProvider) Name() string { return "cloudinary" }

func (c *CloudinaryProvider) Store(ctx context.Context, up Upload) (AssetRef, error) {
	if _, err := os.Stat(up.Path); err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	name := objectName(up.Name)
	publicID := strings.TrimSuffix(name, path.Ext(name))

	resp, err := c.cld.Upload.Upload(ctx, up.Path, uploader.UploadParams{
		PublicID: publicID,
		Folder:   up.Folder,
	})
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: cloudinary upload: %v", ErrProviderUnavailable, err)
	}
	// The SDK reports API-level denials (quota, invalid preset) in the
	// response body with a 200 transport status.
	if resp.Error.Message != "" {
		return AssetRef{}, fmt.Errorf("%w: cloudinary upload: %s", ErrProviderRejected, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return AssetRef{}, fmt.Errorf("%w: cloudinary upload returned no URL", ErrProviderUnavailable)
	}

	removeTemp(up.Path)

	return AssetRef{
		ID:  resp.PublicID,
		URL: resp.SecureURL,
	}, nil
}

// CreateFolder returns the folder path to be used as an upload prefix.
// Cloudinary materializes folders on first upload, so no API call is made.
func (c *CloudinaryProvider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	base := parent
	if base == "" {
		base = config.Cfg.CloudinaryFolder
	}
	return path.Join(base, name), nil
}
