package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"

	"estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// GCSProvider stores files in Google Cloud Storage. Each object gets an
// explicit allUsers read grant after the write so the plain storage URL is
// publicly retrievable. The "folder" id is an object-name prefix.
type GCSProvider struct {
	client     *gcs.Client
	bucketName string
}

func NewGCSProvider(ctx context.Context) (*GCSProvider, error) {
	projectID := config.Cfg.GCSProjectID
	bucketName := config.Cfg.GCSBucketName
	if projectID == "" || bucketName == "" {
		return nil, fmt.Errorf("GCS provider requires GCS_PROJECT_ID and GCS_BUCKET_NAME")
	}

	// GOOGLE_APPLICATION_CREDENTIALS is picked up by the client library.
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud Storage client: %w", err)
	}

	applog.L.Info("Google Cloud Storage provider initialized",
		zap.String("projectID", projectID),
		zap.String("bucketName", bucketName))

	return &GCSProvider{client: client, bucketName: bucketName}, nil
}

func (g *GCSProvider) Name() string { return "gcs" }

func (g *GCSProvider) Store(ctx context.Context, up Upload) (AssetRef, error) {
	src, err := os.Open(up.Path)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	name := path.Join(up.Folder, objectName(up.Name))
	obj := g.client.Bucket(g.bucketName).Object(name)

	wc := obj.NewWriter(ctx)
	wc.ContentType = up.ContentType
	if _, err := io.Copy(wc, src); err != nil {
		wc.Close()
		return AssetRef{}, classifyGCSError("write", err)
	}
	if err := wc.Close(); err != nil {
		return AssetRef{}, classifyGCSError("write", err)
	}

	// Grant public read. A failed grant fails the Store: the content is
	// uploaded but not confirmed public, which callers must see as an error.
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		applog.L.Error("GCS public-read grant failed after upload; object may be private",
			zap.String("object", name),
			zap.Error(err))
		return AssetRef{}, classifyGCSError("permission grant", err)
	}

	src.Close()
	removeTemp(up.Path)

	return AssetRef{
		ID:  name,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, name),
	}, nil
}

// CreateFolder returns the prefix to file uploads under. GCS has no real
// folders, so no API call is made.
func (g *GCSProvider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	return path.Join(parent, name), nil
}

func classifyGCSError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: gcs %s: %v", ErrProviderRejected, op, err)
		}
	}
	return fmt.Errorf("%w: gcs %s: %v", ErrProviderUnavailable, op, err)
}
