package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	appconfig "estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// S3Provider stores files in Amazon S3 with a public-read canned ACL, so
// the virtual-hosted object URL is directly retrievable. The "folder" id
// is a key prefix.
type S3Provider struct {
	uploader   *manager.Uploader
	bucketName string
	region     string
}

func NewS3Provider(ctx context.Context) (*S3Provider, error) {
	bucket := appconfig.Cfg.AWSS3Bucket
	region := appconfig.Cfg.AWSRegion
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("S3 provider requires AWS_S3_BUCKET and AWS_REGION")
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for S3: %w", err)
	}

	applog.L.Info("Amazon S3 provider initialized",
		zap.String("bucket", bucket),
		zap.String("region", region))

	return &S3Provider{
		uploader:   manager.NewUploader(s3.NewFromConfig(sdkConfig)),
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *S3Provider) Name() string { return "s3" }

func (s *S3Provider) Store(ctx context.Context, up Upload) (AssetRef, error) {
	src, err := os.Open(up.Path)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	key := path.Join(up.Folder, objectName(up.Name))

	// The upload manager handles multipart uploads for larger files.
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(up.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return AssetRef{}, classifyS3Error("upload", err)
	}

	src.Close()
	removeTemp(up.Path)

	publicURL := out.Location
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
	}

	return AssetRef{ID: key, URL: publicURL}, nil
}

// CreateFolder returns the key prefix to upload under. S3 has no real
// folders, so no API call is made.
func (s *S3Provider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	return path.Join(parent, name), nil
}

func classifyS3Error(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "QuotaExceeded", "SlowDown":
			return fmt.Errorf("%w: s3 %s: %v", ErrProviderRejected, op, err)
		}
	}
	return fmt.Errorf("%w: s3 %s: %v", ErrProviderUnavailable, op, err)
}
