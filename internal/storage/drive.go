package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"estatelist/backend/pkg/config"
	applog "estatelist/backend/pkg/log"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// DriveProvider stores files in Google Drive. Objects are made publicly
// readable with an explicit "anyone with the link" permission grant after
// the content upload; a failed grant surfaces an error even though the
// content is already uploaded.
type DriveProvider struct {
	svc *drive.Service
}

// NewDriveProvider builds the Drive client. A configured service-account
// key file takes precedence; otherwise an OAuth2 client with a stored
// refresh token is used.
func NewDriveProvider(ctx context.Context) (*DriveProvider, error) {
	var svc *drive.Service
	var err error

	if keyFile := config.Cfg.DriveServiceAccountFile; keyFile != "" {
		svc, err = drive.NewService(ctx,
			option.WithCredentialsFile(keyFile),
			option.WithScopes(drive.DriveFileScope))
		if err != nil {
			return nil, fmt.Errorf("failed to create Drive service from service account: %w", err)
		}
		applog.L.Info("Google Drive provider initialized (service account)")
		return &DriveProvider{svc: svc}, nil
	}

	if config.Cfg.DriveClientID == "" || config.Cfg.DriveClientSecret == "" || config.Cfg.DriveRefreshToken == "" {
		return nil, fmt.Errorf("Drive provider requires GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN (or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	conf := &oauth2.Config{
		ClientID:     config.Cfg.DriveClientID,
		ClientSecret: config.Cfg.DriveClientSecret,
		RedirectURL:  config.Cfg.DriveRedirectURI,
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}
	client := conf.Client(ctx, &oauth2.Token{RefreshToken: config.Cfg.DriveRefreshToken})

	svc, err = drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service from OAuth2 client: %w", err)
	}
	applog.L.Info("Google Drive provider initialized (OAuth2 refresh token)")
	return &DriveProvider{svc: svc}, nil
}

func (d *DriveProvider) Name() string { return "drive" }

func (d *DriveProvider) Store(ctx context.Context, up Upload) (AssetRef, error) {
	src, err := os.Open(up.Path)
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	meta := &drive.File{Name: objectName(up.Name)}
	if up.Folder != "" {
		meta.Parents = []string{up.Folder}
	}

	created, err := d.svc.Files.Create(meta).
		Media(src, googleapi.ContentType(up.ContentType)).
		Fields("id", "name").
		SupportsAllDrives(false).
		Context(ctx).
		Do()
	if err != nil {
		return AssetRef{}, classifyDriveError("upload", err)
	}

	// The asset is not usable until it is readable by anyone with the link,
	// so a failed grant fails the whole Store even though the content is up.
	_, err = d.svc.Permissions.Create(created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		applog.L.Error("Drive permission grant failed after upload; file may be private",
			zap.String("file_id", created.Id),
			zap.Error(err))
		return AssetRef{}, classifyDriveError("permission grant", err)
	}

	src.Close()
	removeTemp(up.Path)

	return AssetRef{
		ID:  created.Id,
		URL: "https://drive.google.com/uc?id=" + created.Id,
	}, nil
}

func (d *DriveProvider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: driveFolderMimeType,
	}
	if parent == "" {
		parent = config.Cfg.DriveRootFolderID
	}
	if parent != "" {
		meta.Parents = []string{parent}
	}

	folder, err := d.svc.Files.Create(meta).
		Fields("id", "name").
		SupportsAllDrives(false).
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyDriveError("folder creation", err)
	}
	return folder.Id, nil
}

// classifyDriveError maps a Drive API failure onto the provider error
// taxonomy: quota/permission denials are rejections, everything else
// (auth, network, 5xx) means the provider is unavailable.
func classifyDriveError(op string, err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: drive %s: %v", ErrProviderRejected, op, err)
		}
	}
	return fmt.Errorf("%w: drive %s: %v", ErrProviderUnavailable, op, err)
}
