// Package listing implements the property persistence workflow: decode and
// validate the form, upload the attached files through the configured
// storage provider, and persist the row.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"estatelist/backend/internal/models"
	"estatelist/backend/internal/storage"
	applog "estatelist/backend/pkg/log"
	"estatelist/backend/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound marks an unknown property id. Handlers map it to 404.
var ErrNotFound = errors.New("property not found")

// UploadWarning reports one file that could not be stored. The request
// still succeeds with the remaining files (continue-on-error), so the
// caller's data entry survives a single bad upload.
type UploadWarning struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// Service orchestrates property persistence. Both dependencies are
// injected so tests can substitute doubles.
type Service struct {
	db       *gorm.DB
	provider storage.Provider
}

func NewService(db *gorm.DB, provider storage.Provider) *Service {
	return &Service{db: db, provider: provider}
}

// List returns all listed properties (status Buy or Rent).
func (s *Service) List(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	err := s.db.WithContext(ctx).
		Where("status = ? OR status = ?", models.StatusBuy, models.StatusRent).
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

// Get fetches one property by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var prop models.Property
	err := s.db.WithContext(ctx).First(&prop, "property_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch property: %w", err)
	}
	return &prop, nil
}

// Create validates the form, uploads the attached files and inserts the
// row. Upload failures do not abort the request; they come back as
// warnings and the property is created with the files that succeeded.
func (s *Service) Create(ctx context.Context, form Form, files []*multipart.FileHeader, userID uuid.UUID) (*models.Property, []UploadWarning, error) {
	urls, warnings, err := s.uploadAll(ctx, form.Name, files)
	if err != nil {
		return nil, nil, err
	}

	prop := models.Property{
		Name:               form.Name,
		Price:              form.Price,
		Location:           form.Location,
		Type:               form.Type,
		Status:             form.Status,
		Description:        form.Description,
		ContactInfo:        form.ContactInfo,
		ConstructionStatus: form.ConstructionStatus,
		Ownership:          form.Ownership,
		Bedrooms:           form.Bedrooms,
		Bathrooms:          form.Bathrooms,
		Floors:             form.Floors,
		Parking:            form.Parking,
		BuildingArea:       form.BuildingArea,
		LandArea:           form.LandArea,
		SwimmingPool:       form.SwimmingPool,
		Furnished:          form.Furnished,
		IsFeatured:         form.IsFeatured,
		Images:             urls,
		UserID:             userID,
	}

	if err := s.db.WithContext(ctx).Create(&prop).Error; err != nil {
		// The remote copies are not compensated; list them so operators can
		// reconcile out of band.
		if len(urls) > 0 {
			applog.L.Error("Property insert failed after uploads; orphaned remote assets",
				zap.Strings("asset_urls", urls),
				zap.Error(err))
		}
		return nil, nil, fmt.Errorf("failed to insert property: %w", err)
	}

	return &prop, warnings, nil
}

// Update replaces the row with the submitted form (full-row semantics).
// The net image list is (previous minus removed) plus newly uploaded
// files, kept-old images first in their original order.
func (s *Service) Update(ctx context.Context, id uuid.UUID, form Form, files []*multipart.FileHeader) (*models.Property, []UploadWarning, error) {
	prop, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	urls, warnings, err := s.uploadAll(ctx, form.Name, files)
	if err != nil {
		return nil, nil, err
	}

	prop.Name = form.Name
	prop.Price = form.Price
	prop.Location = form.Location
	prop.Type = form.Type
	prop.Status = form.Status
	prop.Description = form.Description
	prop.ContactInfo = form.ContactInfo
	prop.ConstructionStatus = form.ConstructionStatus
	prop.Ownership = form.Ownership
	prop.Bedrooms = form.Bedrooms
	prop.Bathrooms = form.Bathrooms
	prop.Floors = form.Floors
	prop.Parking = form.Parking
	prop.BuildingArea = form.BuildingArea
	prop.LandArea = form.LandArea
	prop.SwimmingPool = form.SwimmingPool
	prop.Furnished = form.Furnished
	prop.IsFeatured = form.IsFeatured
	prop.Images = mergeImages(prop.Images, form.RemovedImages, urls)

	if len(form.RemovedImages) > 0 {
		// Removed URLs are dropped from the row only; the remote objects
		// stay behind for out-of-band cleanup.
		applog.L.Info("Images removed from property; remote assets left for reconciliation",
			zap.String("property_id", id.String()),
			zap.Strings("removed", form.RemovedImages))
	}

	if err := s.db.WithContext(ctx).Save(prop).Error; err != nil {
		if len(urls) > 0 {
			applog.L.Error("Property update failed after uploads; orphaned remote assets",
				zap.Strings("asset_urls", urls),
				zap.Error(err))
		}
		return nil, nil, fmt.Errorf("failed to update property: %w", err)
	}

	return prop, warnings, nil
}

// Delete removes the row by id. Previously uploaded remote files are not
// retracted; they are logged as orphan candidates.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	prop, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Delete(&models.Property{}, "property_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete property: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	if len(prop.Images) > 0 {
		applog.L.Info("Property deleted; remote assets left for reconciliation",
			zap.String("property_id", id.String()),
			zap.Strings("asset_urls", prop.Images))
	}
	return nil
}

// mergeImages computes (previous minus removed) plus newly uploaded, with
// kept-old images first in their original order and new images appended
// in upload order.
func mergeImages(previous []string, removed []string, uploaded []string) []string {
	drop := make(map[string]struct{}, len(removed))
	for _, u := range removed {
		drop[u] = struct{}{}
	}
	merged := make([]string, 0, len(previous)+len(uploaded))
	for _, u := range previous {
		if _, ok := drop[u]; !ok {
			merged = append(merged, u)
		}
	}
	return append(merged, uploaded...)
}

// uploadAll stores every attached file through the provider. Uploads run
// concurrently but the returned URLs are in submission order. A single
// failing file does not fail the batch; it becomes a warning.
//
// Folder creation is fail-closed: if the per-property folder cannot be
// created, the whole request aborts rather than falling back to flat
// storage.
func (s *Service) uploadAll(ctx context.Context, listingName string, files []*multipart.FileHeader) ([]string, []UploadWarning, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	folder, err := s.provider.CreateFolder(ctx, folderName(listingName), "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage folder: %w", err)
	}

	type result struct {
		url string
		err error
	}
	results := make([]result, len(files))

	// Plain goroutines, not errgroup: one failure must not cancel the
	// sibling uploads.
	var wg sync.WaitGroup
	for i, fh := range files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			url, err := s.uploadOne(ctx, fh, folder)
			results[i] = result{url: url, err: err}
		}(i, fh)
	}
	wg.Wait()

	var urls []string
	var warnings []UploadWarning
	for i, r := range results {
		if r.err != nil {
			applog.L.Warn("File upload failed; continuing with remaining files",
				zap.String("file_name", files[i].Filename),
				zap.Error(r.err))
			warnings = append(warnings, UploadWarning{
				FileName: files[i].Filename,
				Reason:   r.err.Error(),
			})
			continue
		}
		urls = append(urls, r.url)
	}
	return urls, warnings, nil
}

func (s *Service) uploadOne(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error) {
	start := time.Now()

	tempPath, err := stageTempFile(fh)
	if err != nil {
		s.recordUpload("error", start)
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	ref, err := s.provider.Store(ctx, storage.Upload{
		Path:        tempPath,
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Folder:      folder,
	})
	if err != nil {
		// The provider only deletes the temp copy on success.
		if rmErr := os.Remove(tempPath); rmErr != nil {
			applog.L.Warn("Failed to clean staged file after upload error",
				zap.String("path", tempPath), zap.Error(rmErr))
		}
		s.recordUpload("error", start)
		return "", err
	}

	s.recordUpload("ok", start)
	return ref.URL, nil
}

func (s *Service) recordUpload(outcome string, start time.Time) {
	metrics.StorageUploadCounter.WithLabelValues(s.provider.Name(), outcome).Inc()
	metrics.StorageUploadDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
}

// stageTempFile copies one multipart part to a scratch file so providers
// get a readable path, mirroring disk-buffered uploads.
func stageTempFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "estatelist-upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

var folderNameSanitizer = regexp.MustCompile(`\s+`)

// folderName derives a unique per-property folder name from the listing
// name and the current time, so concurrent creates with the same listing
// name get distinct folders.
func folderName(listingName string) string {
	sanitized := folderNameSanitizer.ReplaceAllString(listingName, "_")
	return fmt.Sprintf("%s_%d", sanitized, time.Now().UnixMilli())
}
