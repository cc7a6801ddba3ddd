package listing

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"estatelist/backend/internal/models"
	"estatelist/backend/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeProvider is a storage.Provider double. FailNames lists original file
// names whose Store call fails; DelayByName slows individual uploads down
// so out-of-order completion can be provoked.
type fakeProvider struct {
	mu          sync.Mutex
	FailNames   map[string]bool
	DelayByName map[string]time.Duration
	FolderErr   error
	stored      []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Store(ctx context.Context, up storage.Upload) (storage.AssetRef, error) {
	if d, ok := f.DelayByName[up.Name]; ok {
		time.Sleep(d)
	}
	if f.FailNames[up.Name] {
		return storage.AssetRef{}, fmt.Errorf("%w: simulated outage", storage.ErrProviderUnavailable)
	}
	os.Remove(up.Path)
	f.mu.Lock()
	f.stored = append(f.stored, up.Name)
	f.mu.Unlock()
	return storage.AssetRef{ID: up.Name, URL: "https://cdn.test/" + up.Folder + "/" + up.Name}, nil
}

func (f *fakeProvider) CreateFolder(ctx context.Context, name string, parent string) (string, error) {
	if f.FolderErr != nil {
		return "", f.FolderErr
	}
	return name, nil
}

func newMockService(t *testing.T, provider storage.Provider) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	var db *sql.DB
	var err error
	var mock sqlmock.Sqlmock
	db, mock, err = sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewService(gdb, provider), mock
}

// makeFileHeaders builds real multipart file headers the way Gin hands
// them to the handler.
func makeFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["images"]
}

func TestMergeImages(t *testing.T) {
	assert.Equal(t, []string{"a", "c", "d"},
		mergeImages([]string{"a", "b", "c"}, []string{"b"}, []string{"d"}))

	// Removing an unknown URL is a no-op.
	assert.Equal(t, []string{"a", "b"},
		mergeImages([]string{"a", "b"}, []string{"zzz"}, nil))

	// Kept-old order first, then new uploads in order.
	assert.Equal(t, []string{"a", "x", "y"},
		mergeImages([]string{"a"}, nil, []string{"x", "y"}))

	assert.Empty(t, mergeImages(nil, nil, nil))
}

func TestFolderName(t *testing.T) {
	name := folderName("Sea View  Villa")
	assert.True(t, strings.HasPrefix(name, "Sea_View_Villa_"), "got %q", name)
	assert.NotContains(t, name, " ")

	// Two calls for the same listing name must not collide.
	other := folderName("Sea View  Villa")
	assert.NotEqual(t, name, other)
}

func TestUploadAll_OrderPreserved(t *testing.T) {
	provider := &fakeProvider{
		// The first file finishes last; the result order must still be
		// submission order.
		DelayByName: map[string]time.Duration{"first.jpg": 60 * time.Millisecond},
	}
	svc, _ := newMockService(t, provider)

	files := makeFileHeaders(t, "first.jpg", "second.jpg", "third.jpg")
	urls, warnings, err := svc.uploadAll(context.Background(), "Villa", files)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, urls, 3)
	assert.Contains(t, urls[0], "first.jpg")
	assert.Contains(t, urls[1], "second.jpg")
	assert.Contains(t, urls[2], "third.jpg")
}

func TestUploadAll_PartialFailure(t *testing.T) {
	provider := &fakeProvider{FailNames: map[string]bool{"bad.png": true}}
	svc, _ := newMockService(t, provider)

	files := makeFileHeaders(t, "ok1.jpg", "bad.png", "ok2.jpg")
	urls, warnings, err := svc.uploadAll(context.Background(), "Villa", files)
	require.NoError(t, err, "one failing file must not fail the batch")

	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "ok1.jpg")
	assert.Contains(t, urls[1], "ok2.jpg")

	require.Len(t, warnings, 1)
	assert.Equal(t, "bad.png", warnings[0].FileName)
	assert.Contains(t, warnings[0].Reason, "simulated outage")
}

func TestUploadAll_FolderCreationFailsClosed(t *testing.T) {
	provider := &fakeProvider{
		FolderErr: fmt.Errorf("%w: no credentials", storage.ErrProviderUnavailable),
	}
	svc, _ := newMockService(t, provider)

	files := makeFileHeaders(t, "a.jpg")
	_, _, err := svc.uploadAll(context.Background(), "Villa", files)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrProviderUnavailable))
	assert.Empty(t, provider.stored, "no upload may run without a folder")
}

func TestUploadAll_NoFiles(t *testing.T) {
	provider := &fakeProvider{
		FolderErr: errors.New("must not be called"),
	}
	svc, _ := newMockService(t, provider)

	urls, warnings, err := svc.uploadAll(context.Background(), "Villa", nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.Empty(t, warnings)
}

func TestCreate_InsertsRow(t *testing.T) {
	provider := &fakeProvider{}
	svc, mock := newMockService(t, provider)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "properties"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	form := Form{
		Name:        "Sea View Villa",
		Price:       250000,
		Location:    "Alexandria",
		ContactInfo: "call me",
		Status:      models.StatusBuy,
	}
	files := makeFileHeaders(t, "front.jpg", "back.jpg")

	prop, warnings, err := svc.Create(context.Background(), form, files, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEqual(t, uuid.Nil, prop.ID)
	require.Len(t, prop.Images, 2)
	assert.Contains(t, prop.Images[0], "front.jpg")
	assert.Contains(t, prop.Images[1], "back.jpg")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InsertFailureSurfaces(t *testing.T) {
	provider := &fakeProvider{}
	svc, mock := newMockService(t, provider)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "properties"`)).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	form := Form{Name: "Villa", Price: 1, Location: "x", ContactInfo: "y", Status: models.StatusBuy}
	_, _, err := svc.Create(context.Background(), form, nil, uuid.New())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	svc, mock := newMockService(t, &fakeProvider{})

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "properties" WHERE property_id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"property_id"}))

	_, err := svc.Get(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FiltersByStatus(t *testing.T) {
	svc, mock := newMockService(t, &fakeProvider{})

	rows := sqlmock.NewRows([]string{"property_id", "name", "status"}).
		AddRow(uuid.New(), "Villa", "Buy").
		AddRow(uuid.New(), "Flat", "Rent")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "properties" WHERE status = $1 OR status = $2`)).
		WithArgs(string(models.StatusBuy), string(models.StatusRent)).
		WillReturnRows(rows)

	props, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, props, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	svc, mock := newMockService(t, &fakeProvider{})
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "properties" WHERE property_id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"property_id", "name"}).AddRow(id, "Villa"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "properties" WHERE property_id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	svc, mock := newMockService(t, &fakeProvider{})
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "properties" WHERE property_id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"property_id"}))

	err := svc.Delete(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MergesImages(t *testing.T) {
	provider := &fakeProvider{}
	svc, mock := newMockService(t, provider)
	id := uuid.New()

	prior := `{https://cdn.test/old/a.jpg,https://cdn.test/old/b.jpg}`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "properties" WHERE property_id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"property_id", "name", "images"}).
			AddRow(id, "Villa", prior))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "properties" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	form := Form{
		Name:          "Villa",
		Price:         90,
		Location:      "x",
		ContactInfo:   "y",
		Status:        models.StatusRent,
		RemovedImages: []string{"https://cdn.test/old/b.jpg"},
	}
	files := makeFileHeaders(t, "new.jpg")

	prop, warnings, err := svc.Update(context.Background(), id, form, files)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, prop.Images, 2)
	assert.Equal(t, "https://cdn.test/old/a.jpg", prop.Images[0])
	assert.Contains(t, prop.Images[1], "new.jpg")
	assert.Equal(t, models.StatusRent, prop.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}
