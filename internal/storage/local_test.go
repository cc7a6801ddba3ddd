package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageFile(t *testing.T, content string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "upload-*.jpg")
	require.NoError(t, err)
	_, err = tmp.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

func TestObjectName(t *testing.T) {
	name := objectName("house photo.png")
	assert.True(t, strings.HasSuffix(name, ".png"))

	// The base is a numeric timestamp, no trace of the original name.
	base := strings.TrimSuffix(name, ".png")
	_, err := strconv.ParseInt(base, 10, 64)
	assert.NoError(t, err, "object name base should be a timestamp, got %q", name)

	// Files without an extension fall back to .jpg.
	assert.True(t, strings.HasSuffix(objectName("photo"), ".jpg"))

	// Two names generated in sequence must differ.
	assert.NotEqual(t, objectName("a.png"), objectName("a.png"))
}

func TestLocalProvider_StoreRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	p, err := NewLocalProvider(baseDir, "http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	folder, err := p.CreateFolder(context.Background(), "Villa_123", "")
	require.NoError(t, err)
	assert.Equal(t, "Villa_123", folder)

	staged := stageFile(t, "fake image bytes")
	ref, err := p.Store(context.Background(), Upload{
		Path:        staged,
		Name:        "front door.jpg",
		ContentType: "image/jpeg",
		Folder:      folder,
	})
	require.NoError(t, err)

	// The URL is the public base plus /uploads/ plus the relative path.
	require.True(t, strings.HasPrefix(ref.URL, "http://localhost:8080/uploads/Villa_123/"), "got %q", ref.URL)
	assert.NotContains(t, ref.URL, " ", "original name must not leak into the URL")

	// The stored copy exists and carries the uploaded bytes.
	stored, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(ref.ID)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(stored))

	// The staged temp file is deleted after a successful store.
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staged temp file should be removed")
}

func TestLocalProvider_StoreMissingSource(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	_, err = p.Store(context.Background(), Upload{Path: "/nonexistent/file.jpg", Name: "x.jpg"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestLocalProvider_FolderNesting(t *testing.T) {
	baseDir := t.TempDir()
	p, err := NewLocalProvider(baseDir, "http://localhost:8080")
	require.NoError(t, err)

	rel, err := p.CreateFolder(context.Background(), "child", "parent")
	require.NoError(t, err)
	assert.Equal(t, "parent/child", rel)

	info, err := os.Stat(filepath.Join(baseDir, "parent", "child"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLocalProviderRequiresBaseDir(t *testing.T) {
	_, err := NewLocalProvider("", "http://localhost:8080")
	assert.Error(t, err)
}
