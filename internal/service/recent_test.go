package service

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notepad-core/internal/errors"
	"notepad-core/internal/filesystem"
	"notepad-core/internal/lock"
	"notepad-core/internal/models"
	"notepad-core/internal/store"
)

func openStore(t *testing.T, path string) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), path, filesystem.NewDefaultFileSystemAdapter(), lock.NewLockManager(200*time.Millisecond))
	require.NoError(t, err)
	return st
}

func newRecentService(t *testing.T, path string) *RecentFilesService {
	t.Helper()
	svc, err := NewRecentFilesService(openStore(t, path), nil)
	require.NoError(t, err)
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func paths(files []models.RecentFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestRecentFiles_LoadEmpty(t *testing.T) {
	svc := newRecentService(t, filepath.Join(t.TempDir(), RecentFilesStoreName))
	files, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestRecentFiles_TouchDedupesAndOrders(t *testing.T) {
	ctx := context.Background()
	storePath := filepath.Join(t.TempDir(), RecentFilesStoreName)
	svc := newRecentService(t, storePath)

	_, err := svc.Touch(ctx, "/notes/a.md")
	require.NoError(t, err)
	_, err = svc.Touch(ctx, "/notes/b.txt")
	require.NoError(t, err)
	files, err := svc.Touch(ctx, "/notes/a.md")
	require.NoError(t, err)

	assert.Equal(t, []string{"/notes/a.md", "/notes/b.txt"}, paths(files))
	assert.Equal(t, "a.md", files[0].Name)
	assert.Equal(t, "/notes/a.md", files[0].ID)
	assert.Equal(t, "2024-05-01T09:00:03Z", files[0].Modified)

	reloaded, err := newRecentService(t, storePath).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, files, reloaded)
}

func TestRecentFiles_TouchCaps(t *testing.T) {
	ctx := context.Background()
	svc := newRecentService(t, filepath.Join(t.TempDir(), RecentFilesStoreName))

	var files []models.RecentFile
	var err error
	for i := 0; i < MaxRecentFiles+5; i++ {
		files, err = svc.Touch(ctx, fmt.Sprintf("/notes/%02d.md", i))
		require.NoError(t, err)
	}
	require.Len(t, files, MaxRecentFiles)
	assert.Equal(t, fmt.Sprintf("/notes/%02d.md", MaxRecentFiles+4), files[0].Path)
}

func TestRecentFiles_TouchRequiresPath(t *testing.T) {
	svc := newRecentService(t, filepath.Join(t.TempDir(), RecentFilesStoreName))
	_, err := svc.Touch(context.Background(), "")
	var detail *models.ErrorDetail
	require.True(t, stdErrors.As(err, &detail), "expected ErrorDetail, got %T", err)
	assert.Equal(t, errors.CodeInvalidParams, detail.Code)
}

func TestRecentFiles_Rename(t *testing.T) {
	ctx := context.Background()
	svc := newRecentService(t, filepath.Join(t.TempDir(), RecentFilesStoreName))

	_, err := svc.Touch(ctx, "/notes/a.md")
	require.NoError(t, err)
	before, err := svc.Touch(ctx, "/notes/b.md")
	require.NoError(t, err)

	files, err := svc.Rename(ctx, "/notes/a.md", "/notes/renamed.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/b.md", "/notes/renamed.md"}, paths(files), "position is kept")
	assert.Equal(t, "/notes/renamed.md", files[1].ID)
	assert.Equal(t, "renamed.md", files[1].Name)
	assert.Equal(t, before[1].Modified, files[1].Modified)

	files, err = svc.Rename(ctx, "/notes/unknown.md", "/notes/x.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/b.md", "/notes/renamed.md"}, paths(files))

	_, err = svc.Rename(ctx, "", "/x.md")
	assert.Error(t, err)
}

func TestRecentFiles_CorruptStoreIsReplaced(t *testing.T) {
	ctx := context.Background()
	storePath := filepath.Join(t.TempDir(), RecentFilesStoreName)
	require.NoError(t, os.WriteFile(storePath, []byte("{not json"), 0600))

	svc := newRecentService(t, storePath)
	files, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = svc.Touch(ctx, "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/a.md"}, paths(files))

	reloaded, err := newRecentService(t, storePath).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, files, reloaded)
}

func TestRecentFiles_Remove(t *testing.T) {
	ctx := context.Background()
	svc := newRecentService(t, filepath.Join(t.TempDir(), RecentFilesStoreName))

	_, err := svc.Touch(ctx, "/a.md")
	require.NoError(t, err)
	_, err = svc.Touch(ctx, "/b.md")
	require.NoError(t, err)

	files, err := svc.Remove(ctx, "/a.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/b.md"}, paths(files))

	files, err = svc.Remove(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, []string{"/b.md"}, paths(files))
}

func TestRecentFiles_MigratesMissingIDs(t *testing.T) {
	ctx := context.Background()
	storePath := filepath.Join(t.TempDir(), RecentFilesStoreName)
	legacy := map[string]interface{}{
		"recentFiles": []map[string]string{
			{"id": "", "name": "old.md", "path": "/old.md", "modified": "2023-01-01T00:00:00Z"},
			{"id": "keep", "name": "k.md", "path": "/k.md", "modified": "2023-01-02T00:00:00Z"},
		},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storePath, data, 0600))

	files, err := newRecentService(t, storePath).Load(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/old.md", files[0].ID)
	assert.Equal(t, "keep", files[1].ID)

	raw, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id": "/old.md"`, "migration is persisted")
}

func TestRecentFiles_MalformedValueLoadsEmpty(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), RecentFilesStoreName)
	require.NoError(t, os.WriteFile(storePath, []byte(`{"recentFiles": "nope"}`), 0600))

	files, err := newRecentService(t, storePath).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWorkDir_GetSet(t *testing.T) {
	ctx := context.Background()
	storePath := filepath.Join(t.TempDir(), SettingsStoreName)

	svc, err := NewWorkDirService(openStore(t, storePath))
	require.NoError(t, err)

	dir, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, dir)

	require.NoError(t, svc.Set(ctx, "/home/u/notes"))

	other, err := NewWorkDirService(openStore(t, storePath))
	require.NoError(t, err)
	dir, err = other.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/notes", dir)
}

func TestWorkDir_CorruptStore(t *testing.T) {
	ctx := context.Background()
	storePath := filepath.Join(t.TempDir(), SettingsStoreName)
	require.NoError(t, os.WriteFile(storePath, []byte("workDir=/notes"), 0600))

	svc, err := NewWorkDirService(openStore(t, storePath))
	require.NoError(t, err)

	dir, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, dir)

	require.NoError(t, svc.Set(ctx, "/home/u/notes"))
	dir, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/home/u/notes", dir)
}

func TestNewRecentAndWorkDirServices_RequireStore(t *testing.T) {
	_, err := NewRecentFilesService(nil, nil)
	assert.Error(t, err)
	_, err = NewWorkDirService(nil)
	assert.Error(t, err)
}
