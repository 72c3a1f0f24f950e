package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"notepad-core/internal/errors"
	"notepad-core/internal/models"
	"notepad-core/internal/store"
)

const (
	OpLoadRecentFiles  = "load_recent_files"
	OpTouchRecentFile  = "touch_recent_file"
	OpRemoveRecentFile = "remove_recent_file"
	OpRenameRecentFile = "rename_recent_file"
	OpGetWorkDir       = "get_work_dir"
	OpSetWorkDir       = "set_work_dir"
)

const (
	// RecentFilesStoreName is the file name of the recent-files store inside the data dir.
	RecentFilesStoreName = "recent-files.json"
	recentFilesKey       = "recentFiles"
	// MaxRecentFiles caps the recent-files list.
	MaxRecentFiles = 50
)

// RecentFilesService keeps the most recently opened documents, newest first.
type RecentFilesService struct {
	store  *store.Store
	logger *zap.SugaredLogger
	now    func() time.Time

	mu sync.Mutex
}

// NewRecentFilesService creates a RecentFilesService backed by st.
func NewRecentFilesService(st *store.Store, logger *zap.SugaredLogger) (*RecentFilesService, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RecentFilesService{store: st, logger: logger, now: time.Now}, nil
}

// Load returns the persisted list. Entries without an id get their path as id,
// and the migrated list is written back. An unreadable store yields an empty list.
func (r *RecentFilesService) Load(ctx context.Context) ([]models.RecentFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Reload(ctx); err != nil {
		r.logger.Warnw("recent files unavailable", "op", OpLoadRecentFiles, "error", err)
		return []models.RecentFile{}, nil
	}
	files, migrated := r.read()
	if migrated {
		if err := r.write(ctx, files); err != nil {
			r.logger.Warnw("recent files migration not saved", "op", OpLoadRecentFiles, "error", err)
		}
	}
	return files, nil
}

// Touch moves path to the front of the list, stamping it with the current time.
func (r *RecentFilesService) Touch(ctx context.Context, path string) ([]models.RecentFile, error) {
	if path == "" {
		return nil, errors.NewInvalidParamsError(OpTouchRecentFile, "path is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reload(ctx, OpTouchRecentFile); err != nil {
		return nil, err
	}
	current, _ := r.read()

	files := make([]models.RecentFile, 0, len(current)+1)
	files = append(files, models.RecentFile{
		ID:       path,
		Name:     filepath.Base(path),
		Path:     path,
		Modified: r.now().UTC().Format(time.RFC3339),
	})
	for _, f := range current {
		if f.Path == path || f.ID == path {
			continue
		}
		files = append(files, f)
	}
	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}

	if err := r.write(ctx, files); err != nil {
		return nil, err
	}
	r.logger.Debugw("touched recent file", "op", OpTouchRecentFile, "path", path, "count", len(files))
	return files, nil
}

// Remove drops the entry with the given id. Unknown ids are not an error.
func (r *RecentFilesService) Remove(ctx context.Context, id string) ([]models.RecentFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reload(ctx, OpRemoveRecentFile); err != nil {
		return nil, err
	}
	current, _ := r.read()

	files := make([]models.RecentFile, 0, len(current))
	for _, f := range current {
		if f.ID != id {
			files = append(files, f)
		}
	}
	if err := r.write(ctx, files); err != nil {
		return nil, err
	}
	r.logger.Debugw("removed recent file", "op", OpRemoveRecentFile, "id", id, "count", len(files))
	return files, nil
}

// Rename points the entries for oldPath at newPath, keeping their position and timestamp.
func (r *RecentFilesService) Rename(ctx context.Context, oldPath, newPath string) ([]models.RecentFile, error) {
	if oldPath == "" || newPath == "" {
		return nil, errors.NewInvalidParamsError(OpRenameRecentFile, "oldPath and newPath are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reload(ctx, OpRenameRecentFile); err != nil {
		return nil, err
	}
	files, _ := r.read()

	changed := false
	for i := range files {
		if files[i].Path != oldPath {
			continue
		}
		files[i].ID = newPath
		files[i].Name = filepath.Base(newPath)
		files[i].Path = newPath
		changed = true
	}
	if !changed {
		return files, nil
	}
	if err := r.write(ctx, files); err != nil {
		return nil, err
	}
	r.logger.Debugw("renamed recent file", "op", OpRenameRecentFile, "from", oldPath, "to", newPath)
	return files, nil
}

// reload refreshes the store. A malformed file is treated as an empty list,
// which the next write replaces.
func (r *RecentFilesService) reload(ctx context.Context, op string) error {
	err := r.store.Reload(ctx)
	if stdErrors.Is(err, store.ErrMalformed) {
		r.logger.Warnw("recent files store malformed, starting over", "op", op, "error", err)
		return nil
	}
	return err
}

func (r *RecentFilesService) read() ([]models.RecentFile, bool) {
	var files []models.RecentFile
	if err := r.store.Get(recentFilesKey, &files); err != nil {
		if !stdErrors.Is(err, store.ErrKeyNotFound) {
			r.logger.Warnw("discarding malformed recent files", "error", err)
		}
		return []models.RecentFile{}, false
	}
	if files == nil {
		files = []models.RecentFile{}
	}
	migrated := false
	for i := range files {
		if files[i].ID == "" {
			files[i].ID = files[i].Path
			migrated = true
		}
	}
	return files, migrated
}

func (r *RecentFilesService) write(ctx context.Context, files []models.RecentFile) error {
	if err := r.store.Set(recentFilesKey, files); err != nil {
		return err
	}
	return r.store.Save(ctx)
}

const (
	// SettingsStoreName is the file name of the user settings store inside the data dir.
	SettingsStoreName = "user-settings.json"
	workDirKey        = "workDir"
)

// WorkDirService persists the folder the sidebar lists.
type WorkDirService struct {
	store *store.Store
	mu    sync.Mutex
}

// NewWorkDirService creates a WorkDirService backed by st.
func NewWorkDirService(st *store.Store) (*WorkDirService, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &WorkDirService{store: st}, nil
}

// Get returns the saved working directory, or "" when none is set.
func (w *WorkDirService) Get(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.store.Reload(ctx); err != nil && !stdErrors.Is(err, store.ErrMalformed) {
		return "", err
	}
	var dir string
	if err := w.store.Get(workDirKey, &dir); err != nil {
		return "", nil
	}
	return dir, nil
}

// Set saves dir as the working directory.
func (w *WorkDirService) Set(ctx context.Context, dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.store.Reload(ctx); err != nil && !stdErrors.Is(err, store.ErrMalformed) {
		return err
	}
	if err := w.store.Set(workDirKey, dir); err != nil {
		return err
	}
	return w.store.Save(ctx)
}
