package service

import (
	"context"
	stdErrors "errors"
	"io/fs"

	"notepad-core/internal/errors"
)

// FileExists reports whether something exists at path, following symlinks.
// A broken symlink does not exist.
func (s *DefaultTextFileService) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewIoError(OpFileExists, path, err)
	}
	if _, err := s.fsAdapter.Stat(path); err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.NewIoError(OpFileExists, path, err)
	}
	return true, nil
}

// RenameFile moves oldPath to newPath. An existing newPath is never replaced.
func (s *DefaultTextFileService) RenameFile(ctx context.Context, oldPath, newPath string) error {
	exists, err := s.FileExists(ctx, newPath)
	if err != nil {
		return errors.NewIoError(OpRenameFile, newPath, stdErrors.Unwrap(err))
	}
	if exists {
		return errors.NewIoError(OpRenameFile, newPath, fs.ErrExist)
	}
	if err := s.fsAdapter.Rename(oldPath, newPath); err != nil {
		s.logger.Warnw("rename failed", "op", OpRenameFile, "from", oldPath, "to", newPath, "error", err)
		return errors.NewIoError(OpRenameFile, oldPath, err)
	}

	s.logger.Infow("renamed file", "op", OpRenameFile, "from", oldPath, "to", newPath)
	return nil
}
