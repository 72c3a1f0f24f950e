package service

import (
	"context"
	stdErrors "errors"

	"notepad-core/internal/errors"
)

// ErrIsDirectory is the cause recorded when DeleteFile is pointed at a directory.
var ErrIsDirectory = stdErrors.New("is a directory")

// DeleteFile removes the file at path. Directories are refused.
func (s *DefaultTextFileService) DeleteFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewIoError(OpDeleteFile, path, err)
	}

	info, err := s.fsAdapter.Stat(path)
	if err != nil {
		s.logger.Warnw("delete failed", "op", OpDeleteFile, "path", path, "error", err)
		return errors.NewIoError(OpDeleteFile, path, err)
	}
	if info.IsDir() {
		return errors.NewIoError(OpDeleteFile, path, ErrIsDirectory)
	}
	if err := s.fsAdapter.Remove(path); err != nil {
		s.logger.Warnw("delete failed", "op", OpDeleteFile, "path", path, "error", err)
		return errors.NewIoError(OpDeleteFile, path, err)
	}

	s.logger.Infow("deleted file", "op", OpDeleteFile, "path", path)
	return nil
}
