package service

import (
	"context"

	"notepad-core/internal/errors"
	"notepad-core/internal/filesystem"
)

// ReadTextFile returns the entire contents of path as UTF-8 text.
// Missing files, directories, permission problems and non UTF-8 content all
// surface as an IoError.
func (s *DefaultTextFileService) ReadTextFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewIoError(OpReadTextFile, path, err)
	}

	content, err := s.fsAdapter.ReadFileBytes(path)
	if err != nil {
		s.logger.Warnw("read failed", "op", OpReadTextFile, "path", path, "error", err)
		return "", errors.NewIoError(OpReadTextFile, path, err)
	}
	if !filesystem.IsValidUTF8(content) {
		s.logger.Warnw("read failed", "op", OpReadTextFile, "path", path, "error", errors.ErrInvalidUTF8)
		return "", errors.NewIoError(OpReadTextFile, path, errors.ErrInvalidUTF8)
	}

	s.logger.Debugw("read file", "op", OpReadTextFile, "path", path, "bytes", len(content))
	return string(content), nil
}
