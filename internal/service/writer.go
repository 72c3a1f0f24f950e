package service

import (
	"context"
	"path/filepath"

	"notepad-core/internal/errors"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// WriteTextFile replaces the contents of path with content, creating the file
// and any missing parent directories. The write is not atomic: a failure part
// way through can leave the file truncated.
func (s *DefaultTextFileService) WriteTextFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewIoError(OpWriteTextFile, path, err)
	}

	if err := s.fsAdapter.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		s.logger.Warnw("create parent failed", "op", OpWriteTextFile, "path", path, "error", err)
		return errors.NewIoError(OpWriteTextFile, path, err)
	}
	if err := s.fsAdapter.WriteFileBytes(path, []byte(content), filePerm); err != nil {
		s.logger.Warnw("write failed", "op", OpWriteTextFile, "path", path, "error", err)
		return errors.NewIoError(OpWriteTextFile, path, err)
	}

	s.logger.Debugw("wrote file", "op", OpWriteTextFile, "path", path, "bytes", len(content))
	return nil
}
