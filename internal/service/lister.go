package service

import (
	"context"
	"os"
	"sort"
	"strings"

	"notepad-core/internal/errors"
	"notepad-core/internal/filesystem"
	"notepad-core/internal/models"
)

// ListTextFiles returns the md, markdown and txt files directly inside dirPath,
// most recently modified first. Subdirectories are not descended into and
// entries that cannot be resolved to a regular file are skipped.
func (s *DefaultTextFileService) ListTextFiles(ctx context.Context, dirPath string) ([]models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewIoError(OpListTextFiles, dirPath, err)
	}

	entries, err := s.fsAdapter.ReadDir(dirPath)
	if err != nil {
		s.logger.Warnw("list failed", "op", OpListTextFiles, "path", dirPath, "error", err)
		return nil, errors.NewIoError(OpListTextFiles, dirPath, err)
	}

	files := make([]models.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewIoError(OpListTextFiles, dirPath, err)
		}

		entryPath := joinEntryPath(dirPath, entry.Name())

		// Symlinks count when their target is a regular file.
		target, statErr := s.fsAdapter.Stat(entryPath)
		if statErr != nil || !target.Mode().IsRegular() {
			continue
		}
		if !filesystem.HasTextExtension(entryPath) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			s.logger.Warnw("list failed", "op", OpListTextFiles, "path", entryPath, "error", infoErr)
			return nil, errors.NewIoError(OpListTextFiles, entryPath, infoErr)
		}

		files = append(files, models.FileInfo{
			Path:           filesystem.LossyString(entryPath),
			Name:           filesystem.FileName(entryPath),
			ModifiedMillis: filesystem.ModifiedMillisOf(info),
		})
	}

	// Ties keep directory order.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedMillis > files[j].ModifiedMillis
	})

	s.logger.Debugw("listed directory", "op", OpListTextFiles, "path", dirPath, "count", len(files))
	return files, nil
}

// joinEntryPath appends name to dir without cleaning dir, so the returned
// paths keep the prefix the caller passed in.
func joinEntryPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}
