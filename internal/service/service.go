package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"notepad-core/internal/filesystem"
	"notepad-core/internal/models"
)

// Command names. They double as the IoError operation and the RPC method.
const (
	OpReadTextFile   = "read_text_file"
	OpWriteTextFile  = "write_text_file"
	OpListTextFiles  = "list_text_files"
	OpDeleteFile     = "delete_file"
	OpFileExists     = "file_exists"
	OpRenameFile     = "rename_file"
	OpGreet          = "greet"
	OpGetStartupFile = "get_startup_file"
)

// TextFileService defines the operations on plain text documents.
type TextFileService interface {
	ReadTextFile(ctx context.Context, path string) (string, error)
	WriteTextFile(ctx context.Context, path, content string) error
	ListTextFiles(ctx context.Context, dirPath string) ([]models.FileInfo, error)
	DeleteFile(ctx context.Context, path string) error
	FileExists(ctx context.Context, path string) (bool, error)
	RenameFile(ctx context.Context, oldPath, newPath string) error
	Greet(name string) string
	StartupFile() (string, bool)
}

// DefaultTextFileService implements TextFileService on top of a FileSystemAdapter.
// It holds no state between calls.
type DefaultTextFileService struct {
	fsAdapter   filesystem.FileSystemAdapter
	logger      *zap.SugaredLogger
	startupFile string
}

// Option customises a DefaultTextFileService.
type Option func(*DefaultTextFileService)

// WithStartupFile records the document the application was launched with.
func WithStartupFile(path string) Option {
	return func(s *DefaultTextFileService) {
		s.startupFile = path
	}
}

// NewDefaultTextFileService creates a new DefaultTextFileService.
func NewDefaultTextFileService(fs filesystem.FileSystemAdapter, logger *zap.SugaredLogger, opts ...Option) (*DefaultTextFileService, error) {
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &DefaultTextFileService{
		fsAdapter: fs,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Greet returns the fixed greeting used by the host to check the backend is alive.
func (s *DefaultTextFileService) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// StartupFile returns the absolute path of the launch document, if any.
func (s *DefaultTextFileService) StartupFile() (string, bool) {
	return s.startupFile, s.startupFile != ""
}

var _ TextFileService = (*DefaultTextFileService)(nil)
