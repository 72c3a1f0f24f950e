package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// FileSystemAdapter defines an interface for interacting with the file system.
// This allows for easier testing of the services built on top of it.
type FileSystemAdapter interface {
	ReadFileBytes(filePath string) ([]byte, error)
	// WriteFileBytes truncates and writes in place. It is not atomic.
	WriteFileBytes(filePath string, content []byte, perm os.FileMode) error
	// WriteFileBytesAtomic writes to a temp file in the same directory and renames it over filePath.
	WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error
	MkdirAll(dirPath string, perm os.FileMode) error
	ReadDir(dirPath string) ([]fs.DirEntry, error)
	// Stat follows symbolic links.
	Stat(filePath string) (fs.FileInfo, error)
	Remove(filePath string) error
	Rename(oldPath, newPath string) error
}

// DefaultFileSystemAdapter is the standard implementation of FileSystemAdapter using the os package.
// Errors are returned unwrapped so callers see the OS description verbatim.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

// ReadFileBytes reads the entire file into a byte slice.
func (a *DefaultFileSystemAdapter) ReadFileBytes(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// WriteFileBytes writes content to filePath, creating or truncating it.
func (a *DefaultFileSystemAdapter) WriteFileBytes(filePath string, content []byte, perm os.FileMode) error {
	return os.WriteFile(filePath, content, perm)
}

// WriteFileBytesAtomic writes content to a file atomically.
// It writes to a temporary file first, then renames it to the target file,
// and finally sets the desired permissions on the target file.
func (a *DefaultFileSystemAdapter) WriteFileBytesAtomic(filePath string, content []byte, finalPerm os.FileMode) error {
	dir := filepath.Dir(filePath)

	tempFile, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tempFile.Name())

	if _, errWrite := tempFile.Write(content); errWrite != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write to temporary file %s: %w", tempFile.Name(), errWrite)
	}
	if errClose := tempFile.Close(); errClose != nil {
		return fmt.Errorf("failed to close temporary file %s: %w", tempFile.Name(), errClose)
	}
	if errRename := os.Rename(tempFile.Name(), filePath); errRename != nil {
		return fmt.Errorf("failed to rename temporary file %s to %s: %w", tempFile.Name(), filePath, errRename)
	}
	if errChmod := os.Chmod(filePath, finalPerm); errChmod != nil {
		return fmt.Errorf("file written to %s, but failed to set final permissions to %o: %w", filePath, finalPerm, errChmod)
	}
	return nil
}

// MkdirAll creates dirPath and any missing parents. Existing directories are not an error.
func (a *DefaultFileSystemAdapter) MkdirAll(dirPath string, perm os.FileMode) error {
	return os.MkdirAll(dirPath, perm)
}

// ReadDir lists the immediate entries of a directory, sorted by name.
func (a *DefaultFileSystemAdapter) ReadDir(dirPath string) ([]fs.DirEntry, error) {
	return os.ReadDir(dirPath)
}

// Stat returns file information, following symbolic links.
func (a *DefaultFileSystemAdapter) Stat(filePath string) (fs.FileInfo, error) {
	return os.Stat(filePath)
}

// Remove deletes a file (or an empty directory).
func (a *DefaultFileSystemAdapter) Remove(filePath string) error {
	return os.Remove(filePath)
}

// Rename moves oldPath to newPath, replacing newPath if it is a file.
func (a *DefaultFileSystemAdapter) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// IsValidUTF8 checks if the byte slice is valid UTF-8.
func IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// Ensure DefaultFileSystemAdapter implements FileSystemAdapter
var _ FileSystemAdapter = (*DefaultFileSystemAdapter)(nil)
