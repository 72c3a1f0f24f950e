package models

// FileInfo describes one text file returned by a directory listing.
// Field names on the wire match what the desktop shell already consumes.
type FileInfo struct {
	// Path is the full path of the file, lossily converted to UTF-8.
	Path string `json:"path"`
	// Name is the final path component, or "" when it is not valid UTF-8.
	Name string `json:"name"`
	// ModifiedMillis is the last-modified time in milliseconds since the Unix epoch.
	ModifiedMillis int64 `json:"modified_ms"`
}

// ReadTextFileRequest represents a request to read a whole text file.
type ReadTextFileRequest struct {
	// Path is the absolute path of the file to read.
	Path string `json:"path"`
}

// WriteTextFileRequest represents a request to write a whole text file.
type WriteTextFileRequest struct {
	// Path is the absolute destination path. Missing parent directories are created.
	Path string `json:"path"`
	// Content replaces the file contents entirely. May be empty.
	Content string `json:"content"`
}

// ListTextFilesRequest represents a request to list the text files of a directory.
type ListTextFilesRequest struct {
	// DirPath is the directory whose immediate children are listed.
	DirPath string `json:"dirPath"`
}

// DeleteFileRequest represents a request to remove a single file.
type DeleteFileRequest struct {
	Path string `json:"path"`
}

// GreetRequest is the argument of the connectivity smoke test.
type GreetRequest struct {
	Name string `json:"name"`
}

// FileExistsRequest asks whether anything exists at Path.
type FileExistsRequest struct {
	Path string `json:"path"`
}

// RenameFileRequest moves a document. It is also the argument of rename_recent_file.
type RenameFileRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}
