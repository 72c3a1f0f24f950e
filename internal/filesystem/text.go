package filesystem

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// textExtensions is the fixed allow-list of extensions the lister keeps.
var textExtensions = map[string]struct{}{
	"md":       {},
	"markdown": {},
	"txt":      {},
}

// Extension returns the text after the final '.' of the base name of path and
// whether there is one. A name whose only dot is the leading one (".md") and the
// names "." and ".." have no extension. "notes." has an empty extension.
func Extension(path string) (string, bool) {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}
	return name[i+1:], true
}

// HasTextExtension reports whether path ends in md, markdown or txt, ignoring case.
func HasTextExtension(path string) bool {
	ext, ok := Extension(path)
	if !ok {
		return false
	}
	_, allowed := textExtensions[strings.ToLower(ext)]
	return allowed
}

// LossyString replaces every invalid UTF-8 sequence in s with U+FFFD.
func LossyString(s string) string {
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// FileName returns the final component of path, or "" when it is not valid UTF-8.
func FileName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || !utf8.ValidString(name) {
		return ""
	}
	return name
}

// ModifiedMillis converts a modification time to milliseconds since the Unix
// epoch. Zero and pre-epoch times map to 0.
func ModifiedMillis(modTime time.Time) int64 {
	if modTime.IsZero() {
		return 0
	}
	ms := modTime.UnixMilli()
	if ms < 0 {
		return 0
	}
	return ms
}

// ModifiedMillisOf is ModifiedMillis for a possibly nil FileInfo.
func ModifiedMillisOf(info fs.FileInfo) int64 {
	if info == nil {
		return 0
	}
	return ModifiedMillis(info.ModTime())
}
