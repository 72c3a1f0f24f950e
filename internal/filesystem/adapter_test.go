package filesystem

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUTF8(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"empty string", []byte(""), true},
		{"valid ascii", []byte("hello"), true},
		{"valid utf-8", []byte("hello, 世界"), true},
		{"invalid utf-8 sequence", []byte{0xff, 0xfe, 0xfd}, false},
		{"valid partial utf-8", []byte("abc\xe2\x82\xac"), true}, // Euro sign
		{"invalid continuation byte", []byte{0xe2, 0x82}, false}, // Incomplete Euro sign
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUTF8(tt.content))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		path    string
		wantExt string
		wantOK  bool
	}{
		{"/notes/a.md", "md", true},
		{"/notes/archive.tar.gz", "gz", true},
		{"/notes/README", "", false},
		{"/notes/.md", "", false},
		{"/notes/.hidden.txt", "txt", true},
		{"/notes/trailing.", "", true},
		{"/notes/..", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ext, ok := Extension(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestHasTextExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.md", true},
		{"b.MARKDOWN", true},
		{"c.txt", true},
		{"C.Txt", true},
		{"d.png", false},
		{"e", false},
		{".md", false},
		{"f.md.bak", false},
		{"g.mdx", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTextExtension(tt.path))
		})
	}
}

func TestLossyString(t *testing.T) {
	assert.Equal(t, "/tmp/ok.md", LossyString("/tmp/ok.md"))
	assert.Equal(t, "/tmp/bad�.md", LossyString("/tmp/bad\xff.md"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a.md", FileName("/x/y/a.md"))
	assert.Equal(t, "", FileName("/x/bad\xff.md"))
	assert.Equal(t, "", FileName(""))
}

func TestModifiedMillis(t *testing.T) {
	assert.Equal(t, int64(0), ModifiedMillis(time.Time{}))
	assert.Equal(t, int64(0), ModifiedMillis(time.Unix(-10, 0)))
	assert.Equal(t, int64(1700000000123), ModifiedMillis(time.UnixMilli(1700000000123)))
	assert.Equal(t, int64(0), ModifiedMillisOf(nil))
}

func TestDefaultFileSystemAdapter_WriteFileBytesAtomic(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	dir := t.TempDir()
	target := filepath.Join(dir, "store.json")

	require.NoError(t, adapter.WriteFileBytesAtomic(target, []byte(`{"a":1}`), 0600))
	require.NoError(t, adapter.WriteFileBytesAtomic(target, []byte(`{"a":2}`), 0600))

	got, err := adapter.ReadFileBytes(target)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	entries, err := adapter.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	info, err := adapter.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDefaultFileSystemAdapter_WriteFileBytesTruncates(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	target := filepath.Join(t.TempDir(), "a.txt")

	require.NoError(t, adapter.WriteFileBytes(target, []byte("a much longer first version"), 0644))
	require.NoError(t, adapter.WriteFileBytes(target, []byte("short"), 0644))

	got, err := adapter.ReadFileBytes(target)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestDefaultFileSystemAdapter_MkdirAllAndRemove(t *testing.T) {
	adapter := NewDefaultFileSystemAdapter()
	nested := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, adapter.MkdirAll(nested, 0755))
	require.NoError(t, adapter.MkdirAll(nested, 0755), "MkdirAll must be idempotent")

	file := filepath.Join(nested, "x.md")
	require.NoError(t, adapter.WriteFileBytes(file, nil, 0644))
	require.NoError(t, adapter.Remove(file))
	_, err := adapter.Stat(file)
	assert.True(t, os.IsNotExist(err))
}
