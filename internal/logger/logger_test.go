package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFor(t *testing.T) {
	assert.Equal(t, "stderr", OutputFor("stdio"))
	assert.Equal(t, "stderr", OutputFor("mcp"))
	assert.Equal(t, "stdout", OutputFor("http"))
}

func TestNewSugaredLogger_InvalidLevel(t *testing.T) {
	_, err := NewSugaredLogger(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewSugaredLogger_JSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "server.log")
	log, err := NewSugaredLogger(Options{Level: "info", Format: "json", Output: out})
	require.NoError(t, err)

	log.Debugw("hidden", "path", "/a.md")
	log.Infow("listed directory", "path", "/notes", "count", 2)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug entries are filtered at info level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "listed directory", entry["msg"])
	assert.Equal(t, "/notes", entry["path"])
	assert.EqualValues(t, 2, entry["count"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewSugaredLogger_ConsoleDefault(t *testing.T) {
	out := filepath.Join(t.TempDir(), "console.log")
	log, err := NewSugaredLogger(Options{Level: "debug", Output: out})
	require.NoError(t, err)

	log.Debugw("read file", "op", "read_text_file")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DEBUG")
	assert.Contains(t, string(data), "read file")
	assert.Contains(t, string(data), `"op": "read_text_file"`)
}
