package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"notepad-core/internal/config"
)

func init() {
	color.NoColor = true
}

// runCLI executes the root command with an isolated data dir.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithDataDir(t, t.TempDir(), stdin, args...)
}

func runCLIWithDataDir(t *testing.T, dataDir, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_WriteReadList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "note.md")

	out, err := runCLI(t, "", "write", path, "--content", "# Title\n")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	out, err = runCLI(t, "", "read", path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", out)

	other := filepath.Join(dir, "sub", "older.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(other, old, old))

	out, err = runCLI(t, "", "list", filepath.Join(dir, "sub"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "note.md")
	assert.Contains(t, lines[1], "older.txt")
}

func TestCLI_WriteFromStdin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piped.txt")
	_, err := runCLI(t, "from stdin", "write", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))
}

func TestCLI_DeleteAndReadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.md")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := runCLI(t, "", "delete", path)
	require.NoError(t, err)

	_, err = runCLI(t, "", "read", path)
	assert.ErrorContains(t, err, "no such file or directory")
}

func TestCLI_CorruptStoresDoNotBlockFileCommands(t *testing.T) {
	dataDir := t.TempDir()
	recentPath := filepath.Join(dataDir, "recent-files.json")
	settingsPath := filepath.Join(dataDir, "user-settings.json")
	require.NoError(t, os.WriteFile(recentPath, []byte("{not json"), 0600))
	require.NoError(t, os.WriteFile(settingsPath, []byte("["), 0600))

	doc := filepath.Join(t.TempDir(), "a.md")
	require.NoError(t, os.WriteFile(doc, []byte("still readable"), 0644))

	out, err := runCLIWithDataDir(t, dataDir, "", "read", doc)
	require.NoError(t, err)
	assert.Equal(t, "still readable", out)

	out, err = runCLIWithDataDir(t, dataDir, "", "list", filepath.Dir(doc))
	require.NoError(t, err)
	assert.Contains(t, out, "a.md")

	raw, err := os.ReadFile(recentPath)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw), "corrupt store is left alone")
}

func TestCLI_Rename(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "draft.md")
	newPath := filepath.Join(dir, "final.md")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0644))

	out, err := runCLI(t, "", "rename", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "renamed")
	assert.FileExists(t, newPath)

	require.NoError(t, os.WriteFile(oldPath, []byte("y"), 0644))
	_, err = runCLI(t, "", "rename", oldPath, newPath)
	assert.ErrorContains(t, err, "file already exists")
}

func TestCLI_Greet(t *testing.T) {
	out, err := runCLI(t, "", "greet", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada! You've been greeted from Go!\n", out)
}

func TestCLI_InvalidConfig(t *testing.T) {
	_, err := runCLI(t, "", "--timeout", "0", "greet", "x")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestCLI_ConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "notepad.yaml")

	out, err := runCLI(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "created")
	assert.FileExists(t, path)

	_, err = runCLI(t, "", "config", "init", path)
	assert.ErrorIs(t, err, config.ErrConfigExists)

	out, err = runCLI(t, "", "--config", path, "--port", "4242", "config", "show")
	require.NoError(t, err)
	var shown config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, 4242, shown.Port)
	assert.Equal(t, config.TransportHTTP, shown.Transport)
}

func TestCLI_ServeRejectsUnknownTransport(t *testing.T) {
	_, err := runCLI(t, "", "--transport", "carrier-pigeon", "serve")
	assert.ErrorContains(t, err, "transport must be")
}
