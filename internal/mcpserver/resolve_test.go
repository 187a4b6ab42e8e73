package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/drydock/internal/config"
)

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestResolvePath_ValidDirectory(t *testing.T) {
	dir := realTempDir(t)

	info, err := ResolvePath(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, info.AbsPath)
	// No .git, so GitRoot should equal AbsPath.
	assert.Equal(t, dir, info.GitRoot)
}

func TestResolvePath_EmptyDefaultsToCwd(t *testing.T) {
	info, err := ResolvePath("")
	require.NoError(t, err)
	assert.NotEmpty(t, info.AbsPath)
}

func TestResolvePath_NonexistentPath(t *testing.T) {
	_, err := ResolvePath("/nonexistent/path/that/does/not/exist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cannot resolve path")
}

func TestResolvePath_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	_, err := ResolvePath(file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestResolvePath_NullBytes(t *testing.T) {
	_, err := ResolvePath("some\x00path")
	require.Error(t, err, "paths with null bytes must be rejected")
}

func TestResolvePath_SymlinkToFileRejected(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("data"), 0o600))

	linkPath := filepath.Join(dir, "link-to-file")
	require.NoError(t, os.Symlink(filePath, linkPath))

	_, err := ResolvePath(linkPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestResolvePath_SymlinkToDir(t *testing.T) {
	realDir := realTempDir(t)
	linkPath := filepath.Join(t.TempDir(), "linked-dir")
	require.NoError(t, os.Symlink(realDir, linkPath))

	result, err := ResolvePath(linkPath)
	require.NoError(t, err)
	assert.Equal(t, realDir, result.AbsPath, "should resolve symlink to real path")
}

func TestResolvePath_DetectsGitRoot(t *testing.T) {
	dir := realTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o750))
	subdir := filepath.Join(dir, "sub", "deep")
	require.NoError(t, os.MkdirAll(subdir, 0o750))

	info, err := ResolvePath(subdir)
	require.NoError(t, err)
	assert.Equal(t, subdir, info.AbsPath)
	assert.Equal(t, dir, info.GitRoot)
}

func TestConfigDir(t *testing.T) {
	root := realTempDir(t)
	sub := filepath.Join(root, "services", "billing")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	info := &PathInfo{AbsPath: sub, GitRoot: root}

	assert.Equal(t, sub, configDir(info), "no config anywhere")

	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte("min_lines: 3\n"), 0o600))
	assert.Equal(t, root, configDir(info), "falls back to the git root")

	require.NoError(t, os.WriteFile(filepath.Join(sub, config.FileName), []byte("min_lines: 4\n"), 0o600))
	assert.Equal(t, sub, configDir(info), "base directory wins")
}
