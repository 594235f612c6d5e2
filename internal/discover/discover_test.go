package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	writeFile(t, dir, "lib/util.pyi", "def helper() -> None: ...")
	// Non-Python file should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, "tool.go", "package tool")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.py", "secret")

	paths, err := Files(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/util.py", "lib/util.pyi", "main.py"}, paths)
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, "shop.egg-info/setup.py", "pass")

	paths, err := Files(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, paths)
}

func TestDiscoverExclude(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/app.py", "pass")
	writeFile(t, dir, "src/app_test.py", "pass")
	writeFile(t, dir, "tests/test_app.py", "pass")
	writeFile(t, dir, "tests/fixtures/data.py", "pass")

	paths, err := Files(dir, Options{Exclude: []string{"tests/**", "**/*_test.py"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.py"}, paths)
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "generated/\n*_pb2.py\n")
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "api_pb2.py", "pass")
	writeFile(t, dir, "generated/models.py", "pass")

	paths, err := Files(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, paths)
}

func TestDiscoverMaxFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "small.py", "x = 1\n")
	writeFile(t, dir, "big.py", strings.Repeat("x = 1\n", 100))

	paths, err := Files(dir, Options{MaxFileSize: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, paths)
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "real.py", "pass")
	if err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py")); err != nil {
		t.Skip("symlinks not supported")
	}

	paths, err := Files(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py"}, paths)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
