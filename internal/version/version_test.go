package version

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	writeFile(t, filepath.Join(site, "requests-2.31.0.dist-info", "METADATA"), "Name: requests\n")
	writeFile(t, filepath.Join(site, "PyYAML-6.0.1.dist-info", "top_level.txt"), "_yaml\nyaml\n")
	writeFile(t, filepath.Join(site, "Flask_Login-0.6.3.dist-info", "METADATA"), "")

	r := New(Config{
		PythonVersion:   "3.11",
		ProjectVersion:  "1.2.0",
		ProjectPackages: []string{"shop"},
		Overrides:       map[string]string{"numpy": "1.26.0", "os": "custom"},
		SitePackages:    []string{site},
	})

	tests := []struct {
		module string
		want   string
	}{
		{"builtins", "3.11"},
		{"collections.abc", "3.11"},
		{"os.path", "custom"},
		{"shop.models", "1.2.0"},
		{"requests", "2.31.0"},
		{"requests.adapters", "2.31.0"},
		{"yaml", "6.0.1"},
		{"flask_login", "0.6.3"},
		{"numpy.linalg", "1.26.0"},
		{"nowhere", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Resolve("any.py", tt.module))
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	r := New(Config{ProjectPackages: []string{"app"}})
	assert.Equal(t, "3.9", r.PythonVersion())
	assert.Equal(t, Unknown, r.Resolve("app/x.py", "app.x"))
	assert.Equal(t, Unknown, r.Resolve("app/x.py", "requests"))
}

func TestResolveConsistentAcrossGoroutines(t *testing.T) {
	t.Parallel()

	site := t.TempDir()
	writeFile(t, filepath.Join(site, "attrs-23.1.0.dist-info", "top_level.txt"), "attr\nattrs\n")
	r := New(Config{SitePackages: []string{site}})

	var wg sync.WaitGroup
	got := make([]string, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = r.Resolve("f.py", "attr.validators")
		}()
	}
	wg.Wait()
	for _, v := range got {
		assert.Equal(t, "23.1.0", v)
	}
}

func TestIsStdlib(t *testing.T) {
	t.Parallel()

	assert.True(t, IsStdlib("os"))
	assert.True(t, IsStdlib("xml.etree.ElementTree"))
	assert.False(t, IsStdlib("requests"))
}

func TestParseDistInfoName(t *testing.T) {
	t.Parallel()

	name, v, ok := parseDistInfoName("typing_extensions-4.8.0.dist-info")
	require.True(t, ok)
	assert.Equal(t, "typing_extensions", name)
	assert.Equal(t, "4.8.0", v)

	_, _, ok = parseDistInfoName("broken.dist-info")
	assert.False(t, ok)
}

func TestFromPyproject(t *testing.T) {
	t.Parallel()

	t.Run("project table", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project]\nname = \"shop\"\nversion = \"0.4.0\"\n")
		name, v, err := FromPyproject(dir)
		require.NoError(t, err)
		assert.Equal(t, "shop", name)
		assert.Equal(t, "0.4.0", v)
	})

	t.Run("poetry", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "pyproject.toml"), "[tool.poetry]\nname = \"legacy\"\nversion = \"2.0\"\n")
		name, v, err := FromPyproject(dir)
		require.NoError(t, err)
		assert.Equal(t, "legacy", name)
		assert.Equal(t, "2.0", v)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		name, v, err := FromPyproject(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, name)
		assert.Empty(t, v)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "pyproject.toml"), "[project\n")
		_, _, err := FromPyproject(dir)
		assert.Error(t, err)
	})
}
