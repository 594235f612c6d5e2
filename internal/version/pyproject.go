package version

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type pyproject struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// FromPyproject reads the project name and version from root/pyproject.toml,
// preferring the [project] table over [tool.poetry]. A missing file is not
// an error and yields empty strings.
func FromPyproject(root string) (name, version string, err error) {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if errors.Is(err, os.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("reading pyproject.toml: %w", err)
	}

	var pp pyproject
	if _, err := toml.Decode(string(data), &pp); err != nil {
		return "", "", fmt.Errorf("parsing pyproject.toml: %w", err)
	}

	name, version = pp.Project.Name, pp.Project.Version
	if name == "" {
		name = pp.Tool.Poetry.Name
	}
	if version == "" {
		version = pp.Tool.Poetry.Version
	}
	return name, version, nil
}
