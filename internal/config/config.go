// Package config loads pyscip.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the conventional configuration file name.
const FileName = "pyscip.toml"

const (
	defaultPythonVersion = "3.9"
	defaultMaxFileSize   = 1_000_000 // 1 MB
)

// Config is the decoded configuration.
type Config struct {
	ProjectName    string            `toml:"project_name"`
	ProjectVersion string            `toml:"project_version"`
	PythonVersion  string            `toml:"python_version"`
	SourceRoots    []string          `toml:"source_roots"`
	SitePackages   []string          `toml:"site_packages"`
	Workers        int               `toml:"workers"`
	MaxFileSize    int64             `toml:"max_file_size"`
	Exclude        []string          `toml:"exclude"`
	Versions       map[string]string `toml:"versions"`
	Output         Output            `toml:"output"`
}

// Output selects what an index run writes besides its summary.
type Output struct {
	Toon        string `toml:"toon"`
	DB          string `toml:"db"`
	SnapshotDir string `toml:"snapshot_dir"`
	MetricsFile string `toml:"metrics_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the file at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.PythonVersion) == "" {
		cfg.PythonVersion = defaultPythonVersion
	}
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{"."}
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.Versions == nil {
		cfg.Versions = make(map[string]string)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must be >= 0, got %d", c.MaxFileSize)
	}
	if strings.ContainsAny(c.PythonVersion, " \t") {
		return fmt.Errorf("python_version %q contains whitespace", c.PythonVersion)
	}
	for _, root := range c.SourceRoots {
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("source_roots contains an empty entry")
		}
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	for module, v := range c.Versions {
		if strings.TrimSpace(module) == "" || strings.TrimSpace(v) == "" {
			return fmt.Errorf("versions entry %q = %q must name a module and a version", module, v)
		}
	}
	return nil
}

// Template returns a commented configuration file with the default values.
func Template() string {
	return `# pyscip configuration.

# Name and version used for symbols defined in this project. When empty they
# are read from pyproject.toml, falling back to the root directory name and
# "unknown".
project_name = ""
project_version = ""

# Version used for the builtins package and standard library modules.
python_version = "` + defaultPythonVersion + `"

# Directories that module names are computed relative to.
source_roots = ["."]

# Directories searched for *.dist-info metadata of installed packages.
site_packages = []

# Files indexed concurrently; 0 uses every CPU.
workers = 0

# Files larger than this many bytes are skipped.
max_file_size = ` + fmt.Sprint(defaultMaxFileSize) + `

# Glob patterns (doublestar syntax) of paths to skip.
exclude = ["**/node_modules/**", "**/.venv/**"]

# Versions for external packages, by top-level module.
[versions]
# requests = "2.31.0"

[output]
# toon = "index.toon"
# db = ".pyscip/index.db"
# snapshot_dir = "snapshots"
# metrics_file = "pyscip.prom"
`
}
