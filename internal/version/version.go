// Package version resolves the package version used in package-rooted
// symbols, so that every file referencing a module produces the same
// package descriptor.
package version

import (
	"bufio"
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Unknown is the version used when none can be discovered.
const Unknown = "unknown"

//go:embed stdlib.txt
var stdlibList string

var stdlib = func() map[string]bool {
	m := make(map[string]bool)
	for _, line := range strings.Split(stdlibList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			m[line] = true
		}
	}
	return m
}()

// IsStdlib reports whether module belongs to the standard library.
func IsStdlib(module string) bool {
	top, _, _ := strings.Cut(module, ".")
	return stdlib[top]
}

// Config configures a Resolver.
type Config struct {
	PythonVersion  string
	ProjectVersion string
	// ProjectPackages are the top-level packages of the indexed project.
	ProjectPackages []string
	// Overrides maps a module or top-level package to a fixed version.
	Overrides map[string]string
	// SitePackages are directories searched for *.dist-info metadata.
	SitePackages []string
	Logger       *slog.Logger
}

// Resolver answers version queries. It is safe for concurrent use.
type Resolver struct {
	pythonVersion  string
	projectVersion string
	project        map[string]bool
	overrides      map[string]string
	sitePackages   []string
	logger         *slog.Logger

	distOnce sync.Once
	dist     map[string]string

	mu    sync.Mutex
	cache map[string]string
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	r := &Resolver{
		pythonVersion:  cfg.PythonVersion,
		projectVersion: cfg.ProjectVersion,
		project:        make(map[string]bool, len(cfg.ProjectPackages)),
		overrides:      cfg.Overrides,
		sitePackages:   cfg.SitePackages,
		logger:         cfg.Logger,
		cache:          make(map[string]string),
	}
	if r.pythonVersion == "" {
		r.pythonVersion = "3.9"
	}
	if r.projectVersion == "" {
		r.projectVersion = Unknown
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for _, p := range cfg.ProjectPackages {
		r.project[p] = true
	}
	return r
}

// PythonVersion returns the version used for builtins and the standard
// library.
func (r *Resolver) PythonVersion() string { return r.pythonVersion }

// Resolve returns the version of the package providing module. The file
// path is accepted for parity with callers that resolve per file; lookups
// depend only on the module. Failure degrades to Unknown.
func (r *Resolver) Resolve(_ string, module string) string {
	r.mu.Lock()
	v, ok := r.cache[module]
	r.mu.Unlock()
	if ok {
		return v
	}

	v = r.resolve(module)

	r.mu.Lock()
	r.cache[module] = v
	r.mu.Unlock()
	return v
}

func (r *Resolver) resolve(module string) string {
	top, _, _ := strings.Cut(module, ".")
	if v, ok := r.overrides[module]; ok {
		return v
	}
	if v, ok := r.overrides[top]; ok {
		return v
	}
	if stdlib[top] {
		return r.pythonVersion
	}
	if r.project[top] {
		return r.projectVersion
	}
	r.distOnce.Do(r.loadDistributions)
	if v, ok := r.dist[top]; ok {
		return v
	}
	return Unknown
}

// loadDistributions indexes the *.dist-info directories of every
// site-packages directory by the top-level modules they provide.
func (r *Resolver) loadDistributions() {
	r.dist = make(map[string]string)
	for _, dir := range r.sitePackages {
		matches, err := filepath.Glob(filepath.Join(dir, "*.dist-info"))
		if err != nil {
			continue
		}
		for _, info := range matches {
			name, version, ok := parseDistInfoName(filepath.Base(info))
			if !ok {
				continue
			}
			tops := readTopLevel(filepath.Join(info, "top_level.txt"))
			if len(tops) == 0 {
				tops = []string{normalizeDistName(name)}
			}
			for _, t := range tops {
				if _, seen := r.dist[t]; !seen {
					r.dist[t] = version
				}
			}
		}
		r.logger.Debug("loaded site-packages", "dir", dir, "distributions", len(matches))
	}
}

// parseDistInfoName splits "requests-2.31.0.dist-info" into its name and
// version.
func parseDistInfoName(base string) (name, version string, ok bool) {
	base = strings.TrimSuffix(base, ".dist-info")
	i := strings.LastIndex(base, "-")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	return base[:i], base[i+1:], true
}

func normalizeDistName(name string) string {
	return strings.ToLower(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

func readTopLevel(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var tops []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			tops = append(tops, line)
		}
	}
	return tops
}
