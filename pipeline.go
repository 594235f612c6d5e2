package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/phobologic/pyscip/internal/analysis"
	"github.com/phobologic/pyscip/internal/config"
	"github.com/phobologic/pyscip/internal/discover"
	"github.com/phobologic/pyscip/internal/indexer"
	"github.com/phobologic/pyscip/internal/metrics"
	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
	pyversion "github.com/phobologic/pyscip/internal/version"
)

// projectFlags are the command-line overrides shared by every command that
// indexes a project. Empty values leave the configuration untouched.
type projectFlags struct {
	configPath     string
	projectName    string
	projectVersion string
	pythonVersion  string
	workers        int
}

// indexRun is the outcome of indexing a project.
type indexRun struct {
	root    string
	cfg     *config.Config
	files   []string
	index   *model.Index
	metrics *metrics.Metrics
}

// resolveRoot returns the absolute path of a project directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

// loadConfig reads the project configuration and applies flag overrides.
func loadConfig(root string, pf projectFlags) (*config.Config, error) {
	path := pf.configPath
	if path == "" {
		path = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if pf.projectName != "" {
		cfg.ProjectName = pf.projectName
	}
	if pf.projectVersion != "" {
		cfg.ProjectVersion = pf.projectVersion
	}
	if pf.pythonVersion != "" {
		cfg.PythonVersion = pf.pythonVersion
	}
	if pf.workers != 0 {
		cfg.Workers = pf.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// projectIdentity fills in the project name and version, preferring the
// configuration, then pyproject.toml, then the directory name.
func projectIdentity(root string, cfg *config.Config, logger *slog.Logger) (name, ver string) {
	name, ver = cfg.ProjectName, cfg.ProjectVersion
	if name == "" || ver == "" {
		pn, pv, err := pyversion.FromPyproject(root)
		if err != nil {
			logger.Debug("no usable pyproject.toml", "root", root, "error", err)
		}
		if name == "" {
			name = pn
		}
		if ver == "" {
			ver = pv
		}
	}
	if name == "" {
		name = filepath.Base(root)
	}
	if ver == "" {
		ver = pyversion.Unknown
	}
	return name, ver
}

// discoverFiles lists the project's Python files.
func discoverFiles(root string, cfg *config.Config, logger *slog.Logger) ([]string, error) {
	paths, err := discover.Files(root, discover.Options{
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no Python files found in %s", root)
	}
	return paths, nil
}

// buildIndex parses, binds and indexes the given files of the project at
// root.
func buildIndex(ctx context.Context, root string, cfg *config.Config, paths []string, logger *slog.Logger) (*indexRun, error) {
	m := metrics.New()

	start := time.Now()
	files := parse.ParseAll(ctx, root, paths, cfg.SourceRoots, cfg.Workers, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files could be parsed")
	}
	prog, err := analysis.NewProgram(ctx, files, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("binding files: %w", err)
	}
	m.ParseDuration.Observe(time.Since(start).Seconds())

	name, ver := projectIdentity(root, cfg, logger)
	resolver := pyversion.New(pyversion.Config{
		PythonVersion:   cfg.PythonVersion,
		ProjectVersion:  ver,
		ProjectPackages: prog.TopLevelPackages(),
		Overrides:       cfg.Versions,
		SitePackages:    absPaths(root, cfg.SitePackages),
		Logger:          logger,
	})

	idx, err := indexer.IndexProject(ctx, prog.Files(), prog, resolver, indexer.Options{
		PythonVersion: cfg.PythonVersion,
		Workers:       cfg.Workers,
		Metadata: model.Metadata{
			ProjectRoot:    root,
			ProjectName:    name,
			ProjectVersion: ver,
			ToolName:       "pyscip",
			ToolVersion:    version,
		},
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("indexed project",
		"project", name,
		"files", len(idx.Documents),
		"failed", len(idx.Failures),
		"elapsed", time.Since(start))

	return &indexRun{root: root, cfg: cfg, files: paths, index: idx, metrics: m}, nil
}

func absPaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		out = append(out, p)
	}
	return out
}

// cacheIsFresh reports whether the file at cachePath is newer than every
// source file of the project.
func cacheIsFresh(cachePath, root string, files []string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}
