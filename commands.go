package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pyscip/internal/config"
	"github.com/phobologic/pyscip/internal/graph"
	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/ranking"
	"github.com/phobologic/pyscip/internal/snapshot"
	"github.com/phobologic/pyscip/internal/store"
	"github.com/phobologic/pyscip/internal/symbol"
	"github.com/phobologic/pyscip/internal/toon"
)

func addProjectFlags(cmd *cobra.Command, pf *projectFlags) {
	f := cmd.Flags()
	f.StringVar(&pf.configPath, "config", "", "config file (default <root>/" + config.FileName + ")")
	f.StringVar(&pf.projectName, "project-name", "", "project name used in package symbols")
	f.StringVar(&pf.projectVersion, "project-version", "", "project version used in package symbols")
	f.StringVar(&pf.pythonVersion, "python-version", "", "Python version used for builtins and the standard library")
	f.IntVarP(&pf.workers, "workers", "j", 0, "number of files processed concurrently (0 = GOMAXPROCS)")
}

// indexProject runs the shared front half of every indexing command.
func (a *app) indexProject(ctx context.Context, args []string, pf projectFlags) (*indexRun, error) {
	root, err := resolveRoot(args)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root, pf)
	if err != nil {
		return nil, err
	}
	paths, err := discoverFiles(root, cfg, a.logger)
	if err != nil {
		return nil, err
	}
	return buildIndex(ctx, root, cfg, paths, a.logger)
}

func newIndexCmd(a *app) *cobra.Command {
	var (
		pf          projectFlags
		toonPath    string
		dbPath      string
		snapshotDir string
		metricsFile string
	)
	cmd := &cobra.Command{
		Use:   "index [root]",
		Short: "Index a Python project",
		Long: `Index every Python file under root (default: the current directory).

Outputs are taken from the [output] table of pyscip.toml and may be
overridden by flags. With no output configured the index is written to
stdout as TOON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ir, err := a.indexProject(cmd.Context(), args, pf)
			if err != nil {
				return err
			}

			out := ir.cfg.Output
			out.Toon = pick(toonPath, rootRelative(ir.root, out.Toon))
			out.DB = pick(dbPath, rootRelative(ir.root, out.DB))
			out.SnapshotDir = pick(snapshotDir, rootRelative(ir.root, out.SnapshotDir))
			out.MetricsFile = pick(metricsFile, rootRelative(ir.root, out.MetricsFile))
			if out.Toon == "" && out.DB == "" && out.SnapshotDir == "" {
				out.Toon = "-"
			}

			if err := a.writeOutputs(cmd.Context(), ir, out.Toon, out.DB, out.SnapshotDir); err != nil {
				return err
			}
			if out.MetricsFile != "" {
				if err := ir.metrics.WriteTextfile(out.MetricsFile); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(a.stderr, "indexed %d files (%d failed)\n", len(ir.index.Documents), len(ir.index.Failures))
			for _, f := range ir.index.Failures {
				_, _ = fmt.Fprintf(a.stderr, "  %s: %s\n", f.Path, f.Reason)
			}
			return nil
		},
	}
	addProjectFlags(cmd, &pf)
	cmd.Flags().StringVar(&toonPath, "toon", "", `write the index as TOON to this file ("-" for stdout)`)
	cmd.Flags().StringVar(&dbPath, "db", "", "save the index to this SQLite database")
	cmd.Flags().StringVar(&snapshotDir, "snapshot-dir", "", "write annotated source snapshots to this directory")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	return cmd
}

func (a *app) writeOutputs(ctx context.Context, ir *indexRun, toonPath, dbPath, snapshotDir string) error {
	if toonPath != "" {
		encoded := toon.EncodeIndex(ir.index)
		if toonPath == "-" {
			if _, err := fmt.Fprintln(a.stdout, encoded); err != nil {
				return err
			}
		} else if err := writeFile(toonPath, encoded+"\n"); err != nil {
			return err
		}
	}

	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		id, err := st.SaveIndex(ctx, ir.index)
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		a.logger.Info("saved index", "db", dbPath, "run", id)
	}

	if snapshotDir != "" {
		if err := snapshot.WriteIndex(ir.index, ir.root, snapshotDir); err != nil {
			return err
		}
	}
	return nil
}

func newSnapshotCmd(a *app) *cobra.Command {
	var (
		pf  projectFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "snapshot [root]",
		Short: "Write annotated source snapshots of a Python project",
		Long: `Index root and write a copy of every file to the output directory with
each occurrence annotated on the line below it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ir, err := a.indexProject(cmd.Context(), args, pf)
			if err != nil {
				return err
			}
			if err := snapshot.WriteIndex(ir.index, ir.root, out); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.stderr, "wrote %d snapshots to %s\n", len(ir.index.Documents), out)
			return nil
		},
	}
	addProjectFlags(cmd, &pf)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// newRefsCmd builds the "refs" command, or "def" when defsOnly is set.
func newRefsCmd(a *app, defsOnly bool) *cobra.Command {
	var (
		pf     projectFlags
		dbPath string
		root   string
	)
	use, short := "refs SYMBOL", "List every occurrence of a symbol"
	if defsOnly {
		use, short = "def SYMBOL", "Show where a symbol is defined"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

With --db the latest run saved in the database is queried; otherwise the
project at --root is indexed first. Local symbols are file-scoped and
cannot be queried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sym := strings.TrimSpace(args[0])
			if symbol.IsLocalString(sym) {
				return store.ErrLocalSymbol
			}

			var (
				locs []model.Location
				docs []string
			)
			if dbPath != "" {
				st, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer st.Close()
				if defsOnly {
					locs, err = st.Definitions(cmd.Context(), sym)
				} else {
					locs, err = st.References(cmd.Context(), sym)
				}
				if err != nil {
					return err
				}
				if defsOnly {
					if docs, err = st.Documentation(cmd.Context(), sym); err != nil {
						return err
					}
				}
			} else {
				ir, err := a.indexProject(cmd.Context(), []string{root}, pf)
				if err != nil {
					return err
				}
				if defsOnly {
					locs = graph.Definitions(ir.index, sym)
					docs = documentation(ir.index, sym)
				} else {
					locs = graph.References(ir.index, sym)
				}
			}

			if len(locs) == 0 {
				_, _ = fmt.Fprintf(a.stderr, "no occurrences of %s\n", sym)
				return nil
			}
			return printLocations(a.stdout, locs, docs)
		},
	}
	addProjectFlags(cmd, &pf)
	cmd.Flags().StringVar(&dbPath, "db", "", "query this SQLite database instead of indexing")
	cmd.Flags().StringVar(&root, "root", ".", "project to index when --db is not given")
	return cmd
}

func newFailuresCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List the files whose indexing was aborted in the latest saved run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			failures, err := st.Failures(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range failures {
				if _, err := fmt.Fprintf(a.stdout, "%s: %s\n", f.Path, f.Reason); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by pyscip index")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func newDepsCmd(a *app) *cobra.Command {
	var (
		pf         projectFlags
		maxFiles   int
		fileFilter string
		symFilter  string
		cachePath  string
	)
	cmd := &cobra.Command{
		Use:   "deps [root]",
		Short: "Print the ranked file dependency map of a Python project",
		Long: `Index root and print, as TOON, its files ranked by PageRank over the
graph of cross-file symbol references, followed by the dependency edges.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(root, pf)
			if err != nil {
				return err
			}
			paths, err := discoverFiles(root, cfg, a.logger)
			if err != nil {
				return err
			}

			if cachePath != "" && cacheIsFresh(cachePath, root, paths) {
				data, err := os.ReadFile(cachePath)
				if err == nil {
					_, _ = a.stdout.Write(data)
					return nil
				}
			}

			ir, err := buildIndex(cmd.Context(), root, cfg, paths, a.logger)
			if err != nil {
				return err
			}

			deps := graph.BuildGraph(ir.index)
			dm := &model.DepMap{
				Project:      ir.index.Metadata.ProjectName,
				Files:        graph.Rank(ir.index, deps),
				Dependencies: deps,
			}
			if fileFilter != "" {
				dm = ranking.FilterByFile(dm, fileFilter)
			}
			if symFilter != "" {
				dm = ranking.FilterBySymbol(dm, symFilter)
			}
			dm = ranking.SelectFiles(dm, maxFiles)

			output := toon.EncodeDepMap(dm)
			if cachePath != "" {
				if err := writeFile(cachePath, output+"\n"); err != nil {
					a.logger.Warn("failed to write cache", "path", cachePath, "error", err)
				}
			}
			_, err = fmt.Fprintln(a.stdout, output)
			return err
		},
	}
	addProjectFlags(cmd, &pf)
	cmd.Flags().IntVarP(&maxFiles, "max-files", "n", 0, "maximum number of files to include")
	cmd.Flags().StringVar(&fileFilter, "file", "", "only files whose path contains this text")
	cmd.Flags().StringVar(&symFilter, "symbol", "", "only edges carrying a symbol containing this text")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path")
	return cmd
}

// documentation returns the first non-empty documentation recorded for sym.
func documentation(idx *model.Index, sym string) []string {
	for _, doc := range idx.Documents {
		for _, info := range doc.Symbols {
			if info.Symbol == sym && len(info.Documentation) > 0 {
				return info.Documentation
			}
		}
	}
	return nil
}

// printLocations writes one "path:line:col role" line per location, with
// 1-based lines and columns, followed by any documentation.
func printLocations(w io.Writer, locs []model.Location, docs []string) error {
	for _, loc := range locs {
		if _, err := fmt.Fprintf(w, "%s:%d:%d %s\n", loc.Path, loc.Range.Start.Line+1, loc.Range.Start.Character+1, loc.Role); err != nil {
			return err
		}
	}
	for _, d := range docs {
		if _, err := fmt.Fprintf(w, "\n%s\n", d); err != nil {
			return err
		}
	}
	return nil
}

func pick(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

// rootRelative anchors a configured output path at the project root.
func rootRelative(root, p string) string {
	if p == "" || p == "-" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
