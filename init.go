package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pyscip/internal/config"
)

const (
	sentinelStart = "<!-- pyscip:start -->"
	sentinelEnd   = "<!-- pyscip:end -->"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		force  bool
		agents string
	)
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter pyscip.toml",
		Long: `Write a commented pyscip.toml to dir (default: the current directory).
An existing file is left alone unless --force is given.

With --agents, also write a pyscip usage section to the named markdown file
(for example AGENTS.md). The section is wrapped in sentinel comments so it
can be updated in place on later runs without touching surrounding content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)

			if dryRun {
				_, _ = fmt.Fprint(a.stdout, config.Template())
			} else if err := writeConfig(path, force); err != nil {
				return err
			} else {
				_, _ = fmt.Fprintf(a.stderr, "wrote %s\n", path)
			}

			if agents == "" {
				return nil
			}
			existing, err := os.ReadFile(agents)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("reading %s: %w", agents, err)
			}
			updated := applySection(string(existing), generateSection())
			if dryRun {
				_, _ = fmt.Fprint(a.stdout, updated)
				return nil
			}
			if err := os.WriteFile(agents, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", agents, err)
			}
			_, _ = fmt.Fprintf(a.stderr, "wrote pyscip section to %s\n", agents)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying any file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing pyscip.toml")
	cmd.Flags().StringVar(&agents, "agents", "", "also write a usage section to this markdown file")
	return cmd
}

func writeConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// generateSection returns the full sentinel-wrapped pyscip documentation block.
func generateSection() string {
	body := `## pyscip: Python symbol index

Run ` + "`pyscip`" + ` via the shell to answer "where is this defined" and "who uses
this" questions about the Python code in this repository, instead of grepping.

**Run it:**
` + "```" + `bash
pyscip index --db .pyscip/index.db             # index the project once
pyscip def --db .pyscip/index.db 'pkg.mod unknown Cart#add().'
pyscip refs --db .pyscip/index.db 'pkg.mod unknown Cart#'
pyscip deps -n 20                              # most central files first
` + "```" + `

**Symbols** look like ` + "`<module> <version> <descriptors>`" + `: ` + "`Name#`" + ` is a class,
` + "`name().`" + ` a function or method, ` + "`name.`" + ` a variable and ` + "`(name)`" + ` a
parameter. ` + "`pyscip index`" + ` with no output flags prints every symbol as TOON.

**How to use the output:**

1. **Re-index after editing.** The database reflects the last ` + "`pyscip index`" + `
   run only.

2. **Local symbols** (` + "`local N`" + `) are private to one file and cannot be
   queried; look them up in the snapshot or TOON output instead.

3. **Read files in ranked order.** ` + "`pyscip deps`" + ` sorts files by PageRank over
   cross-file references; start at the top.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
