package parse

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/phobologic/pyscip/internal/lang"
)

// ParseAll reads and parses the files at the given root-relative paths using
// a pool of workers, each with its own parser. Files that cannot be read or
// parsed are logged and left out. The result keeps the order of paths.
func ParseAll(ctx context.Context, root string, paths, sourceRoots []string, workers int, logger *slog.Logger) []*File {
	if logger == nil {
		logger = slog.Default()
	}
	if len(paths) == 0 {
		return nil
	}

	type result struct {
		index int
		file  *File
	}

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	work := make(chan int, len(paths))
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Parsers are not safe for concurrent use.
			parser := lang.Python.NewParser()
			defer parser.Close()

			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				rel := paths[idx]
				source, err := os.ReadFile(filepath.Join(root, rel))
				if err != nil {
					logger.Warn("failed to read file", "path", rel, "error", err)
					continue
				}
				f, err := Parse(ctx, parser, source, rel, ModuleName(rel, sourceRoots))
				if err != nil {
					logger.Warn("failed to parse file", "path", rel, "error", err)
					continue
				}
				if f.HasErrors {
					logger.Debug("file has syntax errors", "path", rel)
				}
				results <- result{index: idx, file: f}
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*File, len(paths))
	for r := range results {
		indexed[r.index] = r.file
	}

	var files []*File
	for _, f := range indexed {
		if f != nil {
			files = append(files, f)
		}
	}
	return files
}
