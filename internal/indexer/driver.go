package indexer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
)

// IndexProject indexes files concurrently and returns the documents in path
// order. A file whose indexing aborts is reported in Index.Failures and does
// not affect any other file.
func IndexProject(ctx context.Context, files []*parse.File, collab Collaborator, versions VersionResolver, opts Options) (*model.Index, error) {
	sorted := make([]*parse.File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.logger()

	docs := make([]*model.Document, len(sorted))
	errs := make([]error, len(sorted))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range sorted {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			docs[i], errs[i] = IndexFile(f, collab, versions, opts)
			opts.Metrics.ObserveFile(time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("indexing files: %w", err)
	}

	idx := &model.Index{Metadata: opts.Metadata}
	idx.Metadata.PythonVersion = opts.pythonVersion()
	for i, f := range sorted {
		if err := errs[i]; err != nil {
			var fe *FatalError
			if !errors.As(err, &fe) {
				return nil, err
			}
			logger.Warn("indexing aborted", "path", f.Path, "node", fe.Node, "error", fe.Err)
			idx.Failures = append(idx.Failures, model.Failure{Path: f.Path, Reason: fe.Err.Error()})
			if m := opts.Metrics; m != nil {
				m.FilesAborted.Inc()
			}
			continue
		}
		idx.Documents = append(idx.Documents, docs[i])
		record(opts, docs[i])
	}
	logger.Debug("indexed project", "documents", len(idx.Documents), "failures", len(idx.Failures))
	return idx, nil
}

func record(opts Options, doc *model.Document) {
	m := opts.Metrics
	if m == nil {
		return
	}
	m.FilesIndexed.Inc()
	for _, occ := range doc.Occurrences {
		m.Occurrences.WithLabelValues(occ.Role.String()).Inc()
	}
	m.Symbols.Add(float64(len(doc.Symbols)))
	m.Diagnostics.Add(float64(len(doc.Diagnostics)))
}
