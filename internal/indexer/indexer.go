// Package indexer turns a parsed, bound file into a Document: a symbol for
// every definition and an occurrence for every name that resolves to one.
//
// Each file is traversed depth-first by its own fileIndexer, which owns the
// scope stack, the symbol cache and the local counter for that file.
// Nothing but symbol values is shared between files.
package indexer

import (
	"log/slog"

	"github.com/phobologic/pyscip/internal/analysis"
	"github.com/phobologic/pyscip/internal/metrics"
	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
	"github.com/phobologic/pyscip/internal/symbol"
)

// Collaborator answers the semantic questions the indexer asks.
// *analysis.Program implements it.
type Collaborator interface {
	Declarations(name *parse.Node) []*analysis.Declaration
	TypeOf(n *parse.Node) analysis.Type
	TypeOfDeclaration(d *analysis.Declaration) analysis.Type
	BuiltinType(n *parse.Node, name string) analysis.Type
	IsIntrinsic(d *analysis.Declaration) bool
	IsAlias(d *analysis.Declaration) bool
	ResolveModule(n *parse.Node) string

	Docstring(n *parse.Node) (string, bool)
	AttributeDocstring(assign *parse.Node) (string, bool)
	ParameterDoc(doc, param string) (string, bool)
	Signature(n *parse.Node) string
}

// VersionResolver returns the package version for a module.
type VersionResolver interface {
	Resolve(path, module string) string
}

// Options configures indexing.
type Options struct {
	// PythonVersion versions the builtins package. Defaults to "3.9".
	PythonVersion string
	// Workers bounds the number of files indexed concurrently by
	// IndexProject. 0 means GOMAXPROCS.
	Workers  int
	Metadata model.Metadata
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

func (o Options) pythonVersion() string {
	if o.PythonVersion == "" {
		return "3.9"
	}
	return o.PythonVersion
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

type fileIndexer struct {
	file     *parse.File
	collab   Collaborator
	versions VersionResolver
	pyver    string
	logger   *slog.Logger

	doc       *model.Document
	scopes    scopeStack
	cache     *symbolCache
	foreign   map[*parse.Node]symbol.Symbol
	imports   map[*parse.Node]bool
	builtins  map[string]bool
	nextLocal int
}

func newFileIndexer(f *parse.File, collab Collaborator, versions VersionResolver, opts Options) *fileIndexer {
	return &fileIndexer{
		file:     f,
		collab:   collab,
		versions: versions,
		pyver:    opts.pythonVersion(),
		logger:   opts.logger().With("path", f.Path),
		doc:      model.NewDocument(f.Path, f.Module),
		cache:    newSymbolCache(),
		foreign:  make(map[*parse.Node]symbol.Symbol),
		imports:  make(map[*parse.Node]bool),
		builtins: make(map[string]bool),
	}
}

// IndexFile indexes a single file. A fatal condition aborts this file only
// and is returned as a *FatalError; recoverable problems are recorded as
// diagnostics on the document.
func IndexFile(f *parse.File, collab Collaborator, versions VersionResolver, opts Options) (doc *model.Document, err error) {
	fx := newFileIndexer(f, collab, versions, opts)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		a, ok := r.(abort)
		if !ok {
			panic(r)
		}
		id := -1
		if a.node != nil {
			id = a.node.ID
		}
		doc, err = nil, &FatalError{Path: f.Path, Node: id, Err: a.err}
	}()

	fx.visit(f.Root)
	if d := fx.scopes.depth(); d != 0 {
		fatalf(f.Root, ErrUnbalancedScope, "%d scopes still open at end of file", d)
	}
	return fx.doc, nil
}
