package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pyscip/internal/parse"
)

// maxDepth bounds alias chains, wildcard re-exports and member lookups
// through base classes.
const maxDepth = 16

// Program is the bound view of a set of files.
type Program struct {
	files   map[*parse.File]*fileInfo
	modules map[string]*fileInfo
	order   []*parse.File
}

// NewProgram binds every file, using up to workers goroutines (0 means
// GOMAXPROCS), and then links import declarations across files. When two
// files claim the same module name the first one wins.
func NewProgram(ctx context.Context, files []*parse.File, workers int) (*Program, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	infos := make([]*fileInfo, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			infos[i] = bindFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("binding files: %w", err)
	}

	p := &Program{
		files:   make(map[*parse.File]*fileInfo, len(files)),
		modules: make(map[string]*fileInfo, len(files)),
		order:   files,
	}
	for _, fi := range infos {
		p.files[fi.file] = fi
		if _, dup := p.modules[fi.file.Module]; !dup {
			p.modules[fi.file.Module] = fi
		}
	}
	p.link()
	return p, nil
}

// Files returns the program's files in the order they were given.
func (p *Program) Files() []*parse.File { return p.order }

// Module returns the file defining module name, or nil.
func (p *Program) Module(name string) *parse.File {
	if fi := p.modules[name]; fi != nil {
		return fi.file
	}
	return nil
}

// TopLevelPackages returns the sorted first segments of every module name.
func (p *Program) TopLevelPackages() []string {
	seen := make(map[string]bool)
	for name := range p.modules {
		top, _, _ := strings.Cut(name, ".")
		seen[top] = true
	}
	tops := make([]string, 0, len(seen))
	for t := range seen {
		tops = append(tops, t)
	}
	sort.Strings(tops)
	return tops
}

// ModuleScope returns the module-level scope of f, or nil if f is not part
// of the program.
func (p *Program) ModuleScope(f *parse.File) *Scope {
	if fi := p.files[f]; fi != nil {
		return fi.module
	}
	return nil
}

// link resolves every "from m import x" declaration against the module
// table. It runs once, before the program is shared.
func (p *Program) link() {
	for _, f := range p.order {
		fi := p.files[f]
		for _, d := range fi.imports {
			d.Module = p.ResolveModule(d.Node.Parent)
			target := p.modules[d.Module]
			if target != nil {
				if ds := p.lookupInModule(target, d.Name, 0); len(ds) > 0 && ds[0] != d {
					d.Target = ds[0]
					continue
				}
			}
			if sub := d.Module + "." + d.Name; p.modules[sub] != nil {
				d.Module = sub
				d.Name = ""
			}
		}
	}
}

// ResolveModule returns the absolute module name an import statement or
// import clause refers to. Relative imports are resolved against the
// importing file's package.
func (p *Program) ResolveModule(n *parse.Node) string {
	switch n.Kind {
	case parse.KindImportAs:
		if n.Module == nil {
			return ""
		}
		return dottedName(n.Module)
	case parse.KindImportFromAs:
		return p.ResolveModule(n.Parent)
	case parse.KindImportFrom:
	default:
		return ""
	}
	if n.Module == nil {
		return ""
	}

	text := strings.Join(strings.Fields(n.Module.Text()), "")
	dots := len(text) - len(strings.TrimLeft(text, "."))
	rest := text[dots:]
	if dots == 0 {
		return rest
	}

	f := n.File()
	base := strings.Split(f.Module, ".")
	if !f.IsPackageInit() {
		base = base[:len(base)-1]
	}
	for i := 1; i < dots && len(base) > 0; i++ {
		base = base[:len(base)-1]
	}
	if rest != "" {
		base = append(base, rest)
	}
	return strings.Join(base, ".")
}

// lookupInModule finds name at the top level of a module, following
// wildcard imports of other project modules.
func (p *Program) lookupInModule(fi *fileInfo, name string, depth int) []*Declaration {
	if ds := fi.module.names[name]; len(ds) > 0 {
		return ds
	}
	if depth >= maxDepth || strings.HasPrefix(name, "_") {
		return nil
	}
	for _, w := range fi.module.wildcards {
		target := p.modules[p.ResolveModule(w)]
		if target == nil || target == fi {
			continue
		}
		if ds := p.lookupInModule(target, name, depth+1); len(ds) > 0 {
			return ds
		}
	}
	return nil
}
