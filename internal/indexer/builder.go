package indexer

import (
	"strings"

	"github.com/phobologic/pyscip/internal/analysis"
	"github.com/phobologic/pyscip/internal/parse"
	"github.com/phobologic/pyscip/internal/symbol"
)

// symbolFor returns the symbol of n, computing it at most once per file.
// It never fails: unhandled shapes degrade to the parent's symbol or a fresh
// local, with a diagnostic.
func (fx *fileIndexer) symbolFor(n *parse.Node) symbol.Symbol {
	if n.File() != fx.file {
		return fx.foreignSymbol(n)
	}
	if s, ok := fx.cache.get(n); ok {
		return s
	}
	s := fx.build(n)
	fx.cache.put(n, s)
	return s
}

func (fx *fileIndexer) build(n *parse.Node) symbol.Symbol {
	switch n.Kind {
	case parse.KindModule:
		return fx.packageSymbol(n.File().Module)

	case parse.KindClass:
		return fx.nest(n, fx.parentSymbol(n), symbol.Type(nameOf(n)))

	case parse.KindFunction:
		if cls := n.EnclosingClass(); cls != nil {
			return fx.nest(n, fx.symbolFor(cls), symbol.Method(nameOf(n)))
		}
		return fx.nest(n, fx.parentSymbol(n), symbol.Method(nameOf(n)))

	case parse.KindParameter:
		fn := n.EnclosingFunction()
		if n.Name == nil || fn == nil || fn.Kind != parse.KindFunction {
			return fx.local(n, "parameter %q has no name or no owning function", n.Text())
		}
		return fx.nest(n, fx.symbolFor(fn), symbol.Parameter(n.Name.Text()))

	case parse.KindName:
		return fx.blockTerm(n, n.Text())

	case parse.KindTypeAnnotation:
		if n.Name == nil {
			fatalf(n, ErrInvariant, "annotated target %q is not a simple name", n.Text())
		}
		return fx.blockTerm(n, n.Name.Text())

	case parse.KindAssignment:
		if !fx.scopes.empty() {
			return fx.freshLocal()
		}
		module := fx.symbolFor(fx.file.Root)
		if target := assignedName(n); target != nil {
			return symbol.Global(module, symbol.Term(target.Text()))
		}
		return module

	case parse.KindImportAs:
		if n.Module == nil {
			return fx.local(n, "import clause without a module")
		}
		return fx.packageSymbol(dotted(n.Module))

	case parse.KindImportFrom:
		return symbol.Empty()

	case parse.KindImportFromAs:
		return fx.typeToSymbol(n, fx.collab.TypeOf(n))

	case parse.KindSuite, parse.KindStatementList, parse.KindIf, parse.KindLoop,
		parse.KindWith, parse.KindTry, parse.KindTuple, parse.KindComprehension,
		parse.KindArgumentList, parse.KindBinaryOperation, parse.KindDecorated,
		parse.KindLambda, parse.KindParameterList, parse.KindModuleName:
		return fx.parentSymbol(n)

	case parse.KindMemberAccess, parse.KindDecorator:
		fatalf(n, ErrInvariant, "%s node reached the symbol builder", n.Kind)

	case parse.KindImport, parse.KindCall, parse.KindKeywordArgument,
		parse.KindConstant, parse.KindOther:
	}

	fx.diagnose(n, "no symbol rule for %s node", n.Kind)
	if n.Parent != nil {
		return fx.symbolFor(n.Parent)
	}
	return fx.freshLocal()
}

func (fx *fileIndexer) parentSymbol(n *parse.Node) symbol.Symbol {
	if n.Parent == nil {
		return fx.local(n, "%s node has no parent", n.Kind)
	}
	return fx.symbolFor(n.Parent)
}

// blockTerm scopes a name to its nearest enclosing block rather than to the
// full class and function nesting.
func (fx *fileIndexer) blockTerm(n *parse.Node, name string) symbol.Symbol {
	block := n.EnclosingBlock()
	if block == nil {
		return fx.local(n, "name %q outside any block", name)
	}
	return fx.nest(n, fx.symbolFor(block), symbol.Term(name))
}

// nest appends d to owner. A local or empty owner cannot carry descriptors,
// so the result is a fresh local instead.
func (fx *fileIndexer) nest(n *parse.Node, owner symbol.Symbol, d symbol.Descriptor) symbol.Symbol {
	if !owner.IsGlobal() {
		return fx.local(n, "owner of %s is not a global symbol", d)
	}
	return symbol.Global(owner, d)
}

func (fx *fileIndexer) freshLocal() symbol.Symbol {
	s := symbol.Local(fx.nextLocal)
	fx.nextLocal++
	return s
}

// local records a diagnostic and returns a fresh local symbol.
func (fx *fileIndexer) local(n *parse.Node, format string, args ...any) symbol.Symbol {
	fx.diagnose(n, format, args...)
	return fx.freshLocal()
}

func (fx *fileIndexer) packageSymbol(module string) symbol.Symbol {
	if module == analysis.BuiltinsModule {
		return symbol.NewPackage(module, fx.pyver)
	}
	return symbol.NewPackage(module, fx.versions.Resolve(fx.file.Path, module))
}

func (fx *fileIndexer) builtinSymbol(name string, info *analysis.BuiltinInfo) symbol.Symbol {
	pkg := symbol.NewPackage(analysis.BuiltinsModule, fx.pyver)
	if info == nil {
		return symbol.Global(pkg, symbol.Term(name))
	}
	switch info.Kind {
	case analysis.BuiltinClass:
		return symbol.Global(pkg, symbol.Type(name))
	case analysis.BuiltinFunction:
		return symbol.Global(pkg, symbol.Method(name))
	}
	return symbol.Global(pkg, symbol.Term(name))
}

// typeToSymbol builds the symbol an evaluated type refers to, rooted in the
// module that defines it.
func (fx *fileIndexer) typeToSymbol(n *parse.Node, t analysis.Type) symbol.Symbol {
	switch t.Category {
	case analysis.Module:
		return fx.packageSymbol(t.Module)
	case analysis.Class, analysis.Function, analysis.Variable:
		if t.Decl == nil || t.Decl.Node == nil {
			return fx.local(n, "%s type of %q has no declaration", t.Category, n.Text())
		}
		return fx.symbolFor(t.Decl.Node)
	case analysis.External:
		return symbol.Global(fx.packageSymbol(t.Module), symbol.Term(t.Name))
	case analysis.Builtin:
		return fx.builtinSymbol(t.Name, t.Builtin)
	}
	return fx.local(n, "cannot build a symbol for %s type of %q", t.Category, n.Text())
}

func nameOf(n *parse.Node) string {
	if n.Name == nil {
		return ""
	}
	return n.Name.Text()
}

// assignedName returns the simple name an assignment binds, or nil.
func assignedName(assign *parse.Node) *parse.Node {
	left := assign.Child("left")
	switch {
	case left == nil:
		return nil
	case left.Kind == parse.KindName:
		return left
	case left.Kind == parse.KindTypeAnnotation && left.Name != nil:
		return left.Name
	}
	return nil
}

// unpackedNames returns the names bound by a tuple or list target, starred
// targets included, in source order.
func unpackedNames(left *parse.Node) []*parse.Node {
	if left == nil || left.Kind != parse.KindTuple {
		return nil
	}
	var names []*parse.Node
	var collect func(*parse.Node)
	collect = func(n *parse.Node) {
		switch {
		case n.Kind == parse.KindName:
			names = append(names, n)
		case n.Kind == parse.KindTuple, n.Type == "list_splat_pattern":
			for _, c := range n.Children {
				collect(c)
			}
		}
	}
	collect(left)
	return names
}

// dotted joins the segments of a ModuleName.
func dotted(mn *parse.Node) string {
	parts := make([]string, 0, len(mn.Children))
	for _, c := range mn.Children {
		parts = append(parts, c.Text())
	}
	return strings.Join(parts, ".")
}
