package indexer

import (
	"github.com/phobologic/pyscip/internal/parse"
	"github.com/phobologic/pyscip/internal/symbol"
)

// foreignSymbol returns the symbol of a definition in another file. It
// applies the builder's nesting rules without this file's scope stack, cache
// or local counter, so it yields only global symbols; anything else
// degrades to a local of this file.
func (fx *fileIndexer) foreignSymbol(n *parse.Node) symbol.Symbol {
	if s, ok := fx.foreign[n]; ok {
		return s
	}
	s := qualify(n, fx.packageSymbol)
	if !s.IsGlobal() {
		s = fx.local(n, "cannot qualify %s in %s", n.Kind, n.File().Path)
	}
	fx.foreign[n] = s
	return s
}

func qualify(n *parse.Node, pkg func(module string) symbol.Symbol) symbol.Symbol {
	var (
		owner *parse.Node
		d     symbol.Descriptor
	)
	switch n.Kind {
	case parse.KindModule:
		return pkg(n.File().Module)
	case parse.KindClass:
		owner, d = n.Parent, symbol.Type(nameOf(n))
	case parse.KindFunction:
		owner = n.EnclosingClass()
		if owner == nil {
			owner = n.Parent
		}
		d = symbol.Method(nameOf(n))
	case parse.KindParameter:
		fn := n.EnclosingFunction()
		if n.Name == nil || fn == nil || fn.Kind != parse.KindFunction {
			return symbol.Empty()
		}
		owner, d = fn, symbol.Parameter(n.Name.Text())
	case parse.KindName:
		owner, d = n.EnclosingBlock(), symbol.Term(n.Text())
	case parse.KindTypeAnnotation:
		if n.Name == nil {
			return symbol.Empty()
		}
		owner, d = n.EnclosingBlock(), symbol.Term(n.Name.Text())
	default:
		if n.Parent == nil {
			return symbol.Empty()
		}
		return qualify(n.Parent, pkg)
	}
	if owner == nil {
		return symbol.Empty()
	}
	return symbol.Global(qualify(owner, pkg), d)
}
