package indexer

import (
	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
)

func (fx *fileIndexer) visit(n *parse.Node) {
	switch n.Kind {
	case parse.KindModule:
		var docs []string
		if doc, ok := fx.collab.Docstring(n); ok {
			docs = []string{doc}
		}
		fx.info(fx.symbolFor(n), docs)
		fx.visitChildren(n)

	case parse.KindClass:
		fx.info(fx.symbolFor(n), fx.definitionDocs(n))
		for _, c := range n.Children {
			if c.Field == "body" {
				fx.scoped(n, func() { fx.visit(c) })
			} else {
				fx.visit(c)
			}
		}

	case parse.KindFunction:
		fx.info(fx.symbolFor(n), fx.definitionDocs(n))
		for _, c := range n.Children {
			if c.Field == "parameters" || c.Field == "body" {
				fx.scoped(n, func() { fx.visit(c) })
			} else {
				fx.visit(c)
			}
		}

	case parse.KindParameter:
		if n.Name != nil {
			fx.info(fx.symbolFor(n), fx.parameterDocs(n))
		}
		fx.visitChildren(n)

	case parse.KindAssignment:
		fx.visitAssignment(n)
		fx.visitChildren(n)

	case parse.KindImportAs:
		fx.imports[n] = true
		sym := fx.symbolFor(n)
		if n.Module != nil {
			fx.emit(n.Module, sym, model.ReadAccess)
		}
		if n.Alias != nil {
			fx.visitName(n.Alias)
		}

	case parse.KindImportFrom:
		fx.symbolFor(n)
		if n.Module != nil {
			if module := fx.collab.ResolveModule(n); module != "" {
				fx.emit(n.Module, fx.packageSymbol(module), model.ReadAccess)
			}
		}
		for _, c := range n.Children {
			if c.Kind == parse.KindImportFromAs {
				fx.visit(c)
			}
		}

	case parse.KindImportFromAs:
		fx.imports[n] = true
		sym := fx.symbolFor(n)
		if n.Name != nil {
			fx.emit(n.Name, sym, model.ReadAccess)
		}
		if n.Alias != nil {
			fx.emit(n.Alias, sym, model.ReadAccess)
		}

	case parse.KindName:
		fx.visitName(n)

	default:
		fx.visitChildren(n)
	}
}

func (fx *fileIndexer) visitChildren(n *parse.Node) {
	for _, c := range n.Children {
		fx.visit(c)
	}
}

// scoped runs fn with n pushed on the scope stack and checks that fn left
// the stack as it found it.
func (fx *fileIndexer) scoped(n *parse.Node, fn func()) {
	before := fx.scopes.depth()
	fx.scopes.enter(n)
	fn()
	if top := fx.scopes.exit(); top != n {
		fatalf(n, ErrUnbalancedScope, "exited %s while leaving %s", top.Kind, n.Kind)
	}
	if after := fx.scopes.depth(); after != before {
		fatalf(n, ErrUnbalancedScope, "depth %d after scope, want %d", after, before)
	}
}

// visitAssignment emits symbol information for assignments that define a
// module global or a class attribute through a simple name.
func (fx *fileIndexer) visitAssignment(n *parse.Node) {
	if !fx.scopes.empty() && !fx.scopes.insideClass() {
		return
	}
	target := assignedName(n)
	unpacked := unpackedNames(n.Child("left"))
	if target == nil && len(unpacked) == 0 {
		return
	}
	var docs []string
	if doc, ok := fx.collab.AttributeDocstring(n); ok {
		docs = []string{doc}
	}
	switch {
	case target == nil:
		for _, name := range unpacked {
			fx.info(fx.symbolFor(name), docs)
		}
	case fx.scopes.empty():
		fx.info(fx.symbolFor(n), docs)
	default:
		fx.info(fx.symbolFor(n.Child("left")), docs)
	}
}

// definitionDocs renders a class or function signature as a fenced block,
// followed by its docstring.
func (fx *fileIndexer) definitionDocs(n *parse.Node) []string {
	docs := []string{"```python\n" + fx.collab.Signature(n) + "\n```"}
	if doc, ok := fx.collab.Docstring(n); ok {
		docs = append(docs, doc)
	}
	return docs
}

func (fx *fileIndexer) parameterDocs(p *parse.Node) []string {
	fn := p.EnclosingFunction()
	if fn == nil || fn.Kind != parse.KindFunction {
		return nil
	}
	doc, ok := fx.collab.Docstring(fn)
	if !ok {
		return nil
	}
	if pd, ok := fx.collab.ParameterDoc(doc, p.Name.Text()); ok {
		return []string{pd}
	}
	return nil
}
