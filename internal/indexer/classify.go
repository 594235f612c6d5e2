package indexer

import (
	"github.com/phobologic/pyscip/internal/analysis"
	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
)

// visitName classifies a name token and emits its occurrence. Only the
// first declaration is consulted. Writes are reported as reads.
func (fx *fileIndexer) visitName(tok *parse.Node) {
	decls := fx.collab.Declarations(tok)
	if len(decls) == 0 {
		fx.visitUndeclared(tok)
		return
	}

	d := decls[0]
	switch {
	case d.Node == nil:
		// Synthetic declaration with nothing to point at.

	case fx.collab.IsIntrinsic(d):
		fx.emit(tok, fx.builtinSymbol(d.Name, nil), model.ReadAccess)

	case fx.imports[d.Node]:
		fx.emit(tok, fx.typeToSymbol(tok, fx.collab.TypeOf(d.Node)), model.ReadAccess)

	case d.Node == tok.Parent:
		fx.emit(tok, fx.symbolFor(d.Node), model.Definition)

	case fx.collab.IsAlias(d):
		fx.emit(tok, fx.typeToSymbol(tok, fx.collab.TypeOfDeclaration(d)), model.ReadAccess)

	case d.Node == tok:
		fx.emit(tok, fx.symbolFor(tok), model.Definition)

	default:
		if d.Node.File() == fx.file {
			if s, ok := fx.cache.get(d.Node); ok {
				fx.emit(tok, s, model.ReadAccess)
				return
			}
		}
		// First use of a declaration not visited yet.
		fx.emit(tok, fx.symbolFor(d.Node), model.ReadAccess)
	}
}

// visitUndeclared handles a token the collaborator could not resolve:
// import path segments are left to the import visitor, builtins resolve to
// the builtins package, and anything else is not recorded.
func (fx *fileIndexer) visitUndeclared(tok *parse.Node) {
	if tok.InImportPath() {
		return
	}
	t := fx.collab.BuiltinType(tok, tok.Text())
	if t.Category != analysis.Builtin {
		return
	}
	sym := fx.builtinSymbol(t.Name, t.Builtin)
	if t.Builtin != nil && t.Builtin.Kind == analysis.BuiltinFunction && !fx.builtins[t.Name] {
		fx.builtins[t.Name] = true
		var docs []string
		if t.Builtin.Doc != "" {
			docs = []string{t.Builtin.Doc}
		}
		fx.info(sym, docs)
	}
	fx.emit(tok, sym, model.ReadAccess)
}
