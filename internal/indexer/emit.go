package indexer

import (
	"fmt"
	"strings"

	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/parse"
	"github.com/phobologic/pyscip/internal/symbol"
)

// emit appends an occurrence of sym spanning tok.
func (fx *fileIndexer) emit(tok *parse.Node, sym symbol.Symbol, role model.Role) {
	if sym.IsEmpty() {
		fx.diagnose(tok, "no symbol for %q", tok.Text())
		return
	}
	s := sym.String()
	if strings.TrimSpace(s) != s {
		fx.logger.Error("symbol has surrounding whitespace", "symbol", s, "node", tok.ID)
	}
	fx.doc.AddOccurrence(model.Occurrence{
		Symbol: s,
		Range:  tok.Range(),
		Role:   role,
	})
}

// info appends a symbol information record.
func (fx *fileIndexer) info(sym symbol.Symbol, docs []string) {
	if sym.IsEmpty() {
		return
	}
	fx.doc.AddSymbol(model.SymbolInformation{Symbol: sym.String(), Documentation: docs})
}

// diagnose records a recoverable problem.
func (fx *fileIndexer) diagnose(n *parse.Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fx.logger.Debug(msg, "node", n.ID, "kind", n.Kind.String())
	diag := model.Diagnostic{Node: n.ID, Message: msg}
	if n.File() == fx.file {
		diag.Range = n.Range()
	}
	fx.doc.AddDiagnostic(diag)
}
