package indexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pyscip/internal/analysis"
	"github.com/phobologic/pyscip/internal/parse"
)

// catchAbort runs fn and returns the error of a fatal condition it raised.
func catchAbort(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			err = a.err
		}
	}()
	fn()
	return nil
}

func newTestIndexer(t *testing.T, src string) (*fileIndexer, *parse.File) {
	t.Helper()
	prog := bind(t, map[string]string{"m.py": src})
	f := prog.Module("m")
	require.NotNil(t, f)
	return newFileIndexer(f, prog, fakeVersions{}, Options{}), f
}

func firstOfKind(t *testing.T, f *parse.File, kind parse.Kind) *parse.Node {
	t.Helper()
	for _, n := range f.Nodes {
		if n.Kind == kind {
			return n
		}
	}
	t.Fatalf("no %s node", kind)
	return nil
}

func TestScopeStack(t *testing.T) {
	t.Parallel()

	fx, f := newTestIndexer(t, "class A:\n    def f(self):\n        pass\n")
	cls := firstOfKind(t, f, parse.KindClass)
	fn := firstOfKind(t, f, parse.KindFunction)

	var s scopeStack
	assert.True(t, s.empty())
	s.enter(cls)
	assert.True(t, s.insideClass())
	s.enter(fn)
	assert.False(t, s.insideClass())
	assert.Equal(t, 2, s.depth())
	assert.Same(t, fn, s.exit())
	assert.Same(t, cls, s.exit())
	assert.True(t, s.empty())

	err := catchAbort(func() { s.exit() })
	assert.True(t, errors.Is(err, ErrUnbalancedScope))

	err = catchAbort(func() { s.enter(firstOfKind(t, f, parse.KindName)) })
	assert.True(t, errors.Is(err, ErrUnsupportedScope))

	// A body that leaves a scope open unbalances its parent.
	err = catchAbort(func() {
		fx.scoped(cls, func() { fx.scopes.enter(fn) })
	})
	assert.True(t, errors.Is(err, ErrUnbalancedScope))
}

func TestSymbolCache(t *testing.T) {
	t.Parallel()

	fx, f := newTestIndexer(t, "class A:\n    def f(self, x):\n        return x\n")
	var param *parse.Node
	for _, n := range f.Nodes {
		if n.Kind == parse.KindParameter && n.Name != nil && n.Name.Text() == "x" {
			param = n
		}
	}
	require.NotNil(t, param)

	first := fx.symbolFor(param)
	size := fx.cache.size()
	second := fx.symbolFor(param)
	assert.Equal(t, first, second)
	assert.Equal(t, size, fx.cache.size())
	assert.Equal(t, "m unknown A#f().(x)", first.String())

	err := catchAbort(func() { fx.cache.put(param, first) })
	assert.True(t, errors.Is(err, ErrInvariant))
}

func TestBuilderNeverFails(t *testing.T) {
	t.Parallel()

	src := `import os
from . import sibling
from os.path import *

@decorator
class A(Base):
    x: int = 1

    def f(self, *args, key=None, **kw):
        total = sum(args) + len(kw)
        with open("f") as fh:
            for i in range(3):
                yield [j for j in fh if j]
        return lambda q: q

def g(a, /, b, *, c):
    try:
        pass
    except ValueError as e:
        raise
`
	fx, f := newTestIndexer(t, src)
	for _, n := range f.Nodes {
		switch n.Kind {
		case parse.KindMemberAccess, parse.KindDecorator:
			continue
		case parse.KindTypeAnnotation:
			if n.Name == nil {
				continue
			}
		}
		var s string
		err := catchAbort(func() { s = fx.symbolFor(n).String() })
		require.NoError(t, err, "%s node %d", n.Kind, n.ID)
		if n.Kind == parse.KindImportFrom || n.Parent != nil && n.Parent.Kind == parse.KindImportFrom {
			// Import-from statements anchor no identifier of their own.
			continue
		}
		assert.NotEmpty(t, s, "%s node %d", n.Kind, n.ID)
		assert.Equal(t, strings.TrimSpace(s), s)
	}
	assert.NotEmpty(t, fx.doc.Diagnostics)
}

func TestBuilderFallbackUsesParent(t *testing.T) {
	t.Parallel()

	fx, f := newTestIndexer(t, "def f():\n    g()\n")
	call := firstOfKind(t, f, parse.KindCall)
	fn := firstOfKind(t, f, parse.KindFunction)

	before := len(fx.doc.Diagnostics)
	got := fx.symbolFor(call)
	assert.Equal(t, fx.symbolFor(fn), got)
	assert.Equal(t, "m unknown f().", got.String())
	require.Len(t, fx.doc.Diagnostics, before+1)
	assert.Equal(t, call.ID, fx.doc.Diagnostics[before].Node)
}

func TestBuilderRejectsUnbuildableKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		kind parse.Kind
	}{
		{"member access", "a.b\n", parse.KindMemberAccess},
		{"decorator", "@dec\ndef f():\n    pass\n", parse.KindDecorator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fx, f := newTestIndexer(t, tt.src)
			err := catchAbort(func() { fx.symbolFor(firstOfKind(t, f, tt.kind)) })
			assert.True(t, errors.Is(err, ErrInvariant), "got %v", err)
		})
	}
}

func TestDeclarationWithoutNodeIsSkipped(t *testing.T) {
	t.Parallel()

	src := "class C:\n    def f(self):\n        return __class__\n"
	doc := indexOne(t, src)

	noOccAt(t, doc, 2, strings.Index("        return __class__", "__class__"))
	assert.Empty(t, doc.Diagnostics)
}

func TestAssignmentSymbolDependsOnScope(t *testing.T) {
	t.Parallel()

	fx, f := newTestIndexer(t, "x = 1\ndef f():\n    y = 2\n")
	var assigns []*parse.Node
	for _, n := range f.Nodes {
		if n.Kind == parse.KindAssignment {
			assigns = append(assigns, n)
		}
	}
	require.Len(t, assigns, 2)

	assert.Equal(t, "m unknown x.", fx.symbolFor(assigns[0]).String())

	fx.scopes.enter(firstOfKind(t, f, parse.KindFunction))
	local := fx.symbolFor(assigns[1])
	assert.True(t, local.IsLocal())
}

func TestTypeToSymbol(t *testing.T) {
	t.Parallel()

	fx, f := newTestIndexer(t, "len\n")
	tok := firstOfKind(t, f, parse.KindName)

	tests := []struct {
		name string
		typ  analysis.Type
		want string
	}{
		{"module", analysis.Type{Category: analysis.Module, Module: "os.path"}, "os.path unknown"},
		{"external", analysis.Type{Category: analysis.External, Module: "requests", Name: "get"}, "requests unknown get."},
		{"builtin class", analysis.Type{Category: analysis.Builtin, Name: "int", Builtin: &analysis.BuiltinInfo{Name: "int", Kind: analysis.BuiltinClass}}, "builtins 3.9 int#"},
		{"builtin function", analysis.Type{Category: analysis.Builtin, Name: "len", Builtin: &analysis.BuiltinInfo{Name: "len", Kind: analysis.BuiltinFunction}}, "builtins 3.9 len()."},
		{"intrinsic", analysis.Type{Category: analysis.Builtin, Name: "__file__"}, "builtins 3.9 __file__."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fx.typeToSymbol(tok, tt.typ).String(), tt.name)
	}

	before := len(fx.doc.Diagnostics)
	for _, typ := range []analysis.Type{
		{Category: analysis.Function},
		{Category: analysis.Instance},
		{},
	} {
		s := fx.typeToSymbol(tok, typ)
		assert.True(t, s.IsLocal(), typ.Category.String())
	}
	assert.Len(t, fx.doc.Diagnostics, before+3)
}

func TestPythonVersionOption(t *testing.T) {
	t.Parallel()

	prog := bind(t, map[string]string{"m.py": "len([])\n"})
	doc, err := IndexFile(prog.Module("m"), prog, fakeVersions{}, Options{PythonVersion: "3.12"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.Occurrences)
	assert.Equal(t, "builtins 3.12 len().", doc.Occurrences[0].Symbol)
}
