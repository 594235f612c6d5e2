package analysis

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pyscip/internal/lang"
	"github.com/phobologic/pyscip/internal/parse"
)

// newProgram parses path → source pairs and binds them.
func newProgram(t *testing.T, sources map[string]string) *Program {
	t.Helper()
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parser := lang.Python.NewParser()
	t.Cleanup(parser.Close)

	files := make([]*parse.File, 0, len(paths))
	for _, p := range paths {
		f, err := parse.Parse(context.Background(), parser, []byte(sources[p]), p, parse.ModuleName(p, nil))
		require.NoError(t, err)
		files = append(files, f)
	}
	prog, err := NewProgram(context.Background(), files, 2)
	require.NoError(t, err)
	return prog
}

// nameAt returns the nth (0-based) Name token with the given text in path.
func nameAt(t *testing.T, p *Program, path, text string, nth int) *parse.Node {
	t.Helper()
	for _, f := range p.Files() {
		if f.Path != path {
			continue
		}
		for _, n := range f.Nodes {
			if n.Kind == parse.KindName && n.Text() == text {
				if nth == 0 {
					return n
				}
				nth--
			}
		}
	}
	t.Fatalf("no Name %q in %s", text, path)
	return nil
}

func TestDeclarationsDefinitionSites(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "class A:\n    def foo(self, x):\n        return x\n",
	})

	a := nameAt(t, p, "m.py", "A", 0)
	ds := p.Declarations(a)
	require.Len(t, ds, 1)
	assert.Equal(t, DeclClass, ds[0].Kind)
	assert.Same(t, a.Parent, ds[0].Node)

	x := nameAt(t, p, "m.py", "x", 0)
	ds = p.Declarations(x)
	require.Len(t, ds, 1)
	assert.Equal(t, DeclParameter, ds[0].Kind)
	assert.Same(t, x.Parent, ds[0].Node)

	use := nameAt(t, p, "m.py", "x", 1)
	ds = p.Declarations(use)
	require.Len(t, ds, 1)
	assert.Same(t, x.Parent, ds[0].Node)
}

func TestDeclarationsAssignmentOrder(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "x = 1\nx = 2\nprint(x)\n",
	})

	first := nameAt(t, p, "m.py", "x", 0)
	for i := 0; i < 3; i++ {
		ds := p.Declarations(nameAt(t, p, "m.py", "x", i))
		require.Len(t, ds, 2)
		assert.Same(t, first, ds[0].Node)
	}
	assert.Empty(t, p.Declarations(nameAt(t, p, "m.py", "print", 0)))
}

func TestClassScopeNotVisibleFromMethods(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "y = 0\nclass A:\n    y = 1\n    def f(self):\n        return y\n",
	})

	use := nameAt(t, p, "m.py", "y", 2)
	ds := p.Declarations(use)
	require.Len(t, ds, 1)
	assert.Same(t, nameAt(t, p, "m.py", "y", 0), ds[0].Node)
}

func TestGlobalStatement(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "def f():\n    global g\n    g = 1\n\nprint(g)\n",
	})

	use := nameAt(t, p, "m.py", "g", 2)
	ds := p.Declarations(use)
	require.Len(t, ds, 1)
	assert.Same(t, nameAt(t, p, "m.py", "g", 1), ds[0].Node)
}

func TestAnnotatedClassAttributes(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "class E:\n    a: int\n    def __init__(self, a):\n        self.a = a\n        self.extra = 1\n    def use(self):\n        return self.extra\n",
	})

	// self.a resolves to the class-level annotation.
	attr := nameAt(t, p, "m.py", "a", 2)
	require.Equal(t, "attribute", attr.Field)
	ds := p.Declarations(attr)
	require.Len(t, ds, 1)
	assert.Equal(t, parse.KindTypeAnnotation, ds[0].Node.Kind)

	// self.extra resolves to its first assignment.
	def := nameAt(t, p, "m.py", "extra", 0)
	use := nameAt(t, p, "m.py", "extra", 1)
	ds = p.Declarations(use)
	require.Len(t, ds, 1)
	assert.Same(t, def, ds[0].Node)
}

func TestMemberThroughBaseClassAndInstance(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "class Base:\n    def ping(self):\n        pass\n\nclass Child(Base):\n    pass\n\nc = Child()\nc.ping()\n",
	})

	ping := nameAt(t, p, "m.py", "ping", 1)
	ds := p.Declarations(ping)
	require.Len(t, ds, 1)
	assert.Equal(t, DeclFunction, ds[0].Kind)
	assert.Equal(t, "ping", ds[0].Name)
}

func TestKeywordArgumentResolvesParameter(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "def f(alpha, beta=2):\n    pass\n\nf(1, beta=3)\n",
	})

	kw := nameAt(t, p, "m.py", "beta", 1)
	ds := p.Declarations(kw)
	require.Len(t, ds, 1)
	assert.Equal(t, DeclParameter, ds[0].Kind)
	assert.Same(t, nameAt(t, p, "m.py", "beta", 0).Parent, ds[0].Node)
}

func TestCrossFileImports(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/models.py":   "class Cart:\n    pass\n\nLIMIT = 3\n",
		"pkg/views.py":    "from .models import Cart, LIMIT as L\nimport requests\nfrom . import models\n\nCart()\nrequests.get\nmodels.Cart\nL\n",
	})

	views := "pkg/views.py"

	cart := nameAt(t, p, views, "Cart", 1)
	ds := p.Declarations(cart)
	require.Len(t, ds, 1)
	assert.True(t, p.IsAlias(ds[0]))
	typ := p.TypeOfDeclaration(ds[0])
	assert.Equal(t, Class, typ.Category)
	assert.Equal(t, "pkg/models.py", typ.Decl.Node.File().Path)

	l := nameAt(t, p, views, "L", 1)
	ds = p.Declarations(l)
	require.Len(t, ds, 1)
	typ = p.TypeOfDeclaration(ds[0])
	assert.Equal(t, Variable, typ.Category)
	assert.Equal(t, "LIMIT", typ.Decl.Name)

	req := nameAt(t, p, views, "requests", 1)
	ds = p.Declarations(req)
	require.Len(t, ds, 1)
	typ = p.TypeOf(ds[0].Node)
	assert.Equal(t, Module, typ.Category)
	assert.Equal(t, "requests", typ.Module)

	// "from . import models" resolves to the submodule.
	mod := nameAt(t, p, views, "models", 2)
	ds = p.Declarations(mod)
	require.Len(t, ds, 1)
	typ = p.TypeOfDeclaration(ds[0])
	assert.Equal(t, Module, typ.Category)
	assert.Equal(t, "pkg.models", typ.Module)

	// models.Cart goes through the module table and comes back as an alias.
	member := nameAt(t, p, views, "Cart", 2)
	ds = p.Declarations(member)
	require.Len(t, ds, 1)
	assert.True(t, p.IsAlias(ds[0]))
	assert.Equal(t, DeclClass, ds[0].Target.Kind)
}

func TestExternalImportFrom(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "from requests.adapters import HTTPAdapter\n",
	})

	f := p.Module("m")
	require.NotNil(t, f)
	var clause *parse.Node
	for _, n := range f.Nodes {
		if n.Kind == parse.KindImportFromAs {
			clause = n
		}
	}
	require.NotNil(t, clause)
	typ := p.TypeOf(clause)
	assert.Equal(t, External, typ.Category)
	assert.Equal(t, "requests.adapters", typ.Module)
	assert.Equal(t, "HTTPAdapter", typ.Name)
}

func TestWildcardImport(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"a.py": "def helper():\n    pass\n\ndef _private():\n    pass\n",
		"b.py": "from a import *\nhelper()\n_private()\n",
	})

	ds := p.Declarations(nameAt(t, p, "b.py", "helper", 0))
	require.Len(t, ds, 1)
	assert.True(t, p.IsAlias(ds[0]))
	assert.Equal(t, DeclFunction, ds[0].Target.Kind)

	assert.Empty(t, p.Declarations(nameAt(t, p, "b.py", "_private", 0)))
}

func TestIntrinsicsAndSynthetic(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "print(__name__)\nclass A:\n    q = __qualname__\n    def f(self):\n        return __class__\n",
	})

	ds := p.Declarations(nameAt(t, p, "m.py", "__name__", 0))
	require.Len(t, ds, 1)
	assert.True(t, p.IsIntrinsic(ds[0]))
	assert.Equal(t, parse.KindModule, ds[0].Node.Kind)

	ds = p.Declarations(nameAt(t, p, "m.py", "__qualname__", 0))
	require.Len(t, ds, 1)
	assert.True(t, p.IsIntrinsic(ds[0]))
	assert.Equal(t, parse.KindClass, ds[0].Node.Kind)

	ds = p.Declarations(nameAt(t, p, "m.py", "__class__", 0))
	require.Len(t, ds, 1)
	assert.Nil(t, ds[0].Node)
}

func TestImportPathHasNoDeclarations(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{"m.py": "import os.path\n"})
	assert.Empty(t, p.Declarations(nameAt(t, p, "m.py", "path", 0)))
}

func TestBuiltinType(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{"m.py": "len([])\n"})
	n := nameAt(t, p, "m.py", "len", 0)

	typ := p.TypeOf(n)
	require.Equal(t, Builtin, typ.Category)
	assert.Equal(t, BuiltinFunction, typ.Builtin.Kind)
	assert.NotEmpty(t, typ.Builtin.Doc)

	assert.Equal(t, BuiltinClass, p.BuiltinType(n, "int").Builtin.Kind)
	assert.True(t, p.BuiltinType(n, "not_a_builtin").IsUnknown())
}

func TestResolveModule(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"pkg/__init__.py": "from .sub import x\n",
		"pkg/sub/mod.py":  "from .. import y\nfrom ..other import z\nfrom . import w\n",
	})

	var got []string
	for _, path := range []string{"pkg/__init__.py", "pkg/sub/mod.py"} {
		for _, f := range p.Files() {
			if f.Path != path {
				continue
			}
			for _, n := range f.Nodes {
				if n.Kind == parse.KindImportFrom {
					got = append(got, p.ResolveModule(n))
				}
			}
		}
	}
	assert.Equal(t, []string{"pkg.sub", "pkg", "pkg.other", "pkg.sub"}, got)
}

func TestTopLevelPackages(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"app/a.py": "",
		"app/b.py": "",
		"tool.py":  "",
	})
	assert.Equal(t, []string{"app", "tool"}, p.TopLevelPackages())
}

func TestBuiltinNameAsAttribute(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{"m.py": "import numpy\nnumpy.sum(x)\nsum(x)\n"})
	attr := nameAt(t, p, "m.py", "sum", 0)
	require.Equal(t, "attribute", attr.Field)
	assert.True(t, p.TypeOf(attr).IsUnknown())
	assert.Equal(t, Builtin, p.TypeOf(nameAt(t, p, "m.py", "sum", 1)).Category)
}
