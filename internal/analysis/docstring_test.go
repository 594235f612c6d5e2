package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pyscip/internal/parse"
)

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

func TestDocstrings(t *testing.T) {
	t.Parallel()

	src := `"""Module doc."""

class A:
    """Class summary.

    More detail.
    """

    def f(self):
        r'''Raw doc.'''
        return 1

LIMIT = 10
"""The limit."""

OTHER = 1
`
	p := newProgram(t, map[string]string{"m.py": src})
	f := p.Module("m")
	require.NotNil(t, f)

	doc, ok := p.Docstring(f.Root)
	require.True(t, ok)
	assert.Equal(t, "Module doc.", doc)

	doc, ok = p.Docstring(firstOfKind(t, f, parse.KindClass))
	require.True(t, ok)
	assert.Equal(t, "Class summary.\n\nMore detail.", doc)

	doc, ok = p.Docstring(firstOfKind(t, f, parse.KindFunction))
	require.True(t, ok)
	assert.Equal(t, "Raw doc.", doc)

	var assigns []*parse.Node
	for _, n := range f.Nodes {
		if n.Kind == parse.KindAssignment {
			assigns = append(assigns, n)
		}
	}
	require.Len(t, assigns, 2)
	doc, ok = p.AttributeDocstring(assigns[0])
	require.True(t, ok)
	assert.Equal(t, "The limit.", doc)
	_, ok = p.AttributeDocstring(assigns[1])
	assert.False(t, ok)
}

func TestNoDocstring(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{"m.py": "def f():\n    return 'not a docstring'\n"})
	_, ok := p.Docstring(firstOfKind(t, p.Module("m"), parse.KindFunction))
	assert.False(t, ok)
}

func TestParameterDoc(t *testing.T) {
	t.Parallel()

	p := &Program{}

	tests := []struct {
		name  string
		doc   string
		param string
		want  string
		ok    bool
	}{
		{
			name:  "sphinx",
			doc:   "Do it.\n\n:param int count: how many\n    times to try\n:returns: nothing",
			param: "count",
			want:  "how many times to try",
			ok:    true,
		},
		{
			name:  "google",
			doc:   "Do it.\n\nArgs:\n    path (str): where to look.\n    depth: how deep,\n        at most.\n\nReturns:\n    None",
			param: "depth",
			want:  "how deep, at most.",
			ok:    true,
		},
		{
			name:  "google varargs",
			doc:   "Args:\n    *args: positional values.",
			param: "args",
			want:  "positional values.",
			ok:    true,
		},
		{
			name:  "numpy",
			doc:   "Do it.\n\nParameters\n----------\nx : int\n    The x value.\ny : str\n    The y value.\n\nReturns\n-------\nbool",
			param: "y",
			want:  "The y value.",
			ok:    true,
		},
		{
			name:  "missing",
			doc:   "Args:\n    other: not it.",
			param: "x",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := p.ParameterDoc(tt.doc, tt.param)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	p := newProgram(t, map[string]string{
		"m.py": "class Cart(Base, metaclass=Meta):\n    async def add(self,\n                  item: str = 'x') -> None:\n        pass\n",
	})
	f := p.Module("m")
	assert.Equal(t, "class Cart(Base, metaclass=Meta)", p.Signature(firstOfKind(t, f, parse.KindClass)))
	assert.Equal(t, "async def add(self, item: str = 'x') -> None", p.Signature(firstOfKind(t, f, parse.KindFunction)))
	assert.Equal(t, "", p.Signature(f.Root))
}
