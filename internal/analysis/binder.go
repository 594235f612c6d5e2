package analysis

import (
	"strings"

	"github.com/phobologic/pyscip/internal/parse"
)

// ScopeKind classifies a scope.
type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeClass
	ScopeFunction
)

// Scope is a lexical namespace: a module, a class body, or the body of a
// function or lambda. Comprehensions do not open a scope of their own.
type Scope struct {
	Kind   ScopeKind
	Node   *parse.Node
	Parent *Scope

	names     map[string][]*Declaration
	globals   map[string]bool
	nonlocals map[string]bool
	// wildcards are the ImportFrom nodes of "from m import *" statements.
	wildcards []*parse.Node
	// attrs holds instance attributes assigned through self in methods.
	// Only class scopes have them.
	attrs map[string][]*Declaration
}

func newScope(kind ScopeKind, node *parse.Node, parent *Scope) *Scope {
	return &Scope{
		Kind:      kind,
		Node:      node,
		Parent:    parent,
		names:     make(map[string][]*Declaration),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
		attrs:     make(map[string][]*Declaration),
	}
}

// Names returns the declarations bound to name directly in this scope.
func (s *Scope) Names(name string) []*Declaration { return s.names[name] }

// fileInfo holds the binding results for one file.
type fileInfo struct {
	file   *parse.File
	module *Scope
	scopes map[*parse.Node]*Scope
	decls  map[*parse.Node]*Declaration
	// imports are the ImportFromAs declarations, resolved after every file
	// has been bound.
	imports []*Declaration
}

type binder struct {
	fi *fileInfo
}

func bindFile(f *parse.File) *fileInfo {
	fi := &fileInfo{
		file:   f,
		scopes: make(map[*parse.Node]*Scope),
		decls:  make(map[*parse.Node]*Declaration),
	}
	fi.module = newScope(ScopeModule, f.Root, nil)
	fi.scopes[f.Root] = fi.module

	b := &binder{fi: fi}
	b.walkChildren(f.Root, fi.module)
	return fi
}

func (b *binder) walkChildren(n *parse.Node, s *Scope) {
	for _, c := range n.Children {
		b.walk(c, s)
	}
}

func (b *binder) walk(n *parse.Node, s *Scope) {
	if n == nil {
		return
	}
	switch n.Kind {
	case parse.KindClass:
		b.bindClass(n, s)
		return

	case parse.KindFunction:
		b.bindFunction(n, s)
		return

	case parse.KindLambda:
		ls := b.openScope(ScopeFunction, n, s)
		for _, c := range n.Children {
			if c.Field == "parameters" {
				b.bindParameters(c, s, ls)
			} else {
				b.walk(c, ls)
			}
		}
		return

	case parse.KindAssignment:
		for _, c := range n.Children {
			if c.Field == "left" {
				b.bindTarget(c, s)
			} else {
				b.walk(c, s)
			}
		}
		return

	case parse.KindLoop, parse.KindComprehension:
		if n.Type == "for_statement" || n.Type == "for_in_clause" {
			for _, c := range n.Children {
				if c.Field == "left" {
					b.bindTarget(c, s)
				} else {
					b.walk(c, s)
				}
			}
			return
		}

	case parse.KindTry:
		// except E as e
		if n.Type == "except_clause" && len(n.Children) >= 3 && n.Children[1].Kind == parse.KindName {
			b.walk(n.Children[0], s)
			b.bindTarget(n.Children[1], s)
			for _, c := range n.Children[2:] {
				b.walk(c, s)
			}
			return
		}

	case parse.KindImport:
		for _, c := range n.Children {
			if c.Kind == parse.KindImportAs {
				b.bindImport(c, s)
			}
		}
		return

	case parse.KindImportFrom:
		b.bindImportFrom(n, s)
		return

	case parse.KindOther:
		if b.bindOther(n, s) {
			return
		}
	}
	b.walkChildren(n, s)
}

// bindOther handles statement shapes that have no kind of their own. It
// reports whether n was fully handled.
func (b *binder) bindOther(n *parse.Node, s *Scope) bool {
	switch n.Type {
	case "augmented_assignment":
		for _, c := range n.Children {
			if c.Field == "left" {
				b.bindTarget(c, s)
			} else {
				b.walk(c, s)
			}
		}
		return true
	case "named_expression":
		for _, c := range n.Children {
			if c.Field == "name" {
				b.bindTarget(c, s)
			} else {
				b.walk(c, s)
			}
		}
		return true
	case "as_pattern":
		// with-items carry the target in the alias field; case patterns end
		// with a bare identifier.
		for i, c := range n.Children {
			switch {
			case c.Field == "alias":
				b.bindTarget(c, s)
			case i > 0 && c.Kind == parse.KindName:
				b.bindCapture(c, s)
			default:
				b.walk(c, s)
			}
		}
		return true
	case "case_pattern", "union_pattern", "splat_pattern":
		for _, c := range n.Children {
			if c.Kind == parse.KindName {
				b.bindCapture(c, s)
			} else {
				b.walk(c, s)
			}
		}
		return true
	case "keyword_pattern":
		// The leading identifier names an attribute of the matched class.
		for i, c := range n.Children {
			if i > 0 && c.Kind == parse.KindName {
				b.bindCapture(c, s)
			} else {
				b.walk(c, s)
			}
		}
		return true
	case "global_statement", "nonlocal_statement":
		for _, c := range n.Children {
			if c.Kind != parse.KindName {
				continue
			}
			if n.Type == "global_statement" {
				s.globals[c.Text()] = true
			} else {
				s.nonlocals[c.Text()] = true
			}
		}
		return true
	}
	return false
}

func (b *binder) openScope(kind ScopeKind, n *parse.Node, parent *Scope) *Scope {
	sc := newScope(kind, n, parent)
	b.fi.scopes[n] = sc
	return sc
}

func (b *binder) bindClass(n *parse.Node, s *Scope) {
	if n.Name != nil {
		b.declare(s, n.Name.Text(), &Declaration{Kind: DeclClass, Name: n.Name.Text(), Node: n})
	}
	cs := b.openScope(ScopeClass, n, s)
	for _, c := range n.Children {
		switch {
		case c == n.Name:
		case c.Field == "body":
			b.walk(c, cs)
		default:
			b.walk(c, s)
		}
	}
}

func (b *binder) bindFunction(n *parse.Node, s *Scope) {
	if n.Name != nil {
		b.declare(s, n.Name.Text(), &Declaration{Kind: DeclFunction, Name: n.Name.Text(), Node: n})
	}
	fs := b.openScope(ScopeFunction, n, s)
	for _, c := range n.Children {
		switch {
		case c == n.Name:
		case c.Field == "body":
			b.walk(c, fs)
		case c.Field == "parameters":
			b.bindParameters(c, s, fs)
		default:
			b.walk(c, s)
		}
	}
}

// bindParameters declares each named parameter in the function scope.
// Annotations and defaults are evaluated in the enclosing scope.
func (b *binder) bindParameters(list *parse.Node, outer, fs *Scope) {
	for _, p := range list.Children {
		if p.Kind != parse.KindParameter {
			b.walk(p, outer)
			continue
		}
		if p.Name != nil {
			b.declare(fs, p.Name.Text(), &Declaration{Kind: DeclParameter, Name: p.Name.Text(), Node: p})
		}
		for _, c := range p.Children {
			if c != p.Name {
				b.walk(c, outer)
			}
		}
	}
}

// bindTarget declares the names an assignment-like target binds.
func (b *binder) bindTarget(n *parse.Node, s *Scope) {
	switch n.Kind {
	case parse.KindName:
		b.declare(s, n.Text(), &Declaration{Kind: DeclVariable, Name: n.Text(), Node: n})
	case parse.KindTypeAnnotation:
		if n.Name != nil {
			b.declare(s, n.Name.Text(), &Declaration{Kind: DeclVariable, Name: n.Name.Text(), Node: n})
		} else if left := n.Child("left"); left != nil {
			b.bindTarget(left, s)
		}
		b.walk(n.Child("type"), s)
	case parse.KindTuple:
		for _, c := range n.Children {
			b.bindTarget(c, s)
		}
	case parse.KindMemberAccess:
		b.bindAttribute(n, s)
		b.walk(n.Child("object"), s)
	case parse.KindOther:
		if n.Type == "list_splat_pattern" || n.Type == "as_pattern_target" {
			for _, c := range n.Children {
				b.bindTarget(c, s)
			}
			return
		}
		b.walk(n, s)
	default:
		b.walk(n, s)
	}
}

// bindCapture declares a name captured by a match pattern. "_" never binds.
func (b *binder) bindCapture(n *parse.Node, s *Scope) {
	if n.Text() == "_" {
		return
	}
	b.bindTarget(n, s)
}

// bindAttribute records "self.x = ..." inside a method as an instance
// attribute of the enclosing class.
func (b *binder) bindAttribute(ma *parse.Node, s *Scope) {
	obj, attr := ma.Child("object"), ma.Child("attribute")
	if obj == nil || attr == nil || obj.Kind != parse.KindName || s.Kind != ScopeFunction {
		return
	}
	fn := s.Node
	if fn.Kind != parse.KindFunction || firstParameterName(fn) != obj.Text() {
		return
	}
	cls := fn.EnclosingClass()
	if cls == nil {
		return
	}
	cs := b.fi.scopes[cls]
	if cs == nil {
		return
	}
	d := &Declaration{Kind: DeclVariable, Name: attr.Text(), Node: attr}
	cs.attrs[d.Name] = append(cs.attrs[d.Name], d)
	b.fi.decls[attr] = d
}

func (b *binder) bindImport(ia *parse.Node, s *Scope) {
	if ia.Module == nil {
		return
	}
	module := dottedName(ia.Module)
	d := &Declaration{Kind: DeclAlias, Node: ia}
	if ia.Alias != nil {
		d.Name = ia.Alias.Text()
		d.Module = module
	} else {
		// "import a.b" binds a.
		d.Name, _, _ = strings.Cut(module, ".")
		d.Module = d.Name
	}
	if d.Name == "" {
		return
	}
	b.declare(s, d.Name, d)
}

func (b *binder) bindImportFrom(n *parse.Node, s *Scope) {
	for _, c := range n.Children {
		switch {
		case c.Field == "wildcard":
			s.wildcards = append(s.wildcards, n)
		case c.Kind == parse.KindImportFromAs && c.Name != nil:
			d := &Declaration{Kind: DeclAlias, Name: c.Name.Text(), Node: c}
			bound := d.Name
			if c.Alias != nil {
				bound = c.Alias.Text()
			}
			b.declare(s, bound, d)
			b.fi.imports = append(b.fi.imports, d)
		}
	}
}

// declare binds name in s, honoring global and nonlocal statements.
func (b *binder) declare(s *Scope, name string, d *Declaration) {
	target := s
	switch {
	case s.globals[name]:
		target = b.fi.module
	case s.nonlocals[name]:
		for cur := s.Parent; cur != nil && cur.Kind != ScopeModule; cur = cur.Parent {
			if cur.Kind == ScopeFunction && len(cur.names[name]) > 0 {
				target = cur
				break
			}
		}
	}
	target.names[name] = append(target.names[name], d)
	if d.Node != nil {
		if _, seen := b.fi.decls[d.Node]; !seen {
			b.fi.decls[d.Node] = d
		}
	}
}

// firstParameterName returns the name of fn's first named parameter.
func firstParameterName(fn *parse.Node) string {
	params := fn.Child("parameters")
	if params == nil {
		return ""
	}
	for _, p := range params.Children {
		if p.Kind == parse.KindParameter && p.Name != nil {
			return p.Name.Text()
		}
	}
	return ""
}

// dottedName joins the segments of a ModuleName.
func dottedName(mn *parse.Node) string {
	parts := make([]string, 0, len(mn.Children))
	for _, c := range mn.Children {
		if c.Kind == parse.KindName {
			parts = append(parts, c.Text())
		}
	}
	return strings.Join(parts, ".")
}
