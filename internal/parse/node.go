// Package parse converts tree-sitter parse trees into the syntax tree the
// indexer walks: a closed set of node kinds, stable preorder ids, parent
// links and normalized shapes for parameters, annotated targets and imports.
package parse

import (
	"path"

	"github.com/phobologic/pyscip/internal/model"
)

// Node is an immutable syntax node. Identity is the ID, unique within its
// File and assigned in preorder.
type Node struct {
	ID       int
	Kind     Kind
	Type     string // grammar node type
	Field    string // field name in the parent, if any
	Parent   *Node
	Children []*Node

	StartByte int
	EndByte   int

	// Name is the identifier naming a Class, Function, Parameter or
	// ImportFromAs, or the simple-name target of a TypeAnnotation.
	Name *Node
	// Alias is the "as" name of an ImportAs or ImportFromAs.
	Alias *Node
	// Module is the ModuleName of an ImportAs or ImportFrom.
	Module *Node

	file *File
}

// File returns the file the node belongs to.
func (n *Node) File() *File { return n.file }

// Text returns the node's source text.
func (n *Node) Text() string {
	return string(n.file.Source[n.StartByte:n.EndByte])
}

// Range returns the node's source range.
func (n *Node) Range() model.Range {
	return n.file.Lines.Range(n.StartByte, n.EndByte)
}

// Child returns the first child attached under field, or nil.
func (n *Node) Child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// Nearest returns the closest proper ancestor satisfying pred, or nil.
func (n *Node) Nearest(pred func(*Node) bool) *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// EnclosingClass returns the class whose body directly or indirectly holds
// n without crossing a function or lambda boundary.
func (n *Node) EnclosingClass() *Node {
	a := n.Nearest(func(a *Node) bool {
		return a.Kind == KindClass || a.Kind == KindFunction || a.Kind == KindLambda
	})
	if a == nil || a.Kind != KindClass {
		return nil
	}
	return a
}

// EnclosingFunction returns the nearest enclosing function or lambda.
func (n *Node) EnclosingFunction() *Node {
	return n.Nearest(func(a *Node) bool {
		return a.Kind == KindFunction || a.Kind == KindLambda
	})
}

// EnclosingBlock returns the nearest statement block: a Suite or the Module.
func (n *Node) EnclosingBlock() *Node {
	return n.Nearest(func(a *Node) bool {
		return a.Kind == KindSuite || a.Kind == KindModule
	})
}

// InImportPath reports whether n is a segment of an import's module path.
func (n *Node) InImportPath() bool {
	return n.Parent != nil && n.Parent.Kind == KindModuleName
}

// File is a parsed source file.
type File struct {
	Path      string // repository-relative, slash separated
	Module    string // dotted module name
	Source    []byte
	Root      *Node
	Nodes     []*Node // indexed by ID
	Lines     *LineIndex
	HasErrors bool
}

// Node returns the node with the given id, or nil.
func (f *File) Node(id int) *Node {
	if id < 0 || id >= len(f.Nodes) {
		return nil
	}
	return f.Nodes[id]
}

// IsPackageInit reports whether the file is a package's __init__ module.
func (f *File) IsPackageInit() bool {
	base := path.Base(f.Path)
	return base == "__init__.py" || base == "__init__.pyi"
}

// Walk calls fn for n and its descendants in preorder. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
