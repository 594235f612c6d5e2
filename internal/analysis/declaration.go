// Package analysis is the semantic layer the indexer consults: it binds
// names to declarations across a set of parsed files, evaluates the types of
// import bindings and simple expressions, and extracts documentation.
//
// A Program is immutable once built and safe for concurrent use.
package analysis

import "github.com/phobologic/pyscip/internal/parse"

// DeclKind classifies a declaration.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclFunction
	DeclParameter
	DeclVariable
	// DeclAlias renames or re-exports another declaration: import bindings
	// and declarations that live in another file.
	DeclAlias
	// DeclIntrinsic is synthesized by the runtime rather than written in
	// source, like a module's __name__.
	DeclIntrinsic
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclFunction:
		return "function"
	case DeclParameter:
		return "parameter"
	case DeclVariable:
		return "variable"
	case DeclAlias:
		return "alias"
	case DeclIntrinsic:
		return "intrinsic"
	}
	return "unknown"
}

// Declaration is the origin of a bound name.
//
// Node is the declaring syntax node: the Class, Function or Parameter node,
// the TypeAnnotation of an annotated target, the Name token of a plain
// assignment target, or the ImportAs/ImportFromAs node of an import. It is
// nil for purely synthetic declarations.
type Declaration struct {
	Kind DeclKind
	Name string
	Node *parse.Node

	// Module and Target describe what an alias refers to. Target is set when
	// the aliased declaration is known; otherwise Module names the imported
	// module and Name the member imported from it, if any.
	Module string
	Target *Declaration
}

// Category is the kind of value a Type describes.
type Category uint8

const (
	Unknown Category = iota
	Module
	Class
	Function
	Variable
	// External is a member of a module outside the project.
	External
	Builtin
	// Instance is an instance of a project class. It only arises while
	// resolving member accesses.
	Instance
)

func (c Category) String() string {
	switch c {
	case Module:
		return "module"
	case Class:
		return "class"
	case Function:
		return "function"
	case Variable:
		return "variable"
	case External:
		return "external"
	case Builtin:
		return "builtin"
	case Instance:
		return "instance"
	}
	return "unknown"
}

// Type is the evaluated type of a node or declaration.
type Type struct {
	Category Category
	// Module is the module name for Module and External types.
	Module string
	// Name is the member name for External and Builtin types.
	Name string
	// Decl is the declaration behind Class, Function, Variable and Instance
	// types.
	Decl    *Declaration
	Builtin *BuiltinInfo
}

// IsUnknown reports whether the type could not be evaluated.
func (t Type) IsUnknown() bool { return t.Category == Unknown }
