// Package symbol defines the hierarchical symbol identifiers emitted by the
// indexer.
//
// A global symbol is a package descriptor followed by zero or more typed
// descriptors, for example:
//
//	requests 2.31.0 api/get().
//	shop.models unknown Cart#add().(item)
//
// A local symbol is a per-file counter value ("local 3") with no meaning
// outside the file that produced it. Symbols are plain values: two symbols
// are equal when their string forms are equal.
package symbol

import (
	"strconv"
	"strings"
)

// Suffix identifies the kind of a descriptor.
type Suffix uint8

const (
	SuffixPackage Suffix = iota
	SuffixType
	SuffixMethod
	SuffixTerm
	SuffixParameter
	SuffixMeta
)

func (s Suffix) String() string {
	switch s {
	case SuffixPackage:
		return "package"
	case SuffixType:
		return "type"
	case SuffixMethod:
		return "method"
	case SuffixTerm:
		return "term"
	case SuffixParameter:
		return "parameter"
	case SuffixMeta:
		return "meta"
	}
	return "unknown"
}

// Descriptor is one segment of a global symbol.
type Descriptor struct {
	Suffix  Suffix
	Name    string
	Version string // only meaningful for SuffixPackage
}

// Package returns a package descriptor.
func Package(name, version string) Descriptor {
	return Descriptor{Suffix: SuffixPackage, Name: name, Version: version}
}

// Type returns a type descriptor ("Name#").
func Type(name string) Descriptor { return Descriptor{Suffix: SuffixType, Name: name} }

// Method returns a method descriptor ("name().").
func Method(name string) Descriptor { return Descriptor{Suffix: SuffixMethod, Name: name} }

// Term returns a term descriptor ("name.").
func Term(name string) Descriptor { return Descriptor{Suffix: SuffixTerm, Name: name} }

// Parameter returns a parameter descriptor ("(name)").
func Parameter(name string) Descriptor { return Descriptor{Suffix: SuffixParameter, Name: name} }

// Meta returns a meta descriptor ("name:").
func Meta(name string) Descriptor { return Descriptor{Suffix: SuffixMeta, Name: name} }

// String renders the descriptor in symbol grammar.
func (d Descriptor) String() string {
	switch d.Suffix {
	case SuffixPackage:
		return escapePackage(d.Name) + " " + escapePackage(d.Version)
	case SuffixType:
		return escapeName(d.Name) + "#"
	case SuffixMethod:
		return escapeName(d.Name) + "()."
	case SuffixTerm:
		return escapeName(d.Name) + "."
	case SuffixParameter:
		return "(" + escapeName(d.Name) + ")"
	case SuffixMeta:
		return escapeName(d.Name) + ":"
	}
	return escapeName(d.Name)
}

type form uint8

const (
	formEmpty form = iota
	formLocal
	formPackage
	formGlobal
)

// Symbol is an immutable symbol value. The zero value is the empty symbol,
// used as a placeholder for constructs that never anchor an identifier.
type Symbol struct {
	value string
	form  form
}

// Empty returns the empty placeholder symbol.
func Empty() Symbol { return Symbol{} }

// Local returns the file-local symbol with the given counter value.
func Local(n int) Symbol {
	return Symbol{value: "local " + strconv.Itoa(n), form: formLocal}
}

// NewPackage returns a symbol consisting of a single package descriptor.
func NewPackage(name, version string) Symbol {
	return Symbol{value: Package(name, version).String(), form: formPackage}
}

// Global nests d under owner. The owner must be a package or global symbol;
// nesting under a local or empty symbol is a caller bug and yields the owner
// unchanged so that no malformed identifier is ever produced.
func Global(owner Symbol, d Descriptor) Symbol {
	switch owner.form {
	case formPackage:
		return Symbol{value: owner.value + " " + d.String(), form: formGlobal}
	case formGlobal:
		return Symbol{value: owner.value + d.String(), form: formGlobal}
	}
	return owner
}

// String returns the symbol's string form.
func (s Symbol) String() string { return s.value }

// IsEmpty reports whether s is the empty placeholder.
func (s Symbol) IsEmpty() bool { return s.form == formEmpty }

// IsLocal reports whether s is a file-local symbol.
func (s Symbol) IsLocal() bool { return s.form == formLocal }

// IsGlobal reports whether s is package-rooted, including a bare package.
func (s Symbol) IsGlobal() bool { return s.form == formPackage || s.form == formGlobal }

// IsLocalString reports whether a serialized symbol is file-local.
func IsLocalString(s string) bool { return strings.HasPrefix(s, "local ") }

func isSimpleIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '+', r == '-', r == '$':
		default:
			return false
		}
	}
	return true
}

func escapeName(s string) string {
	if isSimpleIdentifier(s) {
		return s
	}
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Package names and versions are space separated, so embedded spaces are
// doubled.
func escapePackage(s string) string {
	if s == "" {
		return "."
	}
	return strings.ReplaceAll(s, " ", "  ")
}
