// Package model defines the index data structures produced by pyscip.
package model

import "strings"

// Role is a bitmask describing how an occurrence uses its symbol.
type Role uint32

const (
	Definition Role = 1 << iota
	ReadAccess
	// WriteAccess is part of the wire format but is never emitted: writes
	// are reported as ReadAccess.
	WriteAccess
)

// Has reports whether r includes every bit of other.
func (r Role) Has(other Role) bool { return r&other == other }

func (r Role) String() string {
	var parts []string
	if r.Has(Definition) {
		parts = append(parts, "definition")
	}
	if r.Has(ReadAccess) {
		parts = append(parts, "reference")
	}
	if r.Has(WriteAccess) {
		parts = append(parts, "write")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Position is a zero-based line and character offset. Characters are
// counted in UTF-16 code units.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open source span.
type Range struct {
	Start Position
	End   Position
}

// Occurrence marks one token's use of a symbol.
type Occurrence struct {
	Symbol string
	Range  Range
	Role   Role
}

// SymbolInformation carries documentation for a symbol.
type SymbolInformation struct {
	Symbol        string
	Documentation []string
}

// Diagnostic records a recoverable indexing problem. It never aborts a file.
type Diagnostic struct {
	Range   Range
	Node    int
	Message string
}

// Document is the append-only index of a single file.
type Document struct {
	RelativePath string
	Module       string
	Symbols      []SymbolInformation
	Occurrences  []Occurrence
	Diagnostics  []Diagnostic
}

// NewDocument creates an empty document for a file.
func NewDocument(path, module string) *Document {
	return &Document{RelativePath: path, Module: module}
}

// AddSymbol appends a symbol information record. Records are not
// deduplicated.
func (d *Document) AddSymbol(info SymbolInformation) {
	d.Symbols = append(d.Symbols, info)
}

// AddOccurrence appends an occurrence record.
func (d *Document) AddOccurrence(occ Occurrence) {
	d.Occurrences = append(d.Occurrences, occ)
}

// AddDiagnostic appends a diagnostic record.
func (d *Document) AddDiagnostic(diag Diagnostic) {
	d.Diagnostics = append(d.Diagnostics, diag)
}

// Metadata describes an index run.
type Metadata struct {
	ProjectRoot    string
	ProjectName    string
	ProjectVersion string
	PythonVersion  string
	ToolName       string
	ToolVersion    string
}

// Failure records a file whose indexing was aborted.
type Failure struct {
	Path   string
	Reason string
}

// Index is the complete result of indexing a project, with documents in
// path order.
type Index struct {
	Metadata  Metadata
	Documents []*Document
	Failures  []Failure
}

// Document returns the document for path, or nil.
func (idx *Index) Document(path string) *Document {
	for _, d := range idx.Documents {
		if d.RelativePath == path {
			return d
		}
	}
	return nil
}

// Location is an occurrence's position within a project.
type Location struct {
	Path  string
	Range Range
	Role  Role
}

// Dependency represents an edge in the file dependency graph:
// Source references symbols defined in Target.
type Dependency struct {
	Source  string
	Target  string
	Symbols []string
}

// FileRank is a file's PageRank score in the dependency graph.
type FileRank struct {
	Path string
	Rank float64
}

// DepMap is the ranked file dependency view of an index.
type DepMap struct {
	Project      string
	Files        []FileRank // rank descending
	Dependencies []Dependency
}
