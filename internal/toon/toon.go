// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// indexes and dependency maps.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/pyscip/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodeIndex converts an index into TOON format: document, symbol and
// occurrence tables, plus failures when any file was aborted. Lines are
// 1-based and columns 0-based.
func EncodeIndex(idx *model.Index) string {
	var parts []string

	md := idx.Metadata
	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(md.ProjectName)))
	parts = append(parts, fmt.Sprintf("version: %s", encodeValue(md.ProjectVersion)))
	parts = append(parts, fmt.Sprintf("python: %s", encodeValue(md.PythonVersion)))

	var docRows [][]string
	for _, doc := range idx.Documents {
		docRows = append(docRows, []string{
			doc.RelativePath,
			doc.Module,
			strconv.Itoa(len(doc.Symbols)),
			strconv.Itoa(len(doc.Occurrences)),
			strconv.Itoa(len(doc.Diagnostics)),
		})
	}
	parts = append(parts, formatTabular("documents", []string{"path", "module", "symbols", "occurrences", "diagnostics"}, docRows))

	var symbolRows [][]string
	for _, doc := range idx.Documents {
		for _, si := range doc.Symbols {
			symbolRows = append(symbolRows, []string{doc.RelativePath, si.Symbol, summary(si.Documentation)})
		}
	}
	parts = append(parts, formatTabular("symbols", []string{"file", "symbol", "summary"}, symbolRows))

	var occRows [][]string
	for _, doc := range idx.Documents {
		for _, occ := range doc.Occurrences {
			occRows = append(occRows, []string{
				doc.RelativePath,
				strconv.Itoa(occ.Range.Start.Line + 1),
				strconv.Itoa(occ.Range.Start.Character),
				occ.Role.String(),
				occ.Symbol,
			})
		}
	}
	parts = append(parts, formatTabular("occurrences", []string{"file", "line", "col", "role", "symbol"}, occRows))

	if len(idx.Failures) > 0 {
		var failRows [][]string
		for _, f := range idx.Failures {
			failRows = append(failRows, []string{f.Path, f.Reason})
		}
		parts = append(parts, formatTabular("failures", []string{"path", "reason"}, failRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeDepMap converts a ranked dependency map into TOON format.
func EncodeDepMap(dm *model.DepMap) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(dm.Project)))

	var fileRows [][]string
	for _, f := range dm.Files {
		fileRows = append(fileRows, []string{f.Path, fmt.Sprintf("%.4f", f.Rank)})
	}
	parts = append(parts, formatTabular("files", []string{"path", "rank"}, fileRows))

	var depRows [][]string
	for i := range dm.Dependencies {
		d := &dm.Dependencies[i]
		depRows = append(depRows, []string{d.Source, d.Target, strings.Join(d.Symbols, " | ")})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "symbols"}, depRows))

	return strings.Join(parts, "\n")
}

// summary is the first line of the first documentation entry that is not a
// fenced signature block.
func summary(docs []string) string {
	for _, d := range docs {
		if strings.HasPrefix(d, "```") {
			continue
		}
		line, _, _ := strings.Cut(d, "\n")
		return strings.TrimSpace(line)
	}
	return ""
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
