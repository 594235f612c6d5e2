// Package snapshot renders a Document as annotated source: every line of the
// file followed by one comment line per occurrence starting on it.
//
//	class Cart:
//	#     ^^^^ definition shop.models unknown Cart#
//	#     documentation ```python
//	#     > class Cart
//	#     > ```
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phobologic/pyscip/internal/model"
)

const comment = "#"

// Render returns the annotated source of doc.
func Render(doc *model.Document, source []byte) string {
	docs := make(map[string][]string, len(doc.Symbols))
	for _, s := range doc.Symbols {
		if _, ok := docs[s.Symbol]; !ok && len(s.Documentation) > 0 {
			docs[s.Symbol] = s.Documentation
		}
	}

	occs := make([]model.Occurrence, len(doc.Occurrences))
	copy(occs, doc.Occurrences)
	sort.SliceStable(occs, func(i, j int) bool {
		a, b := occs[i].Range.Start, occs[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})

	lines := strings.Split(strings.TrimSuffix(string(source), "\n"), "\n")
	var b strings.Builder
	next := 0
	for i, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
		for ; next < len(occs) && occs[next].Range.Start.Line == i; next++ {
			writeOccurrence(&b, occs[next], line, docs)
		}
	}
	return b.String()
}

func writeOccurrence(b *strings.Builder, occ model.Occurrence, line string, docs map[string][]string) {
	start := occ.Range.Start.Character
	end := occ.Range.End.Character
	if occ.Range.End.Line != occ.Range.Start.Line {
		end = len([]rune(line))
	}
	width := max(end-start, 1)

	indent := comment + strings.Repeat(" ", max(start-len(comment), 0))
	role := "reference"
	if occ.Role.Has(model.Definition) {
		role = "definition"
	}
	fmt.Fprintf(b, "%s%s %s %s\n", indent, strings.Repeat("^", width), role, occ.Symbol)

	if !occ.Role.Has(model.Definition) {
		return
	}
	for _, d := range docs[occ.Symbol] {
		for j, l := range strings.Split(d, "\n") {
			if j == 0 {
				fmt.Fprintf(b, "%sdocumentation %s\n", indent, l)
			} else {
				fmt.Fprintf(b, "%s> %s\n", indent, l)
			}
		}
	}
}

// WriteIndex renders every document of idx into outDir, mirroring the
// documents' relative paths. Sources are read from root.
func WriteIndex(idx *model.Index, root, outDir string) error {
	for _, doc := range idx.Documents {
		source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(doc.RelativePath)))
		if err != nil {
			return fmt.Errorf("reading %s: %w", doc.RelativePath, err)
		}
		dst := filepath.Join(outDir, filepath.FromSlash(doc.RelativePath))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
		if err := os.WriteFile(dst, []byte(Render(doc, source)), 0o644); err != nil {
			return fmt.Errorf("writing snapshot %s: %w", dst, err)
		}
	}
	return nil
}
