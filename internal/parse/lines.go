package parse

import (
	"sort"
	"unicode/utf8"

	"github.com/phobologic/pyscip/internal/model"
)

// LineIndex converts byte offsets to line/character positions.
type LineIndex struct {
	src    []byte
	starts []int // byte offset of each line start
}

// NewLineIndex indexes the line starts of src.
func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// LineCount returns the number of lines.
func (li *LineIndex) LineCount() int { return len(li.starts) }

// LineStart returns the byte offset where line begins.
func (li *LineIndex) LineStart(line int) int { return li.starts[line] }

// Position returns the zero-based line and UTF-16 character of offset.
func (li *LineIndex) Position(offset int) model.Position {
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	col := 0
	for i := li.starts[line]; i < offset; {
		r, size := utf8.DecodeRune(li.src[i:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		i += size
	}
	return model.Position{Line: line, Character: col}
}

// Range returns the range spanning the byte offsets [start, end).
func (li *LineIndex) Range(start, end int) model.Range {
	return model.Range{Start: li.Position(start), End: li.Position(end)}
}
