package indexer

import (
	"errors"
	"fmt"

	"github.com/phobologic/pyscip/internal/parse"
)

// Sentinel errors identifying the classes of fatal conditions. They abort
// the current file only.
var (
	ErrUnbalancedScope  = errors.New("unbalanced scope")
	ErrUnsupportedScope = errors.New("unsupported scope node")
	ErrInvariant        = errors.New("indexer invariant violated")
)

// FatalError reports a file whose indexing was aborted.
type FatalError struct {
	Path string
	Node int // id of the offending node, -1 if none
	Err  error
}

func (e *FatalError) Error() string {
	if e.Node < 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: node %d: %v", e.Path, e.Node, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// abort carries a fatal condition from deep inside the traversal to the
// file boundary, where IndexFile recovers it. No other panic is recovered.
type abort struct {
	node *parse.Node
	err  error
}

func fatalf(n *parse.Node, class error, format string, args ...any) {
	panic(abort{node: n, err: fmt.Errorf("%w: %s", class, fmt.Sprintf(format, args...))})
}
