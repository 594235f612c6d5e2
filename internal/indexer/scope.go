package indexer

import "github.com/phobologic/pyscip/internal/parse"

// scopeStack tracks the classes and functions enclosing the node being
// visited, outermost first.
type scopeStack struct {
	nodes      []*parse.Node
	classDepth int
	funcDepth  int
}

func (s *scopeStack) enter(n *parse.Node) {
	switch n.Kind {
	case parse.KindClass:
		s.classDepth++
	case parse.KindFunction:
		s.funcDepth++
	default:
		fatalf(n, ErrUnsupportedScope, "cannot enter a %s", n.Kind)
	}
	s.nodes = append(s.nodes, n)
}

func (s *scopeStack) exit() *parse.Node {
	if len(s.nodes) == 0 {
		fatalf(nil, ErrUnbalancedScope, "exit with no open scope")
	}
	top := s.nodes[len(s.nodes)-1]
	s.nodes = s.nodes[:len(s.nodes)-1]
	if top.Kind == parse.KindClass {
		s.classDepth--
	} else {
		s.funcDepth--
	}
	return top
}

func (s *scopeStack) depth() int { return len(s.nodes) }

func (s *scopeStack) empty() bool { return len(s.nodes) == 0 }

// insideClass reports whether the innermost scope is a class body.
func (s *scopeStack) insideClass() bool {
	return len(s.nodes) > 0 && s.nodes[len(s.nodes)-1].Kind == parse.KindClass
}
