package indexer

import (
	"github.com/phobologic/pyscip/internal/parse"
	"github.com/phobologic/pyscip/internal/symbol"
)

// symbolCache memoizes the builder for one file. Entries are written once.
type symbolCache struct {
	m map[int]symbol.Symbol
}

func newSymbolCache() *symbolCache {
	return &symbolCache{m: make(map[int]symbol.Symbol)}
}

func (c *symbolCache) get(n *parse.Node) (symbol.Symbol, bool) {
	s, ok := c.m[n.ID]
	return s, ok
}

func (c *symbolCache) put(n *parse.Node, s symbol.Symbol) {
	if _, ok := c.m[n.ID]; ok {
		fatalf(n, ErrInvariant, "symbol for node %d computed twice", n.ID)
	}
	c.m[n.ID] = s
}

func (c *symbolCache) size() int { return len(c.m) }
