package parse

import (
	"path"
	"path/filepath"
	"strings"
)

// ModuleName derives the dotted module name of a repository-relative file
// path. The longest matching source root is stripped first, so with roots
// ["src"] the file "src/shop/cart.py" is module "shop.cart". Package
// __init__ files name their package.
func ModuleName(relPath string, roots []string) string {
	p := filepath.ToSlash(relPath)

	best := ""
	for _, r := range roots {
		r = strings.Trim(path.Clean(filepath.ToSlash(r)), "/")
		if r == "." || r == "" {
			continue
		}
		if strings.HasPrefix(p, r+"/") && len(r) > len(best) {
			best = r
		}
	}
	if best != "" {
		p = p[len(best)+1:]
	}

	p = strings.TrimSuffix(p, ".pyi")
	p = strings.TrimSuffix(p, ".py")
	p = strings.ReplaceAll(p, "/", ".")
	if p != "__init__" {
		p = strings.TrimSuffix(p, ".__init__")
	}
	return p
}
