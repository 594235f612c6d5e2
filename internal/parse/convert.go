package parse

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pyscip/internal/lang"
)

// Parse parses source with parser (which must be set to Python) and
// converts the result. relPath is the repository-relative path recorded on
// the File; module is its dotted module name.
func Parse(ctx context.Context, parser *sitter.Parser, source []byte, relPath, module string) (*File, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relPath, err)
	}
	defer tree.Close()

	f := &File{
		Path:   filepath.ToSlash(relPath),
		Module: module,
		Source: source,
		Lines:  NewLineIndex(source),
	}
	c := &converter{lang: lang.Python, file: f}

	root := tree.RootNode()
	f.HasErrors = root.HasError()
	f.Root = c.convert(root)
	f.Root.Kind = KindModule

	Walk(f.Root, func(n *Node) bool {
		n.ID = len(f.Nodes)
		f.Nodes = append(f.Nodes, n)
		return true
	})
	return f, nil
}

type converter struct {
	lang *lang.Language
	file *File
}

func (c *converter) newNode(ts *sitter.Node, kind Kind) *Node {
	return &Node{
		Kind:      kind,
		Type:      ts.Type(),
		StartByte: int(ts.StartByte()),
		EndByte:   int(ts.EndByte()),
		file:      c.file,
	}
}

func (c *converter) adopt(parent, child *Node, field string) {
	child.Parent = parent
	child.Field = field
	parent.Children = append(parent.Children, child)
}

func (c *converter) convert(ts *sitter.Node) *Node {
	switch ts.Type() {
	case "parameters", "lambda_parameters":
		return c.parameterList(ts)
	case "assignment":
		return c.assignment(ts)
	case "import_statement":
		return c.importStatement(ts)
	case "import_from_statement":
		return c.importFrom(ts)
	case "relative_import":
		return c.moduleName(ts)
	case "dotted_name":
		if parent := ts.Parent(); parent != nil && importTypes[parent.Type()] {
			return c.moduleName(ts)
		}
		return c.dottedValue(ts)
	}

	n := c.newNode(ts, KindOf(ts.Type()))
	c.convertChildren(n, ts)
	if n.Kind == KindClass || n.Kind == KindFunction {
		if name := n.Child("name"); name != nil && name.Kind == KindName {
			n.Name = name
		}
	}
	return n
}

func (c *converter) convertChildren(n *Node, ts *sitter.Node) {
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if _, skip := skipTypes[child.Type()]; skip {
			continue
		}
		c.adopt(n, c.convert(child), c.lang.FieldOf(ts, child))
	}
}

func (c *converter) parameterList(ts *sitter.Node) *Node {
	n := c.newNode(ts, KindParameterList)
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if _, skip := skipTypes[child.Type()]; skip {
			continue
		}
		c.adopt(n, c.parameter(child), "")
	}
	return n
}

// parameter normalizes every parameter shape into a Parameter node whose
// Name child is the bound identifier. The "*" and "/" separators become
// nameless parameters.
func (c *converter) parameter(ts *sitter.Node) *Node {
	switch ts.Type() {
	case "identifier":
		p := c.newNode(ts, KindParameter)
		c.setParamName(p, ts)
		return p

	case "list_splat_pattern", "dictionary_splat_pattern":
		p := c.newNode(ts, KindParameter)
		if id := firstNamed(ts, "identifier"); id != nil {
			c.setParamName(p, id)
		}
		return p

	case "typed_parameter":
		p := c.newNode(ts, KindParameter)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			child := ts.NamedChild(i)
			if c.lang.FieldOf(ts, child) == "type" {
				c.adopt(p, c.convert(child), "type")
				continue
			}
			switch child.Type() {
			case "identifier":
				c.setParamName(p, child)
			case "list_splat_pattern", "dictionary_splat_pattern":
				if id := firstNamed(child, "identifier"); id != nil {
					c.setParamName(p, id)
				}
			default:
				if _, skip := skipTypes[child.Type()]; !skip {
					c.adopt(p, c.convert(child), "")
				}
			}
		}
		return p

	case "default_parameter", "typed_default_parameter":
		p := c.newNode(ts, KindParameter)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			child := ts.NamedChild(i)
			if _, skip := skipTypes[child.Type()]; skip {
				continue
			}
			field := c.lang.FieldOf(ts, child)
			if field == "name" && child.Type() == "identifier" {
				c.setParamName(p, child)
				continue
			}
			c.adopt(p, c.convert(child), field)
		}
		return p

	case "keyword_separator", "positional_separator":
		return c.newNode(ts, KindParameter)
	}
	return c.convert(ts)
}

func (c *converter) setParamName(p *Node, id *sitter.Node) {
	name := c.newNode(id, KindName)
	c.adopt(p, name, "name")
	p.Name = name
}

// assignment wraps an annotated target and its annotation in a
// TypeAnnotation node.
func (c *converter) assignment(ts *sitter.Node) *Node {
	n := c.newNode(ts, KindAssignment)
	typ := ts.ChildByFieldName("type")
	left := ts.ChildByFieldName("left")
	if typ == nil || left == nil {
		c.convertChildren(n, ts)
		return n
	}

	ann := &Node{
		Kind:      KindTypeAnnotation,
		Type:      "type_annotation",
		StartByte: int(left.StartByte()),
		EndByte:   int(typ.EndByte()),
		file:      c.file,
	}
	target := c.convert(left)
	c.adopt(ann, target, "left")
	if target.Kind == KindName {
		ann.Name = target
	}
	c.adopt(ann, c.convert(typ), "type")
	c.adopt(n, ann, "left")

	if right := ts.ChildByFieldName("right"); right != nil {
		c.adopt(n, c.convert(right), "right")
	}
	return n
}

func (c *converter) importStatement(ts *sitter.Node) *Node {
	n := c.newNode(ts, KindImport)
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			ia := c.newNode(child, KindImportAs)
			mn := c.moduleName(child)
			c.adopt(ia, mn, "name")
			ia.Module = mn
			c.adopt(n, ia, "name")
		case "aliased_import":
			ia := c.newNode(child, KindImportAs)
			if name := child.ChildByFieldName("name"); name != nil {
				mn := c.moduleName(name)
				c.adopt(ia, mn, "name")
				ia.Module = mn
			}
			if alias := child.ChildByFieldName("alias"); alias != nil {
				a := c.newNode(alias, KindName)
				c.adopt(ia, a, "alias")
				ia.Alias = a
			}
			c.adopt(n, ia, "name")
		default:
			if _, skip := skipTypes[child.Type()]; !skip {
				c.adopt(n, c.convert(child), "")
			}
		}
	}
	return n
}

func (c *converter) importFrom(ts *sitter.Node) *Node {
	n := c.newNode(ts, KindImportFrom)
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if _, skip := skipTypes[child.Type()]; skip {
			continue
		}
		if c.lang.FieldOf(ts, child) == "module_name" {
			mn := c.moduleName(child)
			c.adopt(n, mn, "module_name")
			n.Module = mn
			continue
		}

		switch child.Type() {
		case "dotted_name":
			ifa := c.newNode(child, KindImportFromAs)
			if id := firstNamed(child, "identifier"); id != nil {
				name := c.newNode(id, KindName)
				c.adopt(ifa, name, "name")
				ifa.Name = name
			}
			c.adopt(n, ifa, "name")
		case "aliased_import":
			ifa := c.newNode(child, KindImportFromAs)
			if dotted := child.ChildByFieldName("name"); dotted != nil {
				id := dotted
				if dotted.Type() != "identifier" {
					id = firstNamed(dotted, "identifier")
				}
				if id != nil {
					name := c.newNode(id, KindName)
					c.adopt(ifa, name, "name")
					ifa.Name = name
				}
			}
			if alias := child.ChildByFieldName("alias"); alias != nil {
				a := c.newNode(alias, KindName)
				c.adopt(ifa, a, "alias")
				ifa.Alias = a
			}
			c.adopt(n, ifa, "name")
		case "wildcard_import":
			c.adopt(n, c.newNode(child, KindOther), "wildcard")
		default:
			c.adopt(n, c.convert(child), "")
		}
	}
	return n
}

// moduleName flattens a dotted or relative module path into a ModuleName
// whose children are the path's identifiers.
func (c *converter) moduleName(ts *sitter.Node) *Node {
	mn := c.newNode(ts, KindModuleName)
	var collect func(*sitter.Node)
	collect = func(x *sitter.Node) {
		for i := 0; i < int(x.NamedChildCount()); i++ {
			child := x.NamedChild(i)
			switch child.Type() {
			case "identifier":
				c.adopt(mn, c.newNode(child, KindName), "")
			case "dotted_name":
				collect(child)
			}
		}
	}
	collect(ts)
	return mn
}

// importTypes are the statements whose dotted names are module paths.
var importTypes = map[string]bool{
	"import_statement":        true,
	"import_from_statement":   true,
	"aliased_import":          true,
	"future_import_statement": true,
	"relative_import":         true,
}

// dottedValue converts a dotted name outside an import, as found in match
// patterns, into a Name or a left-nested MemberAccess chain.
func (c *converter) dottedValue(ts *sitter.Node) *Node {
	var expr *Node
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		id := ts.NamedChild(i)
		if id.Type() != "identifier" {
			continue
		}
		name := c.newNode(id, KindName)
		if expr == nil {
			expr = name
			continue
		}
		ma := &Node{
			Kind:      KindMemberAccess,
			Type:      "attribute",
			StartByte: expr.StartByte,
			EndByte:   name.EndByte,
			file:      c.file,
		}
		c.adopt(ma, expr, "object")
		c.adopt(ma, name, "attribute")
		expr = ma
	}
	if expr == nil {
		return c.newNode(ts, KindOther)
	}
	return expr
}

func firstNamed(ts *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		if child := ts.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}
