package analysis

import (
	"github.com/phobologic/pyscip/internal/parse"
)

// Declarations returns the declarations a name token resolves to, most
// relevant first. Declarations that live in another file are returned as
// aliases whose Target is the declaration itself.
func (p *Program) Declarations(tok *parse.Node) []*Declaration {
	if tok == nil || tok.Kind != parse.KindName || tok.Parent == nil {
		return nil
	}
	fi := p.files[tok.File()]
	if fi == nil {
		return nil
	}

	parent := tok.Parent
	switch {
	case tok.InImportPath():
		return nil

	case parent.Name == tok && (parent.Kind == parse.KindClass ||
		parent.Kind == parse.KindFunction ||
		parent.Kind == parse.KindParameter ||
		parent.Kind == parse.KindTypeAnnotation):
		if d := fi.decls[parent]; d != nil {
			return []*Declaration{d}
		}
		return nil

	case parent.Kind == parse.KindImportAs || parent.Kind == parse.KindImportFromAs:
		if d := fi.decls[parent]; d != nil {
			return []*Declaration{d}
		}
		return nil

	case parent.Kind == parse.KindMemberAccess && tok.Field == "attribute":
		return p.members(parent)

	case parent.Kind == parse.KindKeywordArgument && tok.Field == "name":
		return p.keywordParameter(parent)

	case parent.Type == "keyword_pattern" && parent.Children[0] == tok:
		return p.keywordPattern(parent, tok.Text())
	}

	return p.lookup(fi, fi.scopeOf(tok), tok.Text())
}

// scopeOf returns the scope a token is evaluated in. Only the body of a
// class, function or lambda belongs to its scope; decorators, bases,
// annotations and defaults belong to the enclosing one.
func (fi *fileInfo) scopeOf(n *parse.Node) *Scope {
	prev := n
	for cur := n.Parent; cur != nil; prev, cur = cur, cur.Parent {
		switch cur.Kind {
		case parse.KindClass, parse.KindFunction, parse.KindLambda:
			if prev.Field == "body" {
				if s := fi.scopes[cur]; s != nil {
					return s
				}
			}
		}
	}
	return fi.module
}

// lookup resolves name from scope s outward. Class scopes are only visible
// from their own body.
func (p *Program) lookup(fi *fileInfo, s *Scope, name string) []*Declaration {
	if s.Kind != ScopeModule && s.globals[name] {
		s = fi.module
	}
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeClass && cur != s {
			continue
		}
		if ds := cur.names[name]; len(ds) > 0 {
			return ds
		}
		switch cur.Kind {
		case ScopeClass:
			if classIntrinsics[name] {
				return []*Declaration{{Kind: DeclIntrinsic, Name: name, Node: cur.Node}}
			}
		case ScopeFunction:
			if name == "__class__" && cur.Node.EnclosingClass() != nil {
				return []*Declaration{{Kind: DeclVariable, Name: name}}
			}
		}
	}

	if ds := p.lookupInModule(fi, name, 0); len(ds) > 0 {
		return p.localize(fi.file, ds)
	}
	if moduleIntrinsics[name] {
		return []*Declaration{{Kind: DeclIntrinsic, Name: name, Node: fi.file.Root}}
	}
	return nil
}

// localize wraps declarations from other files as aliases.
func (p *Program) localize(f *parse.File, ds []*Declaration) []*Declaration {
	out := make([]*Declaration, 0, len(ds))
	for _, d := range ds {
		if d.Node != nil && d.Node.File() != f && d.Kind != DeclAlias {
			d = &Declaration{Kind: DeclAlias, Name: d.Name, Node: d.Node, Target: d}
		}
		out = append(out, d)
	}
	return out
}

// members resolves the attribute of a member access.
func (p *Program) members(ma *parse.Node) []*Declaration {
	obj, attr := ma.Child("object"), ma.Child("attribute")
	if obj == nil || attr == nil {
		return nil
	}
	t := p.evalExpr(obj, 0)
	return p.localize(ma.File(), p.lookupMember(t, attr.Text(), 0))
}

// keywordParameter resolves "f(name=...)" to f's parameter.
func (p *Program) keywordParameter(kw *parse.Node) []*Declaration {
	args := kw.Parent
	if args == nil || args.Kind != parse.KindArgumentList || args.Parent == nil || args.Parent.Kind != parse.KindCall {
		return nil
	}
	name := kw.Child("name")
	if name == nil {
		return nil
	}

	var fn *parse.Node
	t := p.evalExpr(args.Parent.Child("function"), 0)
	switch t.Category {
	case Function:
		fn = t.Decl.Node
	case Class:
		for _, d := range p.lookupMember(t, "__init__", 0) {
			if d.Kind == DeclFunction {
				fn = d.Node
				break
			}
		}
	}
	if fn == nil {
		return nil
	}
	fi := p.files[fn.File()]
	params := fn.Child("parameters")
	if fi == nil || params == nil {
		return nil
	}
	for _, param := range params.Children {
		if param.Name != nil && param.Name.Text() == name.Text() {
			if d := fi.decls[param]; d != nil {
				return p.localize(kw.File(), []*Declaration{d})
			}
		}
	}
	return nil
}

// keywordPattern resolves the "name" of "case C(name=...)" to the member
// of C.
func (p *Program) keywordPattern(kp *parse.Node, name string) []*Declaration {
	cur := kp.Parent
	for cur != nil && cur.Type == "case_pattern" {
		cur = cur.Parent
	}
	if cur == nil || cur.Type != "class_pattern" || len(cur.Children) == 0 {
		return nil
	}
	t := p.evalExpr(cur.Children[0], 0)
	if t.Category != Class {
		return nil
	}
	return p.localize(kp.File(), p.lookupMember(t, name, 0))
}

// evalExpr evaluates the few expression shapes member resolution needs:
// names, member accesses, constructor calls and parenthesized expressions.
func (p *Program) evalExpr(n *parse.Node, depth int) Type {
	if n == nil || depth > maxDepth {
		return Type{}
	}
	switch n.Kind {
	case parse.KindName:
		ds := p.Declarations(n)
		if len(ds) == 0 {
			return Type{}
		}
		return p.typeForMember(ds[0], depth+1)

	case parse.KindMemberAccess:
		obj, attr := n.Child("object"), n.Child("attribute")
		if obj == nil || attr == nil {
			return Type{}
		}
		ds := p.lookupMember(p.evalExpr(obj, depth+1), attr.Text(), depth+1)
		if len(ds) == 0 {
			return Type{}
		}
		return p.typeForMember(ds[0], depth+1)

	case parse.KindCall:
		t := p.evalExpr(n.Child("function"), depth+1)
		if t.Category == Class {
			return Type{Category: Instance, Decl: t.Decl}
		}

	case parse.KindTuple:
		if n.Type == "parenthesized_expression" && len(n.Children) == 1 {
			return p.evalExpr(n.Children[0], depth+1)
		}
	}
	return Type{}
}

// typeForMember is the type used to look up attributes on a declaration's
// value. Variables take the type of their assigned value or annotation.
func (p *Program) typeForMember(d *Declaration, depth int) Type {
	if depth > maxDepth {
		return Type{}
	}
	switch d.Kind {
	case DeclParameter:
		return p.receiverType(d)
	case DeclVariable:
		if d.Node == nil {
			return Type{}
		}
		return p.assignedType(d.Node, depth)
	case DeclAlias:
		t := p.typeOfDeclaration(d, depth)
		if t.Category == Variable && t.Decl != nil {
			return p.typeForMember(t.Decl, depth+1)
		}
		return t
	}
	return p.TypeOfDeclaration(d)
}

// receiverType returns the class for the first parameter of a method:
// an instance for self, the class itself for cls.
func (p *Program) receiverType(d *Declaration) Type {
	fn := d.Node.EnclosingFunction()
	if fn == nil || fn.Kind != parse.KindFunction || firstParameterName(fn) != d.Name {
		return Type{}
	}
	cls := fn.EnclosingClass()
	if cls == nil {
		return Type{}
	}
	cd := p.files[cls.File()].decls[cls]
	if cd == nil {
		return Type{}
	}
	if d.Name == "cls" {
		return Type{Category: Class, Decl: cd}
	}
	return Type{Category: Instance, Decl: cd}
}

func (p *Program) assignedType(target *parse.Node, depth int) Type {
	assign := target.Parent
	if assign == nil || assign.Kind != parse.KindAssignment || target.Field != "left" {
		return Type{}
	}
	if right := assign.Child("right"); right != nil {
		if t := p.evalExpr(right, depth+1); !t.IsUnknown() {
			return t
		}
	}
	if target.Kind == parse.KindTypeAnnotation {
		if typ := target.Child("type"); typ != nil && len(typ.Children) == 1 {
			if t := p.evalExpr(typ.Children[0], depth+1); t.Category == Class {
				return Type{Category: Instance, Decl: t.Decl}
			}
		}
	}
	return Type{}
}

// lookupMember finds attribute name on a value of type t.
func (p *Program) lookupMember(t Type, name string, depth int) []*Declaration {
	if depth > maxDepth {
		return nil
	}
	switch t.Category {
	case Module:
		fi := p.modules[t.Module]
		if fi != nil {
			if ds := p.lookupInModule(fi, name, 0); len(ds) > 0 {
				return ds
			}
		}
		sub := t.Module + "." + name
		if sfi := p.modules[sub]; sfi != nil {
			return []*Declaration{{Kind: DeclAlias, Name: name, Module: sub, Node: sfi.file.Root}}
		}

	case Class, Instance:
		if t.Decl == nil || t.Decl.Node == nil {
			return nil
		}
		cls := t.Decl.Node
		fi := p.files[cls.File()]
		cs := fi.scopes[cls]
		if cs == nil {
			return nil
		}
		if ds := cs.names[name]; len(ds) > 0 {
			return ds
		}
		if ds := cs.attrs[name]; len(ds) > 0 {
			return ds
		}
		bases := cls.Child("superclasses")
		if bases == nil {
			return nil
		}
		for _, base := range bases.Children {
			if base.Kind == parse.KindKeywordArgument {
				continue
			}
			bt := p.evalExpr(base, depth+1)
			if bt.Category != Class {
				continue
			}
			if ds := p.lookupMember(bt, name, depth+1); len(ds) > 0 {
				return ds
			}
		}
	}
	return nil
}

// TypeOf evaluates the type of a node. Classes and functions evaluate to
// themselves, import clauses to what they import, and names to the type of
// their first declaration.
func (p *Program) TypeOf(n *parse.Node) Type {
	if n == nil {
		return Type{}
	}
	fi := p.files[n.File()]
	if fi == nil {
		return Type{}
	}
	switch n.Kind {
	case parse.KindModule:
		return Type{Category: Module, Module: n.File().Module}
	case parse.KindClass, parse.KindFunction, parse.KindImportAs, parse.KindImportFromAs:
		if d := fi.decls[n]; d != nil {
			return p.TypeOfDeclaration(d)
		}
		return Type{}
	case parse.KindName:
		if ds := p.Declarations(n); len(ds) > 0 {
			return p.TypeOfDeclaration(ds[0])
		}
		return p.BuiltinType(n, n.Text())
	}
	return p.evalExpr(n, 0)
}

// TypeOfDeclaration evaluates the type a declaration binds, following
// alias chains.
func (p *Program) TypeOfDeclaration(d *Declaration) Type {
	return p.typeOfDeclaration(d, 0)
}

func (p *Program) typeOfDeclaration(d *Declaration, depth int) Type {
	if d == nil || depth > maxDepth {
		return Type{}
	}
	switch d.Kind {
	case DeclClass:
		return Type{Category: Class, Decl: d}
	case DeclFunction:
		return Type{Category: Function, Decl: d}
	case DeclParameter, DeclVariable:
		return Type{Category: Variable, Decl: d}
	case DeclIntrinsic:
		return Type{Category: Builtin, Module: BuiltinsModule, Name: d.Name}
	case DeclAlias:
		switch {
		case d.Target != nil:
			return p.typeOfDeclaration(d.Target, depth+1)
		case d.Module == "":
			return Type{}
		case d.Name == "" || d.Node != nil && d.Node.Kind == parse.KindImportAs:
			return Type{Category: Module, Module: d.Module}
		case d.Node != nil && d.Node.Kind == parse.KindModule:
			return Type{Category: Module, Module: d.Module}
		}
		return Type{Category: External, Module: d.Module, Name: d.Name}
	}
	return Type{}
}

// BuiltinType returns the builtin type of name as seen from node, or an
// unknown type when name is not a builtin. Attribute names and keyword
// argument names never refer to builtins.
func (p *Program) BuiltinType(n *parse.Node, name string) Type {
	if n != nil && n.Parent != nil {
		switch {
		case n.Parent.Kind == parse.KindMemberAccess && n.Field == "attribute",
			n.Parent.Kind == parse.KindKeywordArgument && n.Field == "name":
			return Type{}
		}
	}
	b, ok := LookupBuiltin(name)
	if !ok {
		return Type{}
	}
	return Type{Category: Builtin, Module: BuiltinsModule, Name: name, Builtin: b}
}

// IsIntrinsic reports whether d was synthesized by the runtime.
func (p *Program) IsIntrinsic(d *Declaration) bool { return d != nil && d.Kind == DeclIntrinsic }

// IsAlias reports whether d renames or re-exports another declaration.
func (p *Program) IsAlias(d *Declaration) bool { return d != nil && d.Kind == DeclAlias }
