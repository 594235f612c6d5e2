package analysis

import (
	"regexp"
	"strings"

	"github.com/phobologic/pyscip/internal/lang"
	"github.com/phobologic/pyscip/internal/parse"
)

// Docstring returns the docstring of a module, class or function: a string
// literal that is the first statement of its body.
func (p *Program) Docstring(n *parse.Node) (string, bool) {
	var body *parse.Node
	switch n.Kind {
	case parse.KindModule:
		body = n
	case parse.KindClass, parse.KindFunction:
		body = n.Child("body")
	default:
		return "", false
	}
	if body == nil || len(body.Children) == 0 {
		return "", false
	}
	return stringStatement(body.Children[0])
}

// AttributeDocstring returns the string literal statement directly
// following an assignment, the convention for documenting attributes.
func (p *Program) AttributeDocstring(assign *parse.Node) (string, bool) {
	stmt := assign.Parent
	if stmt == nil || stmt.Kind != parse.KindStatementList || stmt.Parent == nil {
		return "", false
	}
	siblings := stmt.Parent.Children
	for i, s := range siblings {
		if s == stmt && i+1 < len(siblings) {
			return stringStatement(siblings[i+1])
		}
	}
	return "", false
}

func stringStatement(stmt *parse.Node) (string, bool) {
	if stmt.Kind != parse.KindStatementList || len(stmt.Children) != 1 {
		return "", false
	}
	lit := stmt.Children[0]
	if lit.Kind != parse.KindConstant || lit.Type != "string" {
		return "", false
	}
	return cleanDoc(unquote(lit.Text())), true
}

// unquote strips the prefix and quotes of a string literal without
// interpreting escapes.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// cleanDoc normalizes docstring indentation: the first line is trimmed,
// the common indentation of the remaining lines is removed, and leading and
// trailing blank lines are dropped.
func cleanDoc(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "        "), "\n")
	indent := -1
	for _, l := range lines[1:] {
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

var (
	googleSection = regexp.MustCompile(`^\s*(Args|Arguments|Parameters|Params|Keyword Args|Keyword Arguments):\s*$`)
	numpySection  = regexp.MustCompile(`^\s*(Parameters|Other Parameters)\s*$`)
	numpyRule     = regexp.MustCompile(`^\s*-{3,}\s*$`)
)

// ParameterDoc extracts the description of param from a function
// docstring. Sphinx (":param x:"), Google ("Args:") and NumPy
// ("Parameters" with an underline) styles are recognized.
func (p *Program) ParameterDoc(doc, param string) (string, bool) {
	if doc == "" || param == "" {
		return "", false
	}
	lines := strings.Split(doc, "\n")
	if s, ok := sphinxParam(lines, param); ok {
		return s, true
	}
	if s, ok := googleParam(lines, param); ok {
		return s, true
	}
	return numpyParam(lines, param)
}

func sphinxParam(lines []string, param string) (string, bool) {
	re := regexp.MustCompile(`^\s*:param\s+(?:[^:]+\s+)?\*{0,2}` + regexp.QuoteMeta(param) + `\s*:\s*(.*)$`)
	for i, l := range lines {
		m := re.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		desc := []string{strings.TrimSpace(m[1])}
		base := indentOf(l)
		for _, next := range lines[i+1:] {
			t := strings.TrimSpace(next)
			if t == "" || strings.HasPrefix(t, ":") || indentOf(next) <= base {
				break
			}
			desc = append(desc, t)
		}
		return strings.TrimSpace(strings.Join(desc, " ")), true
	}
	return "", false
}

func googleParam(lines []string, param string) (string, bool) {
	entry := regexp.MustCompile(`^\*{0,2}` + regexp.QuoteMeta(param) + `\s*(\([^)]*\))?\s*:\s*(.*)$`)
	in := false
	sectionIndent := 0
	for i, l := range lines {
		if googleSection.MatchString(l) {
			in = true
			sectionIndent = indentOf(l)
			continue
		}
		if !in {
			continue
		}
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if indentOf(l) <= sectionIndent {
			in = false
			continue
		}
		m := entry.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		desc := []string{strings.TrimSpace(m[2])}
		base := indentOf(l)
		for _, next := range lines[i+1:] {
			nt := strings.TrimSpace(next)
			if nt == "" || indentOf(next) <= base {
				break
			}
			desc = append(desc, nt)
		}
		return strings.TrimSpace(strings.Join(desc, " ")), true
	}
	return "", false
}

func numpyParam(lines []string, param string) (string, bool) {
	entry := regexp.MustCompile(`^\*{0,2}` + regexp.QuoteMeta(param) + `\s*(:.*)?$`)
	for i := 0; i+1 < len(lines); i++ {
		if !numpySection.MatchString(lines[i]) || !numpyRule.MatchString(lines[i+1]) {
			continue
		}
		base := indentOf(lines[i])
		for j := i + 2; j < len(lines); j++ {
			l := lines[j]
			t := strings.TrimSpace(l)
			if t == "" {
				continue
			}
			if indentOf(l) < base || j+1 < len(lines) && numpyRule.MatchString(lines[j+1]) {
				break
			}
			if indentOf(l) != base || !entry.MatchString(t) {
				continue
			}
			var desc []string
			for _, next := range lines[j+1:] {
				nt := strings.TrimSpace(next)
				if nt == "" || indentOf(next) <= base {
					break
				}
				desc = append(desc, nt)
			}
			return strings.Join(desc, " "), true
		}
	}
	return "", false
}

func indentOf(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// Signature returns the header of a class or function definition with
// whitespace collapsed, for example "def get(self, key: str) -> int".
func (p *Program) Signature(n *parse.Node) string {
	if n.Kind != parse.KindClass && n.Kind != parse.KindFunction {
		return ""
	}
	end := n.EndByte
	if body := n.Child("body"); body != nil {
		end = body.StartByte
	}
	src := n.File().Source[n.StartByte:end]
	sig := lang.CollapseWhitespace(string(src))
	return strings.TrimSpace(strings.TrimSuffix(sig, ":"))
}
