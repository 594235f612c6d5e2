package lang

import (
	"github.com/smacker/go-tree-sitter/python"
)

// Python is the registered Python language.
var Python *Language

func init() {
	Python = &Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
		Fields:     pythonFields,
	}
	Languages["python"] = Python
}

var pythonFields = map[string][]string{
	"class_definition":        {"name", "superclasses", "body"},
	"function_definition":     {"name", "parameters", "return_type", "body"},
	"lambda":                  {"parameters", "body"},
	"assignment":              {"left", "right", "type"},
	"augmented_assignment":    {"left", "right"},
	"attribute":               {"object", "attribute"},
	"call":                    {"function", "arguments"},
	"keyword_argument":        {"name", "value"},
	"default_parameter":       {"name", "value"},
	"typed_default_parameter": {"name", "type", "value"},
	"typed_parameter":         {"type"},
	"for_statement":           {"left", "right", "body", "alternative"},
	"for_in_clause":           {"left", "right"},
	"named_expression":        {"name", "value"},
	"aliased_import":          {"name", "alias"},
	"import_from_statement":   {"module_name"},
	"decorated_definition":    {"definition"},
	"as_pattern":              {"alias"},
	"while_statement":         {"condition", "body", "alternative"},
	"if_statement":            {"condition", "consequence"},
	"with_item":               {"value"},
}
