package parse

// Kind is the closed set of syntax node kinds the indexer distinguishes.
// Every grammar node type maps to exactly one Kind.
type Kind uint8

const (
	KindModule Kind = iota
	KindClass
	KindFunction
	KindLambda
	KindParameter
	KindParameterList
	KindName
	KindTypeAnnotation
	KindAssignment
	KindImport
	KindImportAs
	KindImportFrom
	KindImportFromAs
	KindModuleName
	KindMemberAccess
	KindDecorator
	KindDecorated
	KindCall
	KindArgumentList
	KindKeywordArgument
	KindSuite
	KindStatementList
	KindIf
	KindLoop
	KindWith
	KindTry
	KindTuple
	KindComprehension
	KindBinaryOperation
	KindConstant
	KindOther

	numKinds
)

var kindNames = [numKinds]string{
	KindModule:          "Module",
	KindClass:           "Class",
	KindFunction:        "Function",
	KindLambda:          "Lambda",
	KindParameter:       "Parameter",
	KindParameterList:   "ParameterList",
	KindName:            "Name",
	KindTypeAnnotation:  "TypeAnnotation",
	KindAssignment:      "Assignment",
	KindImport:          "Import",
	KindImportAs:        "ImportAs",
	KindImportFrom:      "ImportFrom",
	KindImportFromAs:    "ImportFromAs",
	KindModuleName:      "ModuleName",
	KindMemberAccess:    "MemberAccess",
	KindDecorator:       "Decorator",
	KindDecorated:       "Decorated",
	KindCall:            "Call",
	KindArgumentList:    "ArgumentList",
	KindKeywordArgument: "KeywordArgument",
	KindSuite:           "Suite",
	KindStatementList:   "StatementList",
	KindIf:              "If",
	KindLoop:            "Loop",
	KindWith:            "With",
	KindTry:             "Try",
	KindTuple:           "Tuple",
	KindComprehension:   "Comprehension",
	KindBinaryOperation: "BinaryOperation",
	KindConstant:        "Constant",
	KindOther:           "Other",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Kind(?)"
}

// AllKinds returns every Kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// kindByType maps grammar node types to kinds. Types not listed are
// KindOther. Parameters, annotated targets and import clauses are
// normalized by the converter and do not go through this table.
var kindByType = map[string]Kind{
	"module":                KindModule,
	"class_definition":      KindClass,
	"function_definition":   KindFunction,
	"lambda":                KindLambda,
	"parameters":            KindParameterList,
	"lambda_parameters":     KindParameterList,
	"identifier":            KindName,
	"assignment":            KindAssignment,
	"import_statement":      KindImport,
	"import_from_statement": KindImportFrom,
	"dotted_name":           KindModuleName,
	"attribute":             KindMemberAccess,
	"decorator":             KindDecorator,
	"decorated_definition":  KindDecorated,
	"call":                  KindCall,
	"argument_list":         KindArgumentList,
	"keyword_argument":      KindKeywordArgument,
	"block":                 KindSuite,
	"expression_statement":  KindStatementList,

	"if_statement":           KindIf,
	"elif_clause":            KindIf,
	"else_clause":            KindIf,
	"conditional_expression": KindIf,
	"match_statement":        KindIf,
	"case_clause":            KindIf,

	"for_statement":   KindLoop,
	"while_statement": KindLoop,

	"with_statement": KindWith,
	"with_clause":    KindWith,
	"with_item":      KindWith,

	"try_statement":       KindTry,
	"except_clause":       KindTry,
	"except_group_clause": KindTry,
	"finally_clause":      KindTry,

	"tuple":                    KindTuple,
	"list":                     KindTuple,
	"set":                      KindTuple,
	"dictionary":               KindTuple,
	"pair":                     KindTuple,
	"pattern_list":             KindTuple,
	"tuple_pattern":            KindTuple,
	"list_pattern":             KindTuple,
	"expression_list":          KindTuple,
	"parenthesized_expression": KindTuple,

	"list_comprehension":       KindComprehension,
	"set_comprehension":        KindComprehension,
	"dictionary_comprehension": KindComprehension,
	"generator_expression":     KindComprehension,
	"for_in_clause":            KindComprehension,
	"if_clause":                KindComprehension,

	"binary_operator":     KindBinaryOperation,
	"boolean_operator":    KindBinaryOperation,
	"comparison_operator": KindBinaryOperation,
	"unary_operator":      KindBinaryOperation,
	"not_operator":        KindBinaryOperation,

	"string":              KindConstant,
	"concatenated_string": KindConstant,
	"integer":             KindConstant,
	"float":               KindConstant,
	"true":                KindConstant,
	"false":               KindConstant,
	"none":                KindConstant,
	"ellipsis":            KindConstant,
}

// KindOf returns the kind for a grammar node type.
func KindOf(nodeType string) Kind {
	if k, ok := kindByType[nodeType]; ok {
		return k
	}
	return KindOther
}

// skipTypes are grammar nodes that carry no names and are dropped.
var skipTypes = map[string]struct{}{
	"comment":              {},
	"string_start":         {},
	"string_content":       {},
	"string_end":           {},
	"escape_sequence":      {},
	"escape_interpolation": {},
	"line_continuation":    {},
	"import_prefix":        {},
	"type_conversion":      {},
}
