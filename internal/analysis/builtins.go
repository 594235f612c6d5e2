package analysis

// BuiltinKind classifies a builtin name.
type BuiltinKind uint8

const (
	BuiltinClass BuiltinKind = iota
	BuiltinFunction
	BuiltinConstant
)

// BuiltinInfo describes a name from the builtins module.
type BuiltinInfo struct {
	Name string
	Kind BuiltinKind
	Doc  string
}

// BuiltinsModule is the module every unqualified builtin belongs to.
const BuiltinsModule = "builtins"

var builtinClasses = []string{
	"object", "type", "int", "float", "complex", "bool", "str", "bytes",
	"bytearray", "memoryview", "list", "tuple", "dict", "set", "frozenset",
	"range", "slice", "property", "staticmethod", "classmethod", "super",
	"enumerate", "zip", "map", "filter", "reversed",

	"BaseException", "BaseExceptionGroup", "Exception", "ExceptionGroup",
	"ArithmeticError", "AssertionError", "AttributeError", "BlockingIOError",
	"BrokenPipeError", "BufferError", "ChildProcessError", "ConnectionError",
	"ConnectionAbortedError", "ConnectionRefusedError", "ConnectionResetError",
	"EOFError", "EnvironmentError", "FileExistsError", "FileNotFoundError",
	"FloatingPointError", "GeneratorExit", "IOError", "ImportError",
	"IndentationError", "IndexError", "InterruptedError", "IsADirectoryError",
	"KeyError", "KeyboardInterrupt", "LookupError", "MemoryError",
	"ModuleNotFoundError", "NameError", "NotADirectoryError",
	"NotImplementedError", "OSError", "OverflowError", "PermissionError",
	"ProcessLookupError", "RecursionError", "ReferenceError", "RuntimeError",
	"StopAsyncIteration", "StopIteration", "SyntaxError", "SystemError",
	"SystemExit", "TabError", "TimeoutError", "TypeError", "UnboundLocalError",
	"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeError",
	"UnicodeTranslateError", "ValueError", "ZeroDivisionError",

	"Warning", "BytesWarning", "DeprecationWarning", "EncodingWarning",
	"FutureWarning", "ImportWarning", "PendingDeprecationWarning",
	"ResourceWarning", "RuntimeWarning", "SyntaxWarning", "UnicodeWarning",
	"UserWarning",
}

var builtinFunctions = map[string]string{
	"abs":        "Return the absolute value of the argument.",
	"aiter":      "Return an AsyncIterator for an AsyncIterable object.",
	"all":        "Return True if bool(x) is True for all values x in the iterable.",
	"anext":      "Return the next item from the async iterator.",
	"any":        "Return True if bool(x) is True for any x in the iterable.",
	"ascii":      "Return an ASCII-only representation of an object.",
	"bin":        "Return the binary representation of an integer.",
	"breakpoint": "Call sys.breakpointhook(*args, **kws).",
	"callable":   "Return whether the object is callable.",
	"chr":        "Return a Unicode string of one character with ordinal i.",
	"compile":    "Compile source into a code object that can be executed by exec() or eval().",
	"delattr":    "Deletes the named attribute from the given object.",
	"dir":        "Show attributes of an object.",
	"divmod":     "Return the tuple (x//y, x%y).",
	"eval":       "Evaluate the given source in the context of globals and locals.",
	"exec":       "Execute the given source in the context of globals and locals.",
	"format":     "Return type(value).__format__(value, format_spec)",
	"getattr":    "Get a named attribute from an object.",
	"globals":    "Return the dictionary containing the current scope's global variables.",
	"hasattr":    "Return whether the object has an attribute with the given name.",
	"hash":       "Return the hash value for the given object.",
	"help":       "Define the builtin 'help'.",
	"hex":        "Return the hexadecimal representation of an integer.",
	"id":         "Return the identity of an object.",
	"input":      "Read a string from standard input.",
	"isinstance": "Return whether an object is an instance of a class or of a subclass thereof.",
	"issubclass": "Return whether 'cls' is derived from another class or is the same class.",
	"iter":       "Get an iterator from an object.",
	"len":        "Return the number of items in a container.",
	"locals":     "Return a dictionary containing the current scope's local variables.",
	"max":        "With a single iterable argument, return its biggest item.",
	"min":        "With a single iterable argument, return its smallest item.",
	"next":       "Return the next item from the iterator.",
	"oct":        "Return the octal representation of an integer.",
	"open":       "Open file and return a stream.",
	"ord":        "Return the Unicode code point for a one-character string.",
	"pow":        "Equivalent to base**exp with 2 arguments or base**exp % mod with 3 arguments.",
	"print":      "Prints the values to a stream, or to sys.stdout by default.",
	"repr":       "Return the canonical string representation of the object.",
	"round":      "Round a number to a given precision in decimal digits.",
	"setattr":    "Sets the named attribute on the given object to the specified value.",
	"sorted":     "Return a new list containing all items from the iterable in ascending order.",
	"sum":        "Return the sum of a 'start' value (default: 0) plus an iterable of numbers.",
	"vars":       "Show vars.",
	"__import__": "Import a module.",
}

var builtinConstants = []string{"Ellipsis", "NotImplemented", "__debug__"}

var builtins = func() map[string]*BuiltinInfo {
	m := make(map[string]*BuiltinInfo, len(builtinClasses)+len(builtinFunctions)+len(builtinConstants))
	for _, name := range builtinClasses {
		m[name] = &BuiltinInfo{Name: name, Kind: BuiltinClass}
	}
	for name, doc := range builtinFunctions {
		m[name] = &BuiltinInfo{Name: name, Kind: BuiltinFunction, Doc: doc}
	}
	for _, name := range builtinConstants {
		m[name] = &BuiltinInfo{Name: name, Kind: BuiltinConstant}
	}
	return m
}()

// LookupBuiltin returns the builtin named name, if any.
func LookupBuiltin(name string) (*BuiltinInfo, bool) {
	b, ok := builtins[name]
	return b, ok
}

// Module attributes the runtime defines for every module.
var moduleIntrinsics = map[string]bool{
	"__name__":     true,
	"__file__":     true,
	"__doc__":      true,
	"__package__":  true,
	"__spec__":     true,
	"__loader__":   true,
	"__path__":     true,
	"__builtins__": true,
	"__dict__":     true,
}

// Attributes the runtime defines inside every class body.
var classIntrinsics = map[string]bool{
	"__qualname__": true,
	"__module__":   true,
}
