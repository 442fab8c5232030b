package definition

import "errors"

// ErrNotObject is returned by Module.Call when an export returns something
// other than an object (primitives, functions, null, undefined).
var ErrNotObject = errors.New("return value is not an object")

// Compiler turns definition source text into code a Host can link.
type Compiler interface {
	Compile(name, source string) (string, error)
}

// Host links compiled code into a callable Module.
//
// Contract:
//   - Link evaluates the module body once; a failure there is a link failure.
//   - Values returned by a Module stay bound to that Module's evaluation context.
//   - Methods obtained from a Module must be safe to call from multiple goroutines;
//     hosts with single-threaded runtimes serialize the calls internally.
type Host interface {
	Link(name, code string) (Module, error)
}

// Module is a linked definition
type Module interface {
	// Exports lists the names the module exports, in no particular order.
	Exports() []string
	// HasFunction reports whether the named export is callable.
	HasFunction(name string) bool
	// Call invokes a zero-argument export. A thrown error is returned as is;
	// a non-object return yields ErrNotObject.
	Call(name string) (Object, error)
}

// Object is a value returned from a module export
type Object interface {
	// Property returns the named data property, or nil when it is missing,
	// undefined or null.
	Property(name string) Value
	// Method returns the named property when it is a function.
	Method(name string) (Method, bool)
}

// Value is a property read with script semantics rather than Go typing
type Value interface {
	// Number returns the value when it is a script number, NaN and the
	// infinities included. Strings and other types are not converted.
	Number() (float64, bool)
	// Truthy reports the value's truthiness.
	Truthy() bool
	// Strings returns the string elements of an array. ok is false when the
	// value is not an array.
	Strings() (items []string, ok bool)
}

// Method calls a script function with Go arguments and returns the truthiness
// of its result. Arguments may be strings, nil, []any and map[string]any.
type Method func(args ...any) (bool, error)
