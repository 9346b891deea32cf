// Package stdlib implements JEX's built-in function library (§4.5): the
// engine-registry tier of call resolution, tried after script and library
// functions. Every builtin shares the same signature so host-registered
// functions (§6 RegisterFunction/RegisterVoidFunction) can be added to the
// same registry without a special case.
package stdlib

import (
	"strings"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

// Call is a built-in or host-registered function body.
type Call func(ctx *runtime.Context, args []value.Value) (value.Value, error)

// Function describes one callable entry in the registry: its name (matched
// case-insensitively, §9) and its arity bounds. MaxArgs of -1 means
// unbounded.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Call    Call
}

// Registry is a flat name-to-Function table.
type Registry struct {
	fns map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Function)}
}

// Register adds or replaces a function. Host registration (§6) uses this to
// overlay or override a built-in of the same name. Names are matched
// case-insensitively (§9 "hashmap keyed case-insensitively by name").
func (r *Registry) Register(f Function) {
	r.fns[lower(f.Name)] = f
}

// Lookup finds a function by name, case-insensitively.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.fns[lower(name)]
	return f, ok
}

// CheckArity validates an argument count against a function's bounds,
// returning a RuntimeError naming the function on mismatch.
func CheckArity(f Function, n int) error {
	if n < f.MinArgs || (f.MaxArgs >= 0 && n > f.MaxArgs) {
		if f.MaxArgs < 0 {
			return errors.NewRuntimeError("%s expects at least %d argument(s), got %d", f.Name, f.MinArgs, n).WithFunction(f.Name)
		}
		if f.MinArgs == f.MaxArgs {
			return errors.NewRuntimeError("%s expects exactly %d argument(s), got %d", f.Name, f.MinArgs, n).WithFunction(f.Name)
		}
		return errors.NewRuntimeError("%s expects between %d and %d argument(s), got %d", f.Name, f.MinArgs, f.MaxArgs, n).WithFunction(f.Name)
	}
	return nil
}

// Default builds the registry populated with every built-in function (§4.5).
func Default() *Registry {
	r := NewRegistry()
	registerJSONPath(r)
	registerStrings(r)
	registerMath(r)
	registerDates(r)
	registerTypes(r)
	registerCollections(r)
	registerOutput(r)
	registerExpand(r)
	return r
}

func lower(s string) string { return strings.ToLower(s) }
