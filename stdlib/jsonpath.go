package stdlib

import (
	"github.com/jex-lang/jex/path"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func registerJSONPath(r *Registry) {
	r.Register(Function{Name: "jp1", MinArgs: 2, MaxArgs: 2, Call: biJP1})
	r.Register(Function{Name: "jpAll", MinArgs: 2, MaxArgs: 2, Call: biJPAll})
	r.Register(Function{Name: "coalescePath", MinArgs: 2, MaxArgs: -1, Call: biCoalescePath})
	r.Register(Function{Name: "existsPath", MinArgs: 2, MaxArgs: 2, Call: biExistsPath})
}

// biJP1 returns the first match of a JSONPath-shaped string against a JSON
// node, or null if nothing matches (§4.5).
func biJP1(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	root := args[0].ToNode()
	n, ok := path.Lookup(root, args[1].ToJEXString())
	if !ok {
		return value.NullValue(), nil
	}
	return value.FromNode(n), nil
}

// biJPAll returns every match as a JSON array, empty if nothing matches.
func biJPAll(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	root := args[0].ToNode()
	results := path.LookupAll(root, args[1].ToJEXString())
	return value.FromNode(value.ArrayNode(results...)), nil
}

// biCoalescePath returns the first non-null match across a list of
// candidate paths, or null if none match.
func biCoalescePath(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	root := args[0].ToNode()
	for _, a := range args[1:] {
		if n, ok := path.Lookup(root, a.ToJEXString()); ok && !n.IsNull() {
			return value.FromNode(n), nil
		}
	}
	return value.NullValue(), nil
}

// biExistsPath reports whether a path resolves to anything at all.
func biExistsPath(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	root := args[0].ToNode()
	return value.BoolValue(path.Exists(root, args[1].ToJEXString())), nil
}
