package stdlib

import (
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/normalizer"
	"github.com/jex-lang/jex/path"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

const defaultExpandJsonMaxDepth = 10

func registerExpand(r *Registry) {
	r.Register(Function{Name: "expandJson", MinArgs: 2, MaxArgs: 3, Call: biExpandJson})
	r.Register(Function{Name: "expandJsonAll", MinArgs: 1, MaxArgs: 1, Call: biExpandJsonAll})
}

// biExpandJson clones json, then at pathStr parses the string value found
// there into JSON and recursively expands any JSON strings nested inside it,
// up to maxDepth levels, replacing the value at pathStr in place (§4.5). A
// path that resolves to a non-string or to nothing leaves the clone
// untouched at that path.
func biExpandJson(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	clone := args[0].ToNode().DeepClone()
	pathStr := args[1].ToJEXString()
	maxDepth := defaultExpandJsonMaxDepth
	if len(args) == 3 {
		maxDepth = int(args[2].ToNumber().IntPart())
	}

	target, ok := path.Lookup(clone, pathStr)
	if !ok || target.Kind != value.NodeString {
		return value.FromNode(clone), nil
	}

	expanded, err := normalizer.ExpandStringDepth(target.Str, maxDepth)
	if err != nil {
		return value.Value{}, errors.NewRuntimeError("expandJson: %s", err.Error()).WithFunction("expandJson")
	}
	if err := path.Assign(clone, pathStr, expanded); err != nil {
		return value.Value{}, err
	}
	return value.FromNode(clone), nil
}

// biExpandJsonAll recursively expands every embedded JSON string reachable
// from the argument, using the normalizer's default limits
// (normalizer.DefaultOptions); it takes no depth argument.
func biExpandJsonAll(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	out, err := normalizer.Normalize(args[0].ToNode(), normalizer.DefaultOptions())
	if err != nil {
		if _, ok := err.(*errors.LimitExceeded); ok {
			return value.Value{}, err
		}
		return value.Value{}, errors.NewRuntimeError("expandJsonAll: %s", err.Error()).WithFunction("expandJsonAll")
	}
	return value.FromNode(out), nil
}
