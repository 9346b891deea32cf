package stdlib

import (
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/path"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func registerCollections(r *Registry) {
	r.Register(Function{Name: "arr", MinArgs: 0, MaxArgs: -1, Call: biArr})
	r.Register(Function{Name: "obj", MinArgs: 0, MaxArgs: -1, Call: biObj})
	r.Register(Function{Name: "push", MinArgs: 2, MaxArgs: 2, Call: biPush})
	r.Register(Function{Name: "first", MinArgs: 1, MaxArgs: 1, Call: biFirst})
	r.Register(Function{Name: "last", MinArgs: 1, MaxArgs: 1, Call: biLast})
	r.Register(Function{Name: "count", MinArgs: 1, MaxArgs: 1, Call: biCount})
	r.Register(Function{Name: "indexBy", MinArgs: 2, MaxArgs: 2, Call: biIndexBy})
	r.Register(Function{Name: "lookup", MinArgs: 2, MaxArgs: 2, Call: biLookup})
}

func biArr(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	items := make([]*value.Node, len(args))
	for i, a := range args {
		items[i] = a.ToNode()
	}
	return value.FromNode(value.ArrayNode(items...)), nil
}

// biObj builds an object from alternating key/value arguments: obj("a", 1,
// "b", 2) -> {"a":1,"b":2}. A trailing unpaired key is dropped (§4.5).
func biObj(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	out := value.NewObject()
	for i := 0; i+1 < len(args); i += 2 {
		out.Set(args[i].ToJEXString(), args[i+1].ToNode())
	}
	return value.FromNode(out), nil
}

func biPush(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	if node.Kind != value.NodeArray {
		return value.Value{}, errors.NewRuntimeError("push: first argument must be an array").WithFunction("push")
	}
	out := node.DeepClone()
	out.Arr = append(out.Arr, args[1].ToNode())
	return value.FromNode(out), nil
}

func biFirst(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	if node.Kind != value.NodeArray || len(node.Arr) == 0 {
		return value.NullValue(), nil
	}
	return value.FromNode(node.Arr[0]), nil
}

func biLast(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	if node.Kind != value.NodeArray || len(node.Arr) == 0 {
		return value.NullValue(), nil
	}
	return value.FromNode(node.Arr[len(node.Arr)-1]), nil
}

func biCount(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.IntValue(args[0].ToNode().Len()), nil
}

// biIndexBy builds an object from an array of objects, keyed by the value a
// JSONPath resolves to on each element; elements where the path resolves to
// nothing are skipped.
func biIndexBy(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	keyPath := args[1].ToJEXString()
	out := value.NewObject()
	if node.Kind != value.NodeArray {
		return value.FromNode(out), nil
	}
	for _, elem := range node.Arr {
		key, ok := path.Lookup(elem, keyPath)
		if !ok {
			continue
		}
		out.Set(value.FromNode(key).ToJEXString(), elem)
	}
	return value.FromNode(out), nil
}

// biLookup reads a key from a map, returning Null when absent (§4.5).
func biLookup(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	key := args[1].ToJEXString()
	if v, ok := node.Get(key); ok {
		return value.FromNode(v), nil
	}
	return value.NullValue(), nil
}
