package stdlib

import (
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/path"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func registerOutput(r *Registry) {
	r.Register(Function{Name: "setPath", MinArgs: 3, MaxArgs: 3, Call: biSetPath})
}

// biSetPath is the function form of %set Form B: write value at a path
// string inside an explicit target node (§4.4, §4.5). Writing into $in is
// rejected the same way %set rejects it.
func biSetPath(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	target := args[0].ToNode()
	raw := args[1].ToJEXString()

	if target == ctx.Input || path.RootOf(raw) == path.RootIn {
		return value.Value{}, errors.NewRuntimeError("cannot write into $in: input is read-only").WithFunction("setPath").WithPath(raw)
	}

	if err := path.Assign(target, raw, args[2].ToNode()); err != nil {
		if re, ok := err.(*errors.RuntimeError); ok {
			return value.Value{}, re.WithFunction("setPath")
		}
		return value.Value{}, err
	}
	return value.NullValue(), nil
}
