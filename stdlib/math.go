package stdlib

import (
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func registerMath(r *Registry) {
	r.Register(Function{Name: "abs", MinArgs: 1, MaxArgs: 1, Call: biAbs})
	r.Register(Function{Name: "min", MinArgs: 1, MaxArgs: -1, Call: biMin})
	r.Register(Function{Name: "max", MinArgs: 1, MaxArgs: -1, Call: biMax})
	r.Register(Function{Name: "round", MinArgs: 1, MaxArgs: 2, Call: biRound})
	r.Register(Function{Name: "floor", MinArgs: 1, MaxArgs: 1, Call: biFloor})
	r.Register(Function{Name: "ceil", MinArgs: 1, MaxArgs: 1, Call: biCeil})
}

func biAbs(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.NumberValue(args[0].ToNumber().Abs()), nil
}

func biMin(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	best := args[0].ToNumber()
	for _, a := range args[1:] {
		if n := a.ToNumber(); n.LessThan(best) {
			best = n
		}
	}
	return value.NumberValue(best), nil
}

func biMax(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	best := args[0].ToNumber()
	for _, a := range args[1:] {
		if n := a.ToNumber(); n.GreaterThan(best) {
			best = n
		}
	}
	return value.NumberValue(best), nil
}

func biRound(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	places := int32(0)
	if len(args) == 2 {
		places = int32(args[1].ToNumber().IntPart())
	}
	return value.NumberValue(args[0].ToNumber().Round(places)), nil
}

func biFloor(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.NumberValue(args[0].ToNumber().Floor()), nil
}

func biCeil(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.NumberValue(args[0].ToNumber().Ceil()), nil
}
