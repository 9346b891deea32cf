package stdlib

import (
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func registerTypes(r *Registry) {
	r.Register(Function{Name: "toString", MinArgs: 1, MaxArgs: 1, Call: biToString})
	r.Register(Function{Name: "toNumber", MinArgs: 1, MaxArgs: 1, Call: biToNumber})
	r.Register(Function{Name: "toBool", MinArgs: 1, MaxArgs: 1, Call: biToBool})
	r.Register(Function{Name: "toDate", MinArgs: 1, MaxArgs: 1, Call: biToDate})
	r.Register(Function{Name: "isNull", MinArgs: 1, MaxArgs: 1, Call: biIsNull})
	r.Register(Function{Name: "isEmpty", MinArgs: 1, MaxArgs: 1, Call: biIsEmpty})
	r.Register(Function{Name: "typeOf", MinArgs: 1, MaxArgs: 1, Call: biTypeOf})
}

func biToString(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.StringValue(args[0].ToJEXString()), nil
}

func biToNumber(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.NumberValue(args[0].ToNumber()), nil
}

func biToBool(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.BoolValue(args[0].ToBool()), nil
}

func biToDate(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.DateTimeValue(args[0].ToDateOrZero()), nil
}

func biIsNull(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind() == value.Null {
		return value.BoolValue(true), nil
	}
	if v.Kind() == value.JsonNode {
		return value.BoolValue(v.AsNode().IsNull()), nil
	}
	return value.BoolValue(false), nil
}

func biIsEmpty(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.Null:
		return value.BoolValue(true), nil
	case value.String:
		return value.BoolValue(v.AsString() == ""), nil
	case value.JsonNode:
		n := v.AsNode()
		if n.IsNull() {
			return value.BoolValue(true), nil
		}
		if n.Kind == value.NodeString {
			return value.BoolValue(n.Str == ""), nil
		}
		if n.Kind == value.NodeArray || n.Kind == value.NodeObject {
			return value.BoolValue(n.Len() == 0), nil
		}
		return value.BoolValue(false), nil
	default:
		return value.BoolValue(false), nil
	}
}

func biTypeOf(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind() == value.JsonNode {
		n := v.AsNode()
		if n.IsNull() {
			return value.StringValue("null"), nil
		}
		return value.StringValue(n.Kind.String()), nil
	}
	return value.StringValue(v.Kind().String()), nil
}
