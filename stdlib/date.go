package stdlib

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

func decimalFromFloat(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func registerDates(r *Registry) {
	r.Register(Function{Name: "now", MinArgs: 0, MaxArgs: 0, Call: biNow})
	r.Register(Function{Name: "parseDate", MinArgs: 1, MaxArgs: 2, Call: biParseDate})
	r.Register(Function{Name: "formatDate", MinArgs: 1, MaxArgs: 2, Call: biFormatDate})
	r.Register(Function{Name: "dateAdd", MinArgs: 3, MaxArgs: 3, Call: biDateAdd})
	r.Register(Function{Name: "dateDiff", MinArgs: 2, MaxArgs: 3, Call: biDateDiff})
}

// goLayout translates the handful of named formats JEX scripts can pass to
// parseDate/formatDate into Go's reference-time layouts. "o" is the
// round-trip ISO8601 form used internally for to-string coercion (§8
// property 9).
func goLayout(name string) string {
	switch name {
	case "", "o", "iso", "iso8601":
		return value.ISO8601
	case "date":
		return "2006-01-02"
	case "time":
		return "15:04:05"
	default:
		return name
	}
}

func biNow(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.DateTimeValue(time.Now().UTC()), nil
}

func biParseDate(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	layout := value.ISO8601
	if len(args) == 2 {
		layout = goLayout(args[1].ToJEXString())
	}
	t, err := time.Parse(layout, args[0].ToJEXString())
	if err != nil {
		return value.NullValue(), nil
	}
	return value.DateTimeValue(t), nil
}

func biFormatDate(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	layout := value.ISO8601
	if len(args) == 2 {
		layout = goLayout(args[1].ToJEXString())
	}
	return value.StringValue(args[0].ToDateOrZero().Format(layout)), nil
}

func biDateAdd(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	t := args[0].ToDateOrZero()
	unit := args[1].ToJEXString()
	amount := int(args[2].ToNumber().IntPart())
	switch unit {
	case "second", "seconds":
		t = t.Add(time.Duration(amount) * time.Second)
	case "minute", "minutes":
		t = t.Add(time.Duration(amount) * time.Minute)
	case "hour", "hours":
		t = t.Add(time.Duration(amount) * time.Hour)
	case "day", "days":
		t = t.AddDate(0, 0, amount)
	case "month", "months":
		t = t.AddDate(0, amount, 0)
	case "year", "years":
		t = t.AddDate(amount, 0, 0)
	default:
		return value.Value{}, errors.NewRuntimeError("dateAdd: unknown unit %q", unit).WithFunction("dateAdd")
	}
	return value.DateTimeValue(t), nil
}

func biDateDiff(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	a := args[0].ToDateOrZero()
	b := args[1].ToDateOrZero()
	unit := "seconds"
	if len(args) == 3 {
		unit = args[2].ToJEXString()
	}
	d := a.Sub(b)
	switch unit {
	case "second", "seconds":
		return value.NumberValue(decimalFromFloat(d.Seconds())), nil
	case "minute", "minutes":
		return value.NumberValue(decimalFromFloat(d.Minutes())), nil
	case "hour", "hours":
		return value.NumberValue(decimalFromFloat(d.Hours())), nil
	case "day", "days":
		return value.NumberValue(decimalFromFloat(d.Hours() / 24)), nil
	default:
		return value.Value{}, errors.NewRuntimeError("dateDiff: unknown unit %q", unit).WithFunction("dateDiff")
	}
}
