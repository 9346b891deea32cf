package stdlib

import (
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/value"
)

// regexCache bounds memory for repeated regex literals across many calls in
// one process; Go's RE2 engine (regexp) never backtracks, so the timeout
// enforced around it is a defensive ceiling rather than a response to actual
// catastrophic-backtracking risk.
var regexCache, _ = lru.New[string, *regexp.Regexp](256)

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.NewRuntimeError("invalid regular expression %q: %s", pattern, err.Error())
	}
	regexCache.Add(pattern, re)
	return re, nil
}

func withRegexTimeout(ctx *runtime.Context, fn func() value.Value) (value.Value, error) {
	done := make(chan value.Value, 1)
	go func() { done <- fn() }()
	timeout := time.Duration(ctx.Options.RegexTimeoutMs) * time.Millisecond
	select {
	case v := <-done:
		return v, nil
	case <-time.After(timeout):
		return value.Value{}, errors.NewRuntimeError("regex timed out after %d ms", ctx.Options.RegexTimeoutMs)
	}
}

func registerStrings(r *Registry) {
	r.Register(Function{Name: "trim", MinArgs: 1, MaxArgs: 1, Call: biTrim})
	r.Register(Function{Name: "lower", MinArgs: 1, MaxArgs: 1, Call: biLower})
	r.Register(Function{Name: "upper", MinArgs: 1, MaxArgs: 1, Call: biUpper})
	r.Register(Function{Name: "substr", MinArgs: 2, MaxArgs: 3, Call: biSubstr})
	r.Register(Function{Name: "left", MinArgs: 2, MaxArgs: 2, Call: biLeft})
	r.Register(Function{Name: "right", MinArgs: 2, MaxArgs: 2, Call: biRight})
	r.Register(Function{Name: "split", MinArgs: 2, MaxArgs: 2, Call: biSplit})
	r.Register(Function{Name: "join", MinArgs: 2, MaxArgs: 2, Call: biJoin})
	r.Register(Function{Name: "replace", MinArgs: 3, MaxArgs: 3, Call: biReplace})
	r.Register(Function{Name: "regexMatch", MinArgs: 2, MaxArgs: 2, Call: biRegexMatch})
	r.Register(Function{Name: "regexReplace", MinArgs: 3, MaxArgs: 3, Call: biRegexReplace})
	r.Register(Function{Name: "concat", MinArgs: 0, MaxArgs: -1, Call: biConcat})
	r.Register(Function{Name: "length", MinArgs: 1, MaxArgs: 1, Call: biLength})
}

func biTrim(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.StringValue(strings.TrimSpace(args[0].ToJEXString())), nil
}

func biLower(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.StringValue(lower(args[0].ToJEXString())), nil
}

func biUpper(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	return value.StringValue(strings.ToUpper(args[0].ToJEXString())), nil
}

func biSubstr(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := []rune(args[0].ToJEXString())
	start := int(args[1].ToNumber().IntPart())
	length := len(s) - start
	if len(args) == 3 {
		length = int(args[2].ToNumber().IntPart())
	}
	if start < 0 || start > len(s) {
		return value.StringValue(""), nil
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	if end < start {
		end = start
	}
	return value.StringValue(string(s[start:end])), nil
}

func biLeft(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := []rune(args[0].ToJEXString())
	n := int(args[1].ToNumber().IntPart())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return value.StringValue(string(s[:n])), nil
}

func biRight(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := []rune(args[0].ToJEXString())
	n := int(args[1].ToNumber().IntPart())
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return value.StringValue(string(s[len(s)-n:])), nil
}

func biSplit(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	parts := strings.Split(args[0].ToJEXString(), args[1].ToJEXString())
	nodes := make([]*value.Node, len(parts))
	for i, p := range parts {
		nodes[i] = value.StringNode(p)
	}
	return value.FromNode(value.ArrayNode(nodes...)), nil
}

func biJoin(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	node := args[0].ToNode()
	sep := args[1].ToJEXString()
	if node.Kind != value.NodeArray {
		return value.StringValue(""), nil
	}
	parts := make([]string, len(node.Arr))
	for i, c := range node.Arr {
		parts[i] = value.FromNode(c).ToJEXString()
	}
	return value.StringValue(strings.Join(parts, sep)), nil
}

func biReplace(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := args[0].ToJEXString()
	old := args[1].ToJEXString()
	repl := args[2].ToJEXString()
	return value.StringValue(strings.ReplaceAll(s, old, repl)), nil
}

func biRegexMatch(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := args[0].ToJEXString()
	pattern := args[1].ToJEXString()
	re, err := compileRegex(pattern)
	if err != nil {
		return value.Value{}, err
	}
	return withRegexTimeout(ctx, func() value.Value {
		return value.BoolValue(re.MatchString(s))
	})
}

func biRegexReplace(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	s := args[0].ToJEXString()
	pattern := args[1].ToJEXString()
	repl := args[2].ToJEXString()
	re, err := compileRegex(pattern)
	if err != nil {
		return value.Value{}, err
	}
	return withRegexTimeout(ctx, func() value.Value {
		return value.StringValue(re.ReplaceAllString(s, repl))
	})
}

func biConcat(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.ToJEXString())
	}
	return value.StringValue(b.String()), nil
}

func biLength(ctx *runtime.Context, args []value.Value) (value.Value, error) {
	v := args[0]
	if v.Kind() == value.String {
		return value.IntValue(len([]rune(v.AsString()))), nil
	}
	return value.IntValue(v.ToNode().Len()), nil
}
