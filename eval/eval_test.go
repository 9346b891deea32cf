package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/compiler"
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/library"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/stdlib"
	"github.com/jex-lang/jex/value"
)

func run(t *testing.T, source string, input *value.Node, opts runtime.ExecOptions) (*value.Node, error) {
	t.Helper()
	prog, err := compiler.Compile(source, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	if input == nil {
		input = value.NullNode()
	}
	ctx := runtime.New(input, nil, opts, nil)
	ev := New(prog, library.NewManager(), stdlib.Default())
	return ev.Execute(ctx)
}

func mustRun(t *testing.T, source string, input *value.Node) *value.Node {
	t.Helper()
	out, err := run(t, source, input, runtime.DefaultExecOptions())
	require.NoError(t, err)
	return out
}

// Scenario B: MaxLoopIterations is enforced and reported by name/value.
func TestScenarioB_LoopIterationLimit(t *testing.T) {
	opts := runtime.DefaultExecOptions()
	opts.MaxLoopIterations = 100
	_, err := run(t, `%do i = 1 %to 1000000; %let x = &i; %end;`, nil, opts)
	require.Error(t, err)
	var le *errors.LimitExceeded
	require.ErrorAs(t, err, &le)
	require.Equal(t, errors.LimitLoopIterations, le.Kind)
	require.Equal(t, 100, le.Limit)
}

// Scenario C: a loop that breaks on the third element counts 3 iterations.
func TestScenarioC_Break(t *testing.T) {
	input := value.NewObject()
	nums := value.ArrayNode(value.IntNode(1), value.IntNode(2), value.IntNode(3), value.IntNode(4), value.IntNode(5))
	input.Set("numbers", nums)

	script := `
%let count = 0;
%foreach num %in $in.numbers %do;
%let count = count + 1;
%if (&num == 3) %then %do; %break; %end;
%end;
%set $.iterations = count;
`
	out := mustRun(t, script, input)
	iterations, ok := out.Get("iterations")
	require.True(t, ok)
	require.True(t, iterations.Num.Equal(value.IntValue(3).Num))
}

// Scenario D: continue skips the rest of that iteration's body only.
func TestScenarioD_Continue(t *testing.T) {
	input := value.NewObject()
	nums := value.ArrayNode(value.IntNode(1), value.IntNode(2), value.IntNode(3), value.IntNode(4), value.IntNode(5))
	input.Set("numbers", nums)

	script := `
%let sum = 0;
%foreach num %in $in.numbers %do;
%if (&num == 3) %then %do; %continue; %end;
%let sum = sum + &num;
%end;
%set $.sum = sum;
`
	out := mustRun(t, script, input)
	sum, ok := out.Get("sum")
	require.True(t, ok)
	require.True(t, sum.Num.Equal(value.IntValue(12).Num))
}

// Scenario E: a recursive user function.
func TestScenarioE_RecursiveFactorial(t *testing.T) {
	script := `
%func factorial(n); %if (&n <= 1) %then %do; %return 1; %end; %return &n * factorial(&n - 1); %endfunc;
%set $.result = factorial(5);
`
	out := mustRun(t, script, nil)
	result, ok := out.Get("result")
	require.True(t, ok)
	require.True(t, result.Num.Equal(value.IntValue(120).Num))
}

func TestRecursionDepthLimitRaisesLimitExceeded(t *testing.T) {
	opts := runtime.DefaultExecOptions()
	opts.MaxRecursionDepth = 5
	script := `
%func loopy(n); %return loopy(&n + 1); %endfunc;
%set $.x = loopy(0);
`
	_, err := run(t, script, nil, opts)
	require.Error(t, err)
	var le *errors.LimitExceeded
	require.ErrorAs(t, err, &le)
	require.Equal(t, errors.LimitRecursionDepth, le.Kind)
}

func TestSetFormARejectsWriteIntoIn(t *testing.T) {
	_, err := run(t, `%set $in.a = 1;`, value.NewObject(), runtime.DefaultExecOptions())
	require.Error(t, err)
	var re *errors.RuntimeError
	require.ErrorAs(t, err, &re)
}

func TestSetFormBRejectsWriteIntoInput(t *testing.T) {
	_, err := run(t, `%set $in, $.a, 1;`, value.NewObject(), runtime.DefaultExecOptions())
	require.Error(t, err)
}

func TestSetFormBWritesIntoExplicitOutTarget(t *testing.T) {
	out := mustRun(t, `%set $out, $.a.b, 7;`, nil)
	a, ok := out.Get("a")
	require.True(t, ok)
	b, ok := a.Get("b")
	require.True(t, ok)
	require.True(t, b.Num.Equal(value.IntValue(7).Num))
}

// Scope discipline (property 6): a %let inside a function body does not
// leak into the caller's scope after return.
func TestLetInsideFunctionDoesNotLeakToCaller(t *testing.T) {
	script := `
%func setsLocal(); %let secret = 42; %return 1; %endfunc;
%let secret = 1;
%let ignored = setsLocal();
%set $.secret = secret;
`
	out := mustRun(t, script, nil)
	secret, ok := out.Get("secret")
	require.True(t, ok)
	require.True(t, secret.Num.Equal(value.IntValue(1).Num))
}

// Scope discipline: %let inside a loop updates an outer binding of the same
// name rather than shadowing it.
func TestLetInsideLoopUpdatesOuterBinding(t *testing.T) {
	script := `
%let total = 0;
%do i = 1 %to 3; %let total = total + &i; %end;
%set $.total = total;
`
	out := mustRun(t, script, nil)
	total, ok := out.Get("total")
	require.True(t, ok)
	require.True(t, total.Num.Equal(value.IntValue(6).Num))
}

// Call resolution order: script function shadows a same-named library
// function, which in turn shadows the stdlib/engine registry.
func TestCallResolutionOrderScriptBeforeLibraryBeforeStdlib(t *testing.T) {
	libs := library.NewManager()
	require.NoError(t, libs.Load("mylib", `%func greet(); %return "from-library"; %endfunc;`))

	script := `
%func greet(); %return "from-script"; %endfunc;
%set $.result = greet();
`
	prog, err := compiler.Compile(script, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	ctx := runtime.New(value.NullNode(), nil, runtime.DefaultExecOptions(), nil)
	ev := New(prog, libs, stdlib.Default())
	out, err := ev.Execute(ctx)
	require.NoError(t, err)
	result, ok := out.Get("result")
	require.True(t, ok)
	require.Equal(t, "from-script", result.Str)

	// With no script-level override, the library wins over stdlib.
	script2 := `%set $.result = greet();`
	prog2, err := compiler.Compile(script2, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	ctx2 := runtime.New(value.NullNode(), nil, runtime.DefaultExecOptions(), nil)
	ev2 := New(prog2, libs, stdlib.Default())
	out2, err := ev2.Execute(ctx2)
	require.NoError(t, err)
	result2, ok := out2.Get("result")
	require.True(t, ok)
	require.Equal(t, "from-library", result2.Str)
}

// Short-circuit (property 8): the right operand of && is not evaluated when
// the left is falsy, observable via a host function registered by the test
// that flips a Go flag when called.
func TestShortCircuitAndSkipsRightOperand(t *testing.T) {
	script := `
%let triggered = false;
%if (false && setSideEffect()) %then %do; %let unused = 1; %end;
%set $.triggered = triggered;
`
	prog, err := compiler.Compile(script, runtime.DefaultCompileOptions())
	require.NoError(t, err)
	reg := stdlib.Default()
	sideEffect := false
	reg.Register(stdlib.Function{Name: "setSideEffect", MinArgs: 0, MaxArgs: 0, Call: func(ctx *runtime.Context, args []value.Value) (value.Value, error) {
		sideEffect = true
		return value.BoolValue(true), nil
	}})
	ctx := runtime.New(value.NullNode(), nil, runtime.DefaultExecOptions(), nil)
	ev := New(prog, library.NewManager(), reg)
	_, err = ev.Execute(ctx)
	require.NoError(t, err)
	require.False(t, sideEffect, "right operand of && must not evaluate when left is falsy")
}

// Macro expansion: `&name` inside a string literal is replaced with that
// variable's to-string coercion at evaluation time.
func TestStringLiteralMacroExpansion(t *testing.T) {
	script := `
%let name = "Jane";
%set $.greeting = "hello &name";
`
	out := mustRun(t, script, nil)
	greeting, ok := out.Get("greeting")
	require.True(t, ok)
	require.Equal(t, "hello Jane", greeting.Str)
}

// Mixed-kind equality falls back to string coercion (Open Question #2).
func TestMixedKindEqualityUsesStringCoercion(t *testing.T) {
	script := `%set $.eq = 1 == "1";`
	out := mustRun(t, script, nil)
	eq, ok := out.Get("eq")
	require.True(t, ok)
	require.True(t, eq.Bool)
}

// Division and modulo by zero yield 0 (Open Question #1).
func TestDivisionAndModuloByZeroYieldZero(t *testing.T) {
	out := mustRun(t, `%set $.d = 5 / 0; %set $.m = 5 % 0;`, nil)
	d, _ := out.Get("d")
	require.True(t, d.Num.IsZero())
	m, _ := out.Get("m")
	require.True(t, m.Num.IsZero())
}

func TestForeachOverJsonArrayFromInput(t *testing.T) {
	input := value.NewObject()
	input.Set("items", value.ArrayNode(value.IntNode(1), value.IntNode(2), value.IntNode(3)))
	script := `
%let total = 0;
%foreach item %in $in.items %do;
%let total = total + &item;
%end;
%set $.total = total;
`
	out := mustRun(t, script, input)
	total, ok := out.Get("total")
	require.True(t, ok)
	require.True(t, total.Num.Equal(value.IntValue(6).Num))
}

func TestObjectAndArrayLiteralsEvaluate(t *testing.T) {
	out := mustRun(t, `%set $.payload = { a: 1, b: [1, 2, 3] };`, nil)
	payload, ok := out.Get("payload")
	require.True(t, ok)
	a, ok := payload.Get("a")
	require.True(t, ok)
	require.True(t, a.Num.Equal(value.IntValue(1).Num))
	b, ok := payload.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, len(b.Arr))
}

func TestInputIsNotMutatedByExecution(t *testing.T) {
	input := value.NewObject()
	input.Set("a", value.IntNode(1))
	before := input.DeepClone()

	mustRun(t, `%set $.copy = $in.a;`, input)
	require.True(t, input.Equal(before))
}
