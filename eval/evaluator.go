// Package eval tree-walks a compiled program against a runtime.Context
// (§4.4): statement execution, path construction/assignment for %set,
// expression evaluation including `&name` macro expansion, and call
// resolution across script functions, loaded libraries, and the stdlib/host
// registry.
package eval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jex-lang/jex/ast"
	"github.com/jex-lang/jex/compiler"
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/library"
	"github.com/jex-lang/jex/path"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/stdlib"
	"github.com/jex-lang/jex/value"
)

// Evaluator walks one compiled Program against however many Contexts
// Execute is called with; it holds no per-execution state itself, so one
// Evaluator is safe to reuse across concurrent executions (§3, §8 property
// 4), matching Program's own immutability guarantee.
type Evaluator struct {
	Program   *compiler.Program
	Libraries *library.Manager
	Registry  *stdlib.Registry
}

// New builds an Evaluator. libs and registry may be nil, in which case
// library and stdlib/host call resolution tiers simply never match.
func New(prog *compiler.Program, libs *library.Manager, registry *stdlib.Registry) *Evaluator {
	if registry == nil {
		registry = stdlib.NewRegistry()
	}
	return &Evaluator{Program: prog, Libraries: libs, Registry: registry}
}

// Execute runs every non-declaration top-level statement of the program
// against ctx and returns the resulting $out tree. A top-level %return ends
// execution early without otherwise affecting the result (§4.4).
func (e *Evaluator) Execute(ctx *runtime.Context) (*value.Node, error) {
	for _, stmt := range e.Program.AST.Statements {
		if _, ok := stmt.(*ast.FunctionDecl); ok {
			continue
		}
		if err := e.execStmt(ctx, stmt); err != nil {
			return nil, err
		}
		if ctx.ShouldUnwind() {
			break
		}
	}
	ctx.ConsumeReturn()
	return ctx.Output, nil
}

// ctxEvaluator binds a Context to the Evaluator so it can satisfy
// path.Evaluator, whose Eval method carries no context parameter of its own.
type ctxEvaluator struct {
	e   *Evaluator
	ctx *runtime.Context
}

func (ce ctxEvaluator) Eval(expr ast.Expr) (value.Value, error) {
	return ce.e.evalExpr(ce.ctx, expr)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (e *Evaluator) execStmt(ctx *runtime.Context, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v, err := e.evalExpr(ctx, s.Value)
		if err != nil {
			return err
		}
		ctx.Scopes.Let(s.Name, v)
		return nil

	case *ast.SetStmt:
		return e.execSet(ctx, s)

	case *ast.IfStmt:
		cond, err := e.evalExpr(ctx, s.Condition)
		if err != nil {
			return err
		}
		if cond.ToBool() {
			return e.execBlock(ctx, s.Then)
		}
		if s.Else != nil {
			return e.execBlock(ctx, s.Else)
		}
		return nil

	case *ast.ForeachStmt:
		return e.execForeach(ctx, s)

	case *ast.DoLoopStmt:
		return e.execDoLoop(ctx, s)

	case *ast.BreakStmt:
		ctx.SetBreak()
		return nil

	case *ast.ContinueStmt:
		ctx.SetContinue()
		return nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			ctx.SetReturn(value.NullValue())
			return nil
		}
		v, err := e.evalExpr(ctx, s.Value)
		if err != nil {
			return err
		}
		ctx.SetReturn(v)
		return nil

	case *ast.ExpressionStmt:
		_, err := e.evalExpr(ctx, s.Expression)
		return err

	case *ast.FunctionDecl:
		return nil

	default:
		return errors.NewRuntimeError("unsupported statement type %T", stmt).WithSpan(stmt.Span())
	}
}

func (e *Evaluator) execBlock(ctx *runtime.Context, stmts []ast.Stmt) error {
	for _, st := range stmts {
		if err := e.execStmt(ctx, st); err != nil {
			return err
		}
		if ctx.ShouldUnwind() {
			return nil
		}
	}
	return nil
}

// execSet implements both shapes of %set (§4.2, §4.4): Form A writes inside
// $out at a path built from the single path expression; Form B evaluates an
// explicit target node and writes inside it. Writing into $in is rejected
// either way.
func (e *Evaluator) execSet(ctx *runtime.Context, s *ast.SetStmt) error {
	val, err := e.evalExpr(ctx, s.Value)
	if err != nil {
		return err
	}

	target := ctx.Output
	if s.Target != nil {
		targetVal, err := e.evalExpr(ctx, s.Target)
		if err != nil {
			return err
		}
		target = targetVal.ToNode()
	}

	raw, err := path.Construct(ctxEvaluator{e, ctx}, s.Path)
	if err != nil {
		return err
	}

	if target == ctx.Input || path.RootOf(raw) == path.RootIn {
		return errors.NewRuntimeError("cannot write into $in: input is read-only").WithSpan(s.Span()).WithPath(raw)
	}

	if err := path.Assign(target, raw, val.ToNode()); err != nil {
		return err
	}
	return nil
}

func (e *Evaluator) execForeach(ctx *runtime.Context, s *ast.ForeachStmt) error {
	collVal, err := e.evalExpr(ctx, s.Collection)
	if err != nil {
		return err
	}

	var items []value.Value
	node := collVal.ToNode()
	switch {
	case node.IsNull():
		items = nil
	case node.Kind == value.NodeArray:
		items = make([]value.Value, len(node.Arr))
		for i, c := range node.Arr {
			items[i] = value.FromNode(c)
		}
	default:
		items = []value.Value{collVal}
	}

	ctx.Scopes.Push()
	defer ctx.Scopes.Pop()

	for _, item := range items {
		if err := ctx.EnterLoopIteration(); err != nil {
			return err
		}
		ctx.Scopes.Bind(s.VarName, item)
		if err := e.execBlock(ctx, s.Body); err != nil {
			return err
		}
		if ctx.ConsumeLoopExit() {
			break
		}
	}
	return nil
}

func (e *Evaluator) execDoLoop(ctx *runtime.Context, s *ast.DoLoopStmt) error {
	startV, err := e.evalExpr(ctx, s.Start)
	if err != nil {
		return err
	}
	endV, err := e.evalExpr(ctx, s.End)
	if err != nil {
		return err
	}
	start := startV.ToNumber().IntPart()
	end := endV.ToNumber().IntPart()

	ctx.Scopes.Push()
	defer ctx.Scopes.Pop()

	for i := start; i <= end; i++ {
		if err := ctx.EnterLoopIteration(); err != nil {
			return err
		}
		ctx.Scopes.Bind(s.VarName, value.NumberValue(value.ParseNumberLiteral(strconv.FormatInt(i, 10))))
		if err := e.execBlock(ctx, s.Body); err != nil {
			return err
		}
		if ctx.ConsumeLoopExit() {
			break
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (e *Evaluator) evalExpr(ctx *runtime.Context, expr ast.Expr) (value.Value, error) {
	switch ex := expr.(type) {
	case *ast.NullLit:
		return value.NullValue(), nil

	case *ast.BoolLit:
		return value.BoolValue(ex.Value), nil

	case *ast.NumberLit:
		return value.NumberValue(value.ParseNumberLiteral(ex.Raw)), nil

	case *ast.StringLit:
		expanded, err := e.expandMacros(ctx, ex.Value)
		if err != nil {
			return value.Value{}, err
		}
		return value.StringValue(expanded), nil

	case *ast.VarRef:
		v, ok := ctx.Scopes.Get(ex.Name)
		if !ok {
			if ctx.Options.Strict {
				return value.Value{}, errors.NewRuntimeError("undefined variable %q", ex.Name).WithSpan(ex.Span())
			}
			return value.NullValue(), nil
		}
		return v, nil

	case *ast.BuiltInVar:
		switch ex.Name {
		case "in":
			return value.FromNode(ctx.Input), nil
		case "out":
			return value.FromNode(ctx.Output), nil
		case "meta":
			return value.FromNode(ctx.Meta), nil
		default:
			return value.Value{}, errors.NewRuntimeError("unknown built-in variable $%s", ex.Name).WithSpan(ex.Span())
		}

	case *ast.JsonPathLit:
		return value.StringValue(ex.Path), nil

	case *ast.UnaryExpr:
		return e.evalUnary(ctx, ex)

	case *ast.BinaryExpr:
		return e.evalBinary(ctx, ex)

	case *ast.CallExpr:
		return e.evalCall(ctx, ex)

	case *ast.ObjectLit:
		obj := value.NewObject()
		for i, k := range ex.Keys {
			v, err := e.evalExpr(ctx, ex.Values[i])
			if err != nil {
				return value.Value{}, err
			}
			obj.Set(k, v.ToNode())
		}
		return value.FromNode(obj), nil

	case *ast.ArrayLit:
		items := make([]*value.Node, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := e.evalExpr(ctx, el)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v.ToNode()
		}
		return value.FromNode(value.ArrayNode(items...)), nil

	case *ast.PropertyAccess:
		objV, err := e.evalExpr(ctx, ex.Object)
		if err != nil {
			return value.Value{}, err
		}
		child, ok := objV.ToNode().Get(ex.Name)
		if !ok {
			if ctx.Options.Strict {
				return value.Value{}, errors.NewRuntimeError("property %q not found", ex.Name).WithSpan(ex.Span())
			}
			return value.NullValue(), nil
		}
		return value.FromNode(child), nil

	case *ast.IndexAccess:
		objV, err := e.evalExpr(ctx, ex.Object)
		if err != nil {
			return value.Value{}, err
		}
		idxV, err := e.evalExpr(ctx, ex.Index)
		if err != nil {
			return value.Value{}, err
		}
		child, ok := objV.ToNode().Index(int(idxV.ToNumber().IntPart()))
		if !ok {
			if ctx.Options.Strict {
				return value.Value{}, errors.NewRuntimeError("index %d out of bounds", idxV.ToNumber().IntPart()).WithSpan(ex.Span())
			}
			return value.NullValue(), nil
		}
		return value.FromNode(child), nil

	default:
		return value.Value{}, errors.NewRuntimeError("unsupported expression type %T", expr).WithSpan(expr.Span())
	}
}

func (e *Evaluator) evalUnary(ctx *runtime.Context, ex *ast.UnaryExpr) (value.Value, error) {
	v, err := e.evalExpr(ctx, ex.Operand)
	if err != nil {
		return value.Value{}, err
	}
	switch ex.Operator {
	case "!":
		return value.BoolValue(!v.ToBool()), nil
	case "-":
		return value.NumberValue(v.ToNumber().Neg()), nil
	default:
		return value.Value{}, errors.NewRuntimeError("unknown unary operator %q", ex.Operator).WithSpan(ex.Span())
	}
}

func (e *Evaluator) evalBinary(ctx *runtime.Context, ex *ast.BinaryExpr) (value.Value, error) {
	switch ex.Operator {
	case "&&":
		l, err := e.evalExpr(ctx, ex.Left)
		if err != nil {
			return value.Value{}, err
		}
		if !l.ToBool() {
			return value.BoolValue(false), nil
		}
		r, err := e.evalExpr(ctx, ex.Right)
		if err != nil {
			return value.Value{}, err
		}
		return value.BoolValue(r.ToBool()), nil

	case "||":
		l, err := e.evalExpr(ctx, ex.Left)
		if err != nil {
			return value.Value{}, err
		}
		if l.ToBool() {
			return value.BoolValue(true), nil
		}
		r, err := e.evalExpr(ctx, ex.Right)
		if err != nil {
			return value.Value{}, err
		}
		return value.BoolValue(r.ToBool()), nil
	}

	l, err := e.evalExpr(ctx, ex.Left)
	if err != nil {
		return value.Value{}, err
	}
	r, err := e.evalExpr(ctx, ex.Right)
	if err != nil {
		return value.Value{}, err
	}

	switch ex.Operator {
	case "+":
		if l.Kind() == value.String || r.Kind() == value.String {
			return value.StringValue(l.ToJEXString() + r.ToJEXString()), nil
		}
		return value.NumberValue(l.ToNumber().Add(r.ToNumber())), nil
	case "-":
		return value.NumberValue(l.ToNumber().Sub(r.ToNumber())), nil
	case "*":
		return value.NumberValue(l.ToNumber().Mul(r.ToNumber())), nil
	case "/":
		rn := r.ToNumber()
		if rn.IsZero() {
			return value.NumberValue(rn), nil
		}
		return value.NumberValue(l.ToNumber().Div(rn)), nil
	case "%":
		rn := r.ToNumber()
		if rn.IsZero() {
			return value.NumberValue(rn), nil
		}
		return value.NumberValue(l.ToNumber().Mod(rn)), nil
	case "<":
		return value.BoolValue(l.ToNumber().Cmp(r.ToNumber()) < 0), nil
	case "<=":
		return value.BoolValue(l.ToNumber().Cmp(r.ToNumber()) <= 0), nil
	case ">":
		return value.BoolValue(l.ToNumber().Cmp(r.ToNumber()) > 0), nil
	case ">=":
		return value.BoolValue(l.ToNumber().Cmp(r.ToNumber()) >= 0), nil
	case "==":
		return value.BoolValue(valuesEqual(l, r)), nil
	case "!=":
		return value.BoolValue(!valuesEqual(l, r)), nil
	default:
		return value.Value{}, errors.NewRuntimeError("unknown binary operator %q", ex.Operator).WithSpan(ex.Span())
	}
}

// valuesEqual implements §4.4's equality rule: same-kind operands compare
// structurally; mixed-kind operands fall back to string coercion (Open
// Question #2, resolved in SPEC_FULL.md).
func valuesEqual(l, r value.Value) bool {
	if l.Kind() == r.Kind() {
		switch l.Kind() {
		case value.Null:
			return true
		case value.Boolean:
			return l.AsBool() == r.AsBool()
		case value.Number:
			return l.AsNumber().Equal(r.AsNumber())
		case value.String:
			return l.AsString() == r.AsString()
		case value.DateTime:
			return l.AsDateTime().Equal(r.AsDateTime())
		case value.JsonNode:
			return l.AsNode().Equal(r.AsNode())
		}
	}
	return l.ToJEXString() == r.ToJEXString()
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// evalCall resolves a name against the script function table, then loaded
// libraries, then the stdlib/host registry, in that order (§4.4).
func (e *Evaluator) evalCall(ctx *runtime.Context, call *ast.CallExpr) (value.Value, error) {
	args := make([]value.Value, len(call.Arguments))
	for i, a := range call.Arguments {
		v, err := e.evalExpr(ctx, a)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	if fn, ok := e.Program.Functions[call.Name]; ok {
		return e.callUserFunction(ctx, fn, args)
	}

	if e.Libraries != nil {
		if fn, ok := e.Libraries.Lookup(call.Name); ok {
			return e.callUserFunction(ctx, fn, args)
		}
	}

	if bi, ok := e.Registry.Lookup(call.Name); ok {
		if err := stdlib.CheckArity(bi, len(args)); err != nil {
			if re, ok := err.(*errors.RuntimeError); ok {
				return value.Value{}, re.WithSpan(call.Span())
			}
			return value.Value{}, err
		}
		v, err := bi.Call(ctx, args)
		if err != nil {
			if re, ok := err.(*errors.RuntimeError); ok {
				return value.Value{}, re.WithFunction(call.Name).WithSpan(call.Span())
			}
			return value.Value{}, err
		}
		return v, nil
	}

	return value.Value{}, errors.NewRuntimeError("unknown function %q", call.Name).WithSpan(call.Span())
}

func (e *Evaluator) callUserFunction(ctx *runtime.Context, fn *ast.FunctionDecl, args []value.Value) (value.Value, error) {
	if err := ctx.EnterCall(); err != nil {
		return value.Value{}, err
	}
	defer ctx.ExitCall()

	ctx.Scopes.Push()
	defer ctx.Scopes.Pop()

	for i, p := range fn.Params {
		if i < len(args) {
			ctx.Scopes.Bind(p, args[i])
		} else {
			ctx.Scopes.Bind(p, value.NullValue())
		}
	}

	if err := e.execBlock(ctx, fn.Body); err != nil {
		return value.Value{}, err
	}
	return ctx.ConsumeReturn(), nil
}

// ---------------------------------------------------------------------------
// String-literal macro expansion
// ---------------------------------------------------------------------------

var macroPattern = regexp.MustCompile(`&[A-Za-z_][A-Za-z0-9_]*`)

// expandMacros performs a single left-to-right pass over s, replacing every
// `&name` occurrence with that variable's to-string coercion (§4.4, Open
// Question #3 resolved in SPEC_FULL.md: expansions are not themselves
// re-scanned for further `&name` references).
func (e *Evaluator) expandMacros(ctx *runtime.Context, s string) (string, error) {
	if !strings.ContainsRune(s, '&') {
		return s, nil
	}
	var firstErr error
	out := macroPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := match[1:]
		v, ok := ctx.Scopes.Get(name)
		if !ok {
			return ""
		}
		return v.ToJEXString()
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
