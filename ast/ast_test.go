package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jex-lang/jex/token"
)

func TestLiteralStrings(t *testing.T) {
	require.Equal(t, "null", (&NullLit{}).String())
	require.Equal(t, "true", (&BoolLit{Value: true}).String())
	require.Equal(t, "false", (&BoolLit{Value: false}).String())
	require.Equal(t, "42", (&NumberLit{Raw: "42"}).String())
	require.Equal(t, `"hi"`, (&StringLit{Value: "hi"}).String())
	require.Equal(t, "&x", (&VarRef{Name: "x"}).String())
	require.Equal(t, "$out", (&BuiltInVar{Name: "out"}).String())
	require.Equal(t, "$.a.b[0]", (&JsonPathLit{Path: "$.a.b[0]"}).String())
}

func TestUnaryAndBinaryExprStrings(t *testing.T) {
	lhs := &NumberLit{Raw: "1"}
	rhs := &NumberLit{Raw: "2"}
	require.Equal(t, "(1 + 2)", (&BinaryExpr{Left: lhs, Operator: "+", Right: rhs}).String())
	require.Equal(t, "(-1)", (&UnaryExpr{Operator: "-", Operand: lhs}).String())
}

func TestCallExprString(t *testing.T) {
	c := &CallExpr{
		Name:      "upper",
		Arguments: []Expr{&StringLit{Value: "a"}, &VarRef{Name: "x"}},
	}
	require.Equal(t, `upper("a", &x)`, c.String())
}

func TestObjectAndArrayLitStrings(t *testing.T) {
	obj := &ObjectLit{
		Keys:   []string{"a", "b"},
		Values: []Expr{&NumberLit{Raw: "1"}, &NumberLit{Raw: "2"}},
	}
	require.Equal(t, "{a: 1, b: 2}", obj.String())

	arr := &ArrayLit{Elements: []Expr{&NumberLit{Raw: "1"}, &NumberLit{Raw: "2"}}}
	require.Equal(t, "[1, 2]", arr.String())
}

func TestPropertyAndIndexAccessStrings(t *testing.T) {
	base := &VarRef{Name: "x"}
	require.Equal(t, "&x.name", (&PropertyAccess{Object: base, Name: "name"}).String())
	require.Equal(t, "&x[0]", (&IndexAccess{Object: base, Index: &NumberLit{Raw: "0"}}).String())
}

func TestSetStmtFormAAndB(t *testing.T) {
	path := &JsonPathLit{Path: "$.a"}
	val := &NumberLit{Raw: "1"}

	formA := &SetStmt{Path: path, Value: val}
	require.Equal(t, "%set $.a = 1;", formA.String())

	formB := &SetStmt{Target: &BuiltInVar{Name: "out"}, Path: path, Value: val}
	require.Equal(t, "%set $out, $.a, 1;", formB.String())
}

func TestReturnStmtBareAndWithValue(t *testing.T) {
	require.Equal(t, "%return;", (&ReturnStmt{}).String())
	require.Equal(t, "%return 1;", (&ReturnStmt{Value: &NumberLit{Raw: "1"}}).String())
}

func TestLoopAndFunctionDeclStrings(t *testing.T) {
	require.Equal(t, "%break;", (&BreakStmt{}).String())
	require.Equal(t, "%continue;", (&ContinueStmt{}).String())

	fe := &ForeachStmt{VarName: "x", Collection: &VarRef{Name: "items"}}
	require.Equal(t, "%foreach x %in &items %do; ... %end;", fe.String())

	dl := &DoLoopStmt{VarName: "i", Start: &NumberLit{Raw: "0"}, End: &NumberLit{Raw: "9"}}
	require.Equal(t, "%do i = 0 %to 9; ... %end;", dl.String())

	fn := &FunctionDecl{Name: "double", Params: []string{"x"}}
	require.Equal(t, "%func double(...); ... %endfunc;", fn.String())
}

func TestProgramSpanFallsBackToZeroWhenEmpty(t *testing.T) {
	p := &Program{}
	require.Equal(t, token.Span{}, p.Span())
}

func TestProgramSpanUsesFirstStatement(t *testing.T) {
	sp := token.Span{StartLine: 3, StartCol: 1}
	p := &Program{Statements: []Stmt{&LetStmt{Base: Base{Sp: sp}, Name: "x", Value: &NullLit{}}}}
	require.Equal(t, sp, p.Span())
}

func TestBaseEmbeddingSatisfiesSpan(t *testing.T) {
	sp := token.Span{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 5}
	n := &NullLit{Base: Base{Sp: sp}}
	require.Equal(t, sp, n.Span())

	var _ Node = n
	var _ Expr = n
	var _ Stmt = &LetStmt{}
}
