// Package ast defines the JEX abstract syntax tree: the expression and
// statement node types produced by the parser and walked by the evaluator.
// The tree is immutable once built and carries no back-references, so
// compiled programs are safe to share across concurrent executions.
package ast

import "github.com/jex-lang/jex/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Span() token.Span
	String() string
	node()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Base carries the source span shared by every node; embed it to satisfy
// most of Node without repeating the field. Exported so constructors outside
// this package (the parser) can set it via a keyed struct literal.
type Base struct {
	Sp token.Span
}

func (b Base) Span() token.Span { return b.Sp }

// Program is the root of a compiled script or library: its top-level
// statements in source order, plus every %func declaration found among
// them (collected here for convenience; the compiler also indexes them by
// name into a function table).
type Program struct {
	Statements []Stmt
	Functions  []*FunctionDecl
}

func (p *Program) node()          {}
func (p *Program) Span() token.Span {
	if len(p.Statements) > 0 {
		return p.Statements[0].Span()
	}
	return token.Span{}
}
func (p *Program) String() string {
	out := ""
	for _, s := range p.Statements {
		out += s.String() + "\n"
	}
	return out
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// NullLit is the `null` literal.
type NullLit struct{ Base }

func (*NullLit) node()     {}
func (*NullLit) exprNode() {}
func (*NullLit) String() string { return "null" }

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) node()     {}
func (*BoolLit) exprNode() {}
func (b *BoolLit) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// NumberLit is an integer or decimal literal, stored as raw source text; the
// compiler/evaluator parse it into a decimal.Decimal lazily via value.Value.
type NumberLit struct {
	Base
	Raw string
}

func (*NumberLit) node()       {}
func (*NumberLit) exprNode()   {}
func (n *NumberLit) String() string { return n.Raw }

// StringLit is a string literal. Its text undergoes `&name` macro expansion
// at evaluation time, not at parse time (§4.4).
type StringLit struct {
	Base
	Value string
}

func (*StringLit) node()       {}
func (*StringLit) exprNode()   {}
func (s *StringLit) String() string { return "\"" + s.Value + "\"" }

// VarRef is a `&name` reference to a script variable.
type VarRef struct {
	Base
	Name string
}

func (*VarRef) node()       {}
func (*VarRef) exprNode()   {}
func (v *VarRef) String() string { return "&" + v.Name }

// BuiltInVar is one of `$in`, `$out`, `$meta`.
type BuiltInVar struct {
	Base
	Name string // "in", "out", or "meta"
}

func (*BuiltInVar) node()       {}
func (*BuiltInVar) exprNode()   {}
func (b *BuiltInVar) String() string { return "$" + b.Name }

// JsonPathLit is a `$.a.b[0]` literal, reassembled by the parser into a
// canonical path string at compile time.
type JsonPathLit struct {
	Base
	Path string
}

func (*JsonPathLit) node()       {}
func (*JsonPathLit) exprNode()   {}
func (j *JsonPathLit) String() string { return j.Path }

// UnaryExpr is `!x` or `-x`.
type UnaryExpr struct {
	Base
	Operator string
	Operand  Expr
}

func (*UnaryExpr) node()     {}
func (*UnaryExpr) exprNode() {}
func (u *UnaryExpr) String() string { return "(" + u.Operator + u.Operand.String() + ")" }

// BinaryExpr covers arithmetic, comparison, equality, and short-circuit
// logical operators.
type BinaryExpr struct {
	Base
	Left     Expr
	Operator string
	Right    Expr
}

func (*BinaryExpr) node()     {}
func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// CallExpr is a call to a name that resolves, at runtime, against the script
// function table, then the library table, then the engine/stdlib registry
// (§4.4). The parser only ever builds a CallExpr from a bare identifier
// primary; `x.foo()` parses as a PropertyAccess and is rejected at the point
// that access is itself called, since PropertyAccess is not callable.
type CallExpr struct {
	Base
	Name      string
	Arguments []Expr
}

func (*CallExpr) node()     {}
func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	out := c.Name + "("
	for i, a := range c.Arguments {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}

// ObjectLit is `{ key: expr, ... }`; keys preserve source order.
type ObjectLit struct {
	Base
	Keys   []string
	Values []Expr
}

func (*ObjectLit) node()     {}
func (*ObjectLit) exprNode() {}
func (o *ObjectLit) String() string {
	out := "{"
	for i, k := range o.Keys {
		if i > 0 {
			out += ", "
		}
		out += k + ": " + o.Values[i].String()
	}
	return out + "}"
}

// ArrayLit is `[ expr, ... ]`.
type ArrayLit struct {
	Base
	Elements []Expr
}

func (*ArrayLit) node()     {}
func (*ArrayLit) exprNode() {}
func (a *ArrayLit) String() string {
	out := "["
	for i, e := range a.Elements {
		if i > 0 {
			out += ", "
		}
		out += e.String()
	}
	return out + "]"
}

// PropertyAccess is `base.name`.
type PropertyAccess struct {
	Base
	Object Expr
	Name   string
}

func (*PropertyAccess) node()     {}
func (*PropertyAccess) exprNode() {}
func (p *PropertyAccess) String() string { return p.Object.String() + "." + p.Name }

// IndexAccess is `base[index]`.
type IndexAccess struct {
	Base
	Object Expr
	Index  Expr
}

func (*IndexAccess) node()     {}
func (*IndexAccess) exprNode() {}
func (i *IndexAccess) String() string { return i.Object.String() + "[" + i.Index.String() + "]" }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// LetStmt is `%let name = expr;`.
type LetStmt struct {
	Base
	Name  string
	Value Expr
}

func (*LetStmt) node()     {}
func (*LetStmt) stmtNode() {}
func (l *LetStmt) String() string { return "%let " + l.Name + " = " + l.Value.String() + ";" }

// SetStmt is `%set` in either of its two source shapes (§4.2):
// Form A omits Target (implicitly $out); Form B supplies it explicitly.
type SetStmt struct {
	Base
	Target Expr // nil for Form A
	Path   Expr
	Value  Expr
}

func (*SetStmt) node()     {}
func (*SetStmt) stmtNode() {}
func (s *SetStmt) String() string {
	if s.Target == nil {
		return "%set " + s.Path.String() + " = " + s.Value.String() + ";"
	}
	return "%set " + s.Target.String() + ", " + s.Path.String() + ", " + s.Value.String() + ";"
}

// IfStmt is `%if (cond) %then %do; ... [%else %do; ...] %end;`.
type IfStmt struct {
	Base
	Condition  Expr
	Then       []Stmt
	Else       []Stmt // nil when no %else
}

func (*IfStmt) node()     {}
func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string { return "%if (" + i.Condition.String() + ") %then %do; ... %end;" }

// ForeachStmt is `%foreach name %in expr %do; ... %end;`.
type ForeachStmt struct {
	Base
	VarName    string
	Collection Expr
	Body       []Stmt
}

func (*ForeachStmt) node()     {}
func (*ForeachStmt) stmtNode() {}
func (f *ForeachStmt) String() string {
	return "%foreach " + f.VarName + " %in " + f.Collection.String() + " %do; ... %end;"
}

// DoLoopStmt is `%do name = start %to end; ... %end;`.
type DoLoopStmt struct {
	Base
	VarName string
	Start   Expr
	End     Expr
	Body    []Stmt
}

func (*DoLoopStmt) node()     {}
func (*DoLoopStmt) stmtNode() {}
func (d *DoLoopStmt) String() string {
	return "%do " + d.VarName + " = " + d.Start.String() + " %to " + d.End.String() + "; ... %end;"
}

// BreakStmt is `%break;`.
type BreakStmt struct{ Base }

func (*BreakStmt) node()     {}
func (*BreakStmt) stmtNode() {}
func (*BreakStmt) String() string { return "%break;" }

// ContinueStmt is `%continue;`.
type ContinueStmt struct{ Base }

func (*ContinueStmt) node()     {}
func (*ContinueStmt) stmtNode() {}
func (*ContinueStmt) String() string { return "%continue;" }

// ReturnStmt is `%return [expr];`.
type ReturnStmt struct {
	Base
	Value Expr // nil for a bare %return
}

func (*ReturnStmt) node()     {}
func (*ReturnStmt) stmtNode() {}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "%return;"
	}
	return "%return " + r.Value.String() + ";"
}

// ExpressionStmt is an expression evaluated for its side effects (typically
// a void function call), with its result discarded.
type ExpressionStmt struct {
	Base
	Expression Expr
}

func (*ExpressionStmt) node()     {}
func (*ExpressionStmt) stmtNode() {}
func (e *ExpressionStmt) String() string { return e.Expression.String() + ";" }

// FunctionDecl is `%func name(params) ; <block> %endfunc;`.
type FunctionDecl struct {
	Base
	Name   string
	Params []string
	Body   []Stmt
}

func (*FunctionDecl) node()     {}
func (*FunctionDecl) stmtNode() {}
func (f *FunctionDecl) String() string { return "%func " + f.Name + "(...); ... %endfunc;" }

// Block is an explicit sequence of statements; used where the grammar names
// a <block> as a single syntactic unit (the parser usually inlines blocks as
// []Stmt directly, but Block exists for nodes — like function bodies passed
// around before indexing — that need to carry one as a single Node).
type Block struct {
	Base
	Statements []Stmt
}

func (*Block) node()     {}
func (*Block) stmtNode() {}
func (b *Block) String() string {
	out := ""
	for _, s := range b.Statements {
		out += s.String()
	}
	return out
}

