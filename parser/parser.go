// Package parser implements a recursive-descent, precedence-climbing parser
// for JEX. It converts the token stream produced by the lexer into the AST
// defined by package ast.
package parser

import (
	"fmt"
	"strings"

	"github.com/jex-lang/jex/ast"
	"github.com/jex-lang/jex/lexer"
	"github.com/jex-lang/jex/token"
)

// Precedence levels for expression parsing, lowest to highest (§4.2).
const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // unary ! -
	POSTFIX     // . [] ()
)

var precedences = map[token.Type]int{
	token.OR_OR:         OR,
	token.AND_AND:       AND,
	token.EQUAL_EQUAL:   EQUALS,
	token.BANG_EQUAL:    EQUALS,
	token.LESS:          LESSGREATER,
	token.LESS_EQUAL:    LESSGREATER,
	token.GREATER:       LESSGREATER,
	token.GREATER_EQUAL: LESSGREATER,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.STAR:          PRODUCT,
	token.SLASH:         PRODUCT,
	token.PERCENT:       PRODUCT,
	token.DOT:           POSTFIX,
	token.LBRACKET:      POSTFIX,
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// Error is a single parse error tagged with the offending token's span.
type Error struct {
	Message string
	Span    token.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.StartLine, e.Span.StartCol, e.Message)
}

// Parser consumes a token stream and builds an *ast.Program.
type Parser struct {
	tokens []token.Token
	pos    int

	cur  token.Token
	peek token.Token

	errors []*Error

	prefixFns map[token.Type]prefixParseFn
	infixFns  map[token.Type]infixParseFn
}

// New creates a Parser over JEX source text, running the lexer to completion
// first. Lexical errors are folded into the parser's error list so callers
// only need to check one place.
func New(source string) *Parser {
	l := lexer.New(source)
	toks, lexErrs := l.ScanTokens()

	p := &Parser{tokens: toks}
	for _, e := range lexErrs {
		p.errors = append(p.errors, &Error{Message: e.Message, Span: e.Span})
	}

	p.prefixFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifierOrCall,
		token.INT:      p.parseNumberLit,
		token.FLOAT:    p.parseNumberLit,
		token.STRING:   p.parseStringLit,
		token.TRUE:     p.parseBoolLit,
		token.FALSE:    p.parseBoolLit,
		token.NULL:     p.parseNullLit,
		token.VARREF:   p.parseVarRef,
		token.DOLLAR:   p.parseDollar,
		token.BANG:     p.parseUnary,
		token.MINUS:    p.parseUnary,
		token.LPAREN:   p.parseGroupedExpr,
		token.LBRACE:   p.parseObjectLit,
		token.LBRACKET: p.parseArrayLit,
	}

	p.infixFns = map[token.Type]infixParseFn{
		token.OR_OR:         p.parseBinary,
		token.AND_AND:       p.parseBinary,
		token.EQUAL_EQUAL:   p.parseBinary,
		token.BANG_EQUAL:    p.parseBinary,
		token.LESS:          p.parseBinary,
		token.LESS_EQUAL:    p.parseBinary,
		token.GREATER:       p.parseBinary,
		token.GREATER_EQUAL: p.parseBinary,
		token.PLUS:          p.parseBinary,
		token.MINUS:         p.parseBinary,
		token.STAR:          p.parseBinary,
		token.SLASH:         p.parseBinary,
		token.PERCENT:       p.parseBinary,
		token.DOT:           p.parsePropertyAccess,
		token.LBRACKET:      p.parseIndexAccess,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every lexical and syntax error accumulated while parsing.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) nextToken() {
	p.cur = p.peek
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else {
		p.peek = token.Token{Type: token.EOF}
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peek.Span, "expected next token to be %s, got %s instead", t, p.peek.Type)
	return false
}

// expectCur checks the current token without advancing; used after a caller
// has already advanced onto the token it expects to validate.
func (p *Parser) expectCur(t token.Type, context string) bool {
	if p.curIs(t) {
		return true
	}
	p.errorf(p.cur.Span, "expected %s %s, got %s instead", context, t, p.cur.Type)
	return false
}

func (p *Parser) errorf(span token.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{Message: fmt.Sprintf(format, args...), Span: span})
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram is the parser's entry point: a script is a sequence of
// top-level statements, any of which may be a FunctionDecl.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
			if fn, ok := stmt.(*ast.FunctionDecl); ok {
				prog.Functions = append(prog.Functions, fn)
			}
		}
		p.nextToken()
	}
	return prog
}

// ParseLibrary parses source as a library body: every top-level statement
// must be a FunctionDecl, and at least one must be present (§4.3, §4.6).
func (p *Parser) ParseLibrary() *ast.Program {
	prog := p.ParseProgram()
	for _, s := range prog.Statements {
		if _, ok := s.(*ast.FunctionDecl); !ok {
			p.errorf(s.Span(), "library source may only contain function declarations")
		}
	}
	if len(prog.Functions) == 0 {
		p.errorf(token.Span{}, "library source must declare at least one function")
	}
	return prog
}

// parseStatement dispatches on the current token's keyword.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case token.KW_LET:
		return p.parseLetStmt()
	case token.KW_SET:
		return p.parseSetStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_FOREACH:
		return p.parseForeachStmt()
	case token.KW_DO:
		return p.parseDoLoopStmt()
	case token.KW_BREAK:
		return p.parseBreakStmt()
	case token.KW_CONTINUE:
		return p.parseContinueStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_FUNC:
		return p.parseFunctionDecl()
	default:
		return p.parseExpressionStmt()
	}
}

// parseBlock parses statements until one of the given terminator keywords is
// the current token, without consuming the terminator.
func (p *Parser) parseBlock(terminators ...token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for {
		if p.curIs(token.EOF) {
			p.errorf(p.cur.Span, "unexpected end of input inside block")
			return stmts
		}
		for _, t := range terminators {
			if p.curIs(t) {
				return stmts
			}
		}
		if p.curIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.cur.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.EQUAL) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.LetStmt{Base: ast.Base{Sp: start}, Name: name, Value: val}
}

// parseSetStmt disambiguates Form A (`%set path = expr;`) from Form B
// (`%set target, path, value;`) by whether a comma follows the first
// expression (§4.2).
func (p *Parser) parseSetStmt() ast.Stmt {
	start := p.cur.Span
	p.nextToken()
	first := p.parseExpression(LOWEST)

	if p.peekIs(token.COMMA) {
		p.nextToken() // consume first expr, now at ','
		p.nextToken() // move onto path expr
		path := p.parseExpression(LOWEST)
		if !p.expectPeek(token.COMMA) {
			return nil
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return &ast.SetStmt{Base: ast.Base{Sp: start}, Target: first, Path: path, Value: val}
	}

	if !p.expectPeek(token.EQUAL) {
		return nil
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.SetStmt{Base: ast.Base{Sp: start}, Path: first, Value: val}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.cur.Span
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.KW_THEN) {
		return nil
	}
	if !p.expectPeek(token.KW_DO) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	p.nextToken()
	thenBlock := p.parseBlock(token.KW_END, token.KW_ELSE)

	var elseBlock []ast.Stmt
	if p.curIs(token.KW_ELSE) {
		if !p.expectPeek(token.KW_DO) {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		p.nextToken()
		elseBlock = p.parseBlock(token.KW_END)
	}

	if !p.expectCur(token.KW_END, "to close %if") {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.IfStmt{Base: ast.Base{Sp: start}, Condition: cond, Then: thenBlock, Else: elseBlock}
}

func (p *Parser) parseForeachStmt() ast.Stmt {
	start := p.cur.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.KW_IN) {
		return nil
	}
	p.nextToken()
	coll := p.parseExpression(LOWEST)
	if !p.expectPeek(token.KW_DO) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock(token.KW_END)
	if !p.expectCur(token.KW_END, "to close %foreach") {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ForeachStmt{Base: ast.Base{Sp: start}, VarName: name, Collection: coll, Body: body}
}

func (p *Parser) parseDoLoopStmt() ast.Stmt {
	start := p.cur.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.EQUAL) {
		return nil
	}
	p.nextToken()
	from := p.parseExpression(LOWEST)
	if !p.expectPeek(token.KW_TO) {
		return nil
	}
	p.nextToken()
	to := p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock(token.KW_END)
	if !p.expectCur(token.KW_END, "to close %do") {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.DoLoopStmt{Base: ast.Base{Sp: start}, VarName: name, Start: from, End: to, Body: body}
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	stmt := &ast.BreakStmt{Base: ast.Base{Sp: p.cur.Span}}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	stmt := &ast.ContinueStmt{Base: ast.Base{Sp: p.cur.Span}}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.cur.Span
	if p.peekIs(token.SEMICOLON) {
		p.nextToken()
		return &ast.ReturnStmt{Base: ast.Base{Sp: start}}
	}
	p.nextToken()
	val := p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ReturnStmt{Base: ast.Base{Sp: start}, Value: val}
}

func (p *Parser) parseFunctionDecl() ast.Stmt {
	start := p.cur.Span
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.cur.Lexeme
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	p.nextToken()
	body := p.parseBlock(token.KW_ENDFUNC)
	if !p.expectCur(token.KW_ENDFUNC, "to close %func") {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.FunctionDecl{Base: ast.Base{Sp: start}, Name: name, Params: params, Body: body}
}

func (p *Parser) parseParamList() []string {
	var params []string
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.cur.Lexeme)
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.cur.Lexeme)
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseExpressionStmt() ast.Stmt {
	start := p.cur.Span
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return &ast.ExpressionStmt{Base: ast.Base{Sp: start}, Expression: expr}
}

// parseExpression is the Pratt-parsing core: parse a prefix (nud), then
// repeatedly fold in infix/postfix operators (leds) while their precedence
// exceeds the caller's minimum.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf(p.cur.Span, "unexpected token %s in expression", p.cur.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseNullLit() ast.Expr {
	return &ast.NullLit{Base: ast.Base{Sp: p.cur.Span}}
}

func (p *Parser) parseBoolLit() ast.Expr {
	return &ast.BoolLit{Base: ast.Base{Sp: p.cur.Span}, Value: p.cur.Type == token.TRUE}
}

func (p *Parser) parseNumberLit() ast.Expr {
	return &ast.NumberLit{Base: ast.Base{Sp: p.cur.Span}, Raw: p.cur.Lexeme}
}

func (p *Parser) parseStringLit() ast.Expr {
	lit, _ := p.cur.Literal.(string)
	return &ast.StringLit{Base: ast.Base{Sp: p.cur.Span}, Value: lit}
}

func (p *Parser) parseVarRef() ast.Expr {
	name, _ := p.cur.Literal.(string)
	return &ast.VarRef{Base: ast.Base{Sp: p.cur.Span}, Name: name}
}

// parseIdentifierOrCall treats a bare identifier as a function call when
// immediately followed by '(', otherwise as an implicit VarRef — the
// grammar lets unqualified names stand for variables outside call position.
func (p *Parser) parseIdentifierOrCall() ast.Expr {
	name := p.cur.Lexeme
	start := p.cur.Span
	if p.peekIs(token.LPAREN) {
		p.nextToken() // move onto '('
		args := p.parseExpressionList(token.RPAREN)
		return &ast.CallExpr{Base: ast.Base{Sp: start}, Name: name, Arguments: args}
	}
	return &ast.VarRef{Base: ast.Base{Sp: start}, Name: name}
}

// parseDollar handles both `$.a.b[0]` (JsonPathLit) and `$in`/`$out`/`$meta`
// (BuiltInVar) starting from the DOLLAR token (§4.2).
func (p *Parser) parseDollar() ast.Expr {
	start := p.cur.Span
	if p.peekIs(token.DOT) {
		return p.parseJsonPathLit(start)
	}
	if p.peekIs(token.IDENT) {
		p.nextToken()
		name := p.cur.Lexeme
		switch name {
		case "in", "out", "meta":
		default:
			p.errorf(p.cur.Span, "unknown built-in variable $%s (expected $in, $out, or $meta)", name)
		}
		return &ast.BuiltInVar{Base: ast.Base{Sp: start}, Name: name}
	}
	p.errorf(p.peek.Span, "expected '.' or a name after '$', got %s", p.peek.Type)
	return &ast.BuiltInVar{Base: ast.Base{Sp: start}}
}

// parseJsonPathLit reads a chain of `.name`, `[int]`, `[string]`, `[*]`
// segments and reassembles the canonical path text (§4.2).
func (p *Parser) parseJsonPathLit(start token.Span) ast.Expr {
	var b strings.Builder
	b.WriteByte('$')
	for p.peekIs(token.DOT) || p.peekIs(token.LBRACKET) {
		if p.peekIs(token.DOT) {
			p.nextToken() // '.'
			if !p.expectPeek(token.IDENT) {
				return &ast.JsonPathLit{Base: ast.Base{Sp: start}, Path: b.String()}
			}
			b.WriteByte('.')
			b.WriteString(p.cur.Lexeme)
			continue
		}
		p.nextToken() // '['
		switch {
		case p.peekIs(token.STAR):
			p.nextToken()
			b.WriteString("[*]")
		case p.peekIs(token.INT):
			p.nextToken()
			b.WriteByte('[')
			b.WriteString(p.cur.Lexeme)
			b.WriteByte(']')
		case p.peekIs(token.STRING):
			p.nextToken()
			lit, _ := p.cur.Literal.(string)
			b.WriteString("['")
			b.WriteString(lit)
			b.WriteString("']")
		default:
			p.errorf(p.peek.Span, "expected an integer, string, or '*' inside '[]', got %s", p.peek.Type)
			return &ast.JsonPathLit{Base: ast.Base{Sp: start}, Path: b.String()}
		}
		if !p.expectPeek(token.RBRACKET) {
			return &ast.JsonPathLit{Base: ast.Base{Sp: start}, Path: b.String()}
		}
	}
	return &ast.JsonPathLit{Base: ast.Base{Sp: start}, Path: b.String()}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur.Span
	op := p.cur.Lexeme
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpr{Base: ast.Base{Sp: start}, Operator: op, Operand: operand}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	start := p.cur.Span
	op := p.cur.Lexeme
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpr{Base: ast.Base{Sp: start}, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseObjectLit() ast.Expr {
	start := p.cur.Span
	obj := &ast.ObjectLit{Base: ast.Base{Sp: start}}
	if p.peekIs(token.RBRACE) {
		p.nextToken()
		return obj
	}
	for {
		p.nextToken()
		var key string
		switch p.cur.Type {
		case token.IDENT:
			key = p.cur.Lexeme
		case token.STRING:
			key, _ = p.cur.Literal.(string)
		default:
			p.errorf(p.cur.Span, "expected an object key (identifier or string), got %s", p.cur.Type)
			return obj
		}
		if !p.expectPeek(token.COLON) {
			return obj
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, val)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(token.RBRACE) {
		return obj
	}
	return obj
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.cur.Span
	elems := p.parseExpressionList(token.RBRACKET)
	return &ast.ArrayLit{Base: ast.Base{Sp: start}, Elements: elems}
}

// parseExpressionList parses a comma-separated list starting with the
// current token at the opening delimiter, consuming through the closing
// `end` token.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expr {
	var list []ast.Expr
	if p.peekIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return list
	}
	return list
}

// parsePropertyAccess rejects method-call syntax on a non-name primary by
// construction: PropertyAccess is never itself callable, since CallExpr is
// only ever built from a bare identifier (parseIdentifierOrCall). A script
// that writes `x.foo()` parses `x.foo` as a PropertyAccess and then hits a
// stray '(' with no infix meaning, which the precedence loop simply leaves
// unconsumed, surfacing as "expected ';'" at the statement boundary.
func (p *Parser) parsePropertyAccess(obj ast.Expr) ast.Expr {
	start := p.cur.Span
	if !p.expectPeek(token.IDENT) {
		return obj
	}
	return &ast.PropertyAccess{Base: ast.Base{Sp: start}, Object: obj, Name: p.cur.Lexeme}
}

func (p *Parser) parseIndexAccess(obj ast.Expr) ast.Expr {
	start := p.cur.Span
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return obj
	}
	return &ast.IndexAccess{Base: ast.Base{Sp: start}, Object: obj, Index: idx}
}
