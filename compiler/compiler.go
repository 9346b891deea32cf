// Package compiler validates a parsed JEX program and extracts its
// script-function table (§4.3). The result is immutable and safe to share
// across concurrent executions (§3, §8 property 4).
package compiler

import (
	"strings"

	"github.com/jex-lang/jex/ast"
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/parser"
	"github.com/jex-lang/jex/runtime"
)

// Program is the compiled artifact: the AST plus an index of its top-level
// function declarations by name (§4.3's "(AST, script-function table)").
type Program struct {
	AST       *ast.Program
	Functions map[string]*ast.FunctionDecl
}

// Compile parses and validates script source as a full JEX program: any
// top-level statement is allowed, and FunctionDecl statements are collected
// into the function table.
func Compile(source string, opts runtime.CompileOptions) (*Program, error) {
	p := parser.New(source)
	prog := p.ParseProgram()
	if err := combineErrors(p.Errors()); err != nil {
		return nil, err
	}

	funcs := make(map[string]*ast.FunctionDecl)
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		if !opts.AllowUserFunctions {
			return nil, errors.NewCompileError(fn.Span(), "user-defined functions are not permitted by compile options")
		}
		if _, dup := funcs[fn.Name]; dup {
			return nil, errors.NewCompileError(fn.Span(), "duplicate function declaration %q", fn.Name)
		}
		funcs[fn.Name] = fn
	}
	return &Program{AST: prog, Functions: funcs}, nil
}

// CompileLibrary parses and validates library source: only FunctionDecl
// top-level statements are allowed, and at least one must be present (§4.3,
// §4.6).
func CompileLibrary(source string) (*Program, error) {
	p := parser.New(source)
	prog := p.ParseLibrary()
	if err := combineErrors(p.Errors()); err != nil {
		return nil, err
	}

	funcs := make(map[string]*ast.FunctionDecl)
	for _, fn := range prog.Functions {
		if _, dup := funcs[fn.Name]; dup {
			return nil, errors.NewCompileError(fn.Span(), "duplicate function declaration %q", fn.Name)
		}
		funcs[fn.Name] = fn
	}
	return &Program{AST: prog, Functions: funcs}, nil
}

// combineErrors folds the parser's accumulated lexical/syntax errors into a
// single CompileError carrying the first error's span, so callers see one
// error value per §7 regardless of how many parse failures occurred.
func combineErrors(errs []*parser.Error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errors.NewCompileError(errs[0].Span, "%s", errs[0].Message)
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return errors.NewCompileError(errs[0].Span, "%d parse errors: %s", len(errs), strings.Join(msgs, "; "))
}
