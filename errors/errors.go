// Package errors defines JEX's error taxonomy: CompileError, RuntimeError,
// and LimitExceeded. All three implement the standard error interface and
// carry a source span where one is available, so host code can type-switch
// on them to decide retry/drop/alert behavior without parsing messages.
package errors

import (
	"fmt"

	"github.com/jex-lang/jex/token"
)

// CompileError reports a lexical, syntactic, or compile-time semantic
// violation (§7).
type CompileError struct {
	Message string
	Span    token.Span
}

func (e *CompileError) Error() string {
	if e.Span == (token.Span{}) {
		return "compile error: " + e.Message
	}
	return fmt.Sprintf("compile error at %d:%d: %s", e.Span.StartLine, e.Span.StartCol, e.Message)
}

// NewCompileError builds a CompileError at the given span.
func NewCompileError(span token.Span, format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), Span: span}
}

// RuntimeError reports an evaluation failure (§7). Function and Path are
// populated when the failure occurred inside a specific call or path
// operation; both are optional.
type RuntimeError struct {
	Message  string
	Span     token.Span
	Function string
	Path     string
}

func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Function != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Function)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s [path=%s]", msg, e.Path)
	}
	if e.Span == (token.Span{}) {
		return "runtime error: " + msg
	}
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Span.StartLine, e.Span.StartCol, msg)
}

// NewRuntimeError builds a bare RuntimeError.
func NewRuntimeError(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// WithFunction returns a copy of the error tagged with the function it
// originated in, used when wrapping a built-in's internal failure (§4.5).
func (e *RuntimeError) WithFunction(name string) *RuntimeError {
	cp := *e
	cp.Function = name
	return &cp
}

// WithPath returns a copy of the error tagged with the offending path.
func (e *RuntimeError) WithPath(path string) *RuntimeError {
	cp := *e
	cp.Path = path
	return &cp
}

// WithSpan returns a copy of the error tagged with a source span.
func (e *RuntimeError) WithSpan(span token.Span) *RuntimeError {
	cp := *e
	cp.Span = span
	return &cp
}

// LimitKind names which bounded resource was exceeded (§5, §8 scenario B).
type LimitKind string

const (
	LimitLoopIterations  LimitKind = "MaxLoopIterations"
	LimitRecursionDepth  LimitKind = "MaxRecursionDepth"
	LimitNodesVisited    LimitKind = "MaxNodesVisited"
	LimitTotalReplacements LimitKind = "MaxTotalReplacements"
	LimitRegexTimeout    LimitKind = "RegexTimeoutMs"
)

// LimitExceeded reports that a bounded resource (loop iterations, recursion
// depth, or normalizer node/replacement counters) was exceeded (§5, §7).
type LimitExceeded struct {
	Kind  LimitKind
	Limit int
}

func (e *LimitExceeded) Error() string {
	return fmt.Sprintf("limit exceeded: %s (limit=%d)", e.Kind, e.Limit)
}

// NewLimitExceeded builds a LimitExceeded for the given bounded resource.
func NewLimitExceeded(kind LimitKind, limit int) *LimitExceeded {
	return &LimitExceeded{Kind: kind, Limit: limit}
}
