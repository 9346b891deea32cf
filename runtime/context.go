// Package runtime holds the per-execution state the evaluator threads
// through a tree walk (§2 item 5, §3): the input/output/meta JSON roots, the
// variable scope stack, the loop-iteration and recursion-depth counters, and
// the break/continue/return control flags.
package runtime

import (
	"go.uber.org/zap"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/scope"
	"github.com/jex-lang/jex/value"
)

// CompileOptions configures compilation (§6).
type CompileOptions struct {
	Strict             bool
	AllowUserFunctions bool
}

// DefaultCompileOptions matches §6's documented defaults.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{Strict: false, AllowUserFunctions: true}
}

// ExecOptions configures a single execution (§6).
type ExecOptions struct {
	Strict             bool
	MaxLoopIterations  int
	MaxRecursionDepth  int
	RegexTimeoutMs     int
	MaxOutputSizeBytes int
}

// DefaultExecOptions matches §6's documented defaults.
func DefaultExecOptions() ExecOptions {
	return ExecOptions{
		MaxLoopIterations: 100_000,
		MaxRecursionDepth: 100,
		RegexTimeoutMs:    1_000,
	}
}

// Context is the mutable runtime state of one execution. Each execution owns
// its own Context; none of it is shared across concurrent executions of the
// same compiled program (§3 invariant, §8 property 4).
type Context struct {
	Input  *value.Node
	Output *value.Node
	Meta   *value.Node

	Scopes  *scope.Stack
	Options ExecOptions
	Logger  *zap.Logger

	loopIterations int
	recursionDepth int

	shouldBreak    bool
	shouldContinue bool
	shouldReturn   bool
	returnValue    value.Value
}

// New creates a Context for one execution. meta may be nil, in which case
// $meta reads as JSON null (§4.4).
func New(input, meta *value.Node, opts ExecOptions, logger *zap.Logger) *Context {
	if meta == nil {
		meta = value.NullNode()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		Input:   input,
		Output:  value.NewObject(),
		Meta:    meta,
		Scopes:  scope.New(),
		Options: opts,
		Logger:  logger,
	}
}

// EnterLoopIteration bumps the execution-global loop counter (§4.4, §5);
// every loop body entry across the whole execution shares this one counter.
func (c *Context) EnterLoopIteration() error {
	c.loopIterations++
	if c.loopIterations > c.Options.MaxLoopIterations {
		return errors.NewLimitExceeded(errors.LimitLoopIterations, c.Options.MaxLoopIterations)
	}
	return nil
}

// EnterCall bumps the recursion-depth counter on every user/library function
// call, before the body executes (§5).
func (c *Context) EnterCall() error {
	c.recursionDepth++
	if c.recursionDepth > c.Options.MaxRecursionDepth {
		return errors.NewLimitExceeded(errors.LimitRecursionDepth, c.Options.MaxRecursionDepth)
	}
	return nil
}

// ExitCall unwinds one level of recursion depth on return from a call,
// however that call exited (normally, via an error, or via a control flag).
func (c *Context) ExitCall() { c.recursionDepth-- }

// SetBreak raises the break flag (§4.4 control flags).
func (c *Context) SetBreak() { c.shouldBreak = true }

// SetContinue raises the continue flag.
func (c *Context) SetContinue() { c.shouldContinue = true }

// SetReturn raises the return flag and captures its value.
func (c *Context) SetReturn(v value.Value) {
	c.shouldReturn = true
	c.returnValue = v
}

// ShouldUnwind reports whether any control flag is set; statement execution
// short-circuits whenever this is true (§4.4 "state machine").
func (c *Context) ShouldUnwind() bool {
	return c.shouldBreak || c.shouldContinue || c.shouldReturn
}

// ConsumeLoopExit is called by a loop as it exits one iteration or the whole
// loop: continue is always consumed (it only ever affects the current loop);
// break is consumed only when the loop is about to stop, reported via the
// stop return value so the caller knows whether to keep iterating.
func (c *Context) ConsumeLoopExit() (stop bool) {
	if c.shouldBreak {
		c.shouldBreak = false
		return true
	}
	if c.shouldContinue {
		c.shouldContinue = false
		return false
	}
	return c.shouldReturn
}

// ConsumeReturn is called at a function call boundary (or top-level
// execution end) to consume the return flag and retrieve its value.
func (c *Context) ConsumeReturn() value.Value {
	c.shouldReturn = false
	v := c.returnValue
	c.returnValue = value.NullValue()
	return v
}
