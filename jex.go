// Package jex is the embedding surface of the JEX engine: compile scripts,
// load libraries, register host functions, and execute compiled programs
// against JSON input (§6).
package jex

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jex-lang/jex/compiler"
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/eval"
	"github.com/jex-lang/jex/library"
	"github.com/jex-lang/jex/metrics"
	"github.com/jex-lang/jex/normalizer"
	"github.com/jex-lang/jex/runtime"
	"github.com/jex-lang/jex/stdlib"
	"github.com/jex-lang/jex/value"
)

// Re-exported option types so callers never need to import runtime directly.
type CompileOptions = runtime.CompileOptions
type ExecOptions = runtime.ExecOptions
type NormalizeOptions = normalizer.Options

// CompileError, RuntimeError, and LimitExceeded are re-exported for callers
// that type-switch on execution errors (§7).
type CompileError = errors.CompileError
type RuntimeError = errors.RuntimeError
type LimitExceeded = errors.LimitExceeded

// DefaultCompileOptions and DefaultExecOptions mirror §6's documented
// defaults.
func DefaultCompileOptions() CompileOptions { return runtime.DefaultCompileOptions() }
func DefaultExecOptions() ExecOptions       { return runtime.DefaultExecOptions() }

// Engine owns the standard library registry, the loaded library manager, and
// optional logging/metrics configured via EngineOption. An Engine has no
// execution-scoped state of its own, so it is safe to share across
// goroutines once constructed (§3, §8 property 4); compiled Programs derived
// from it are independently shareable.
type Engine struct {
	registry  *stdlib.Registry
	libraries *library.Manager
	logger    *zap.Logger
	metrics   *metrics.Collectors
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithLogger attaches a zap logger; executions without one get a no-op
// logger so log statements never need a nil check.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics registers the engine's prometheus collectors against reg.
// Metrics are entirely opt-in: an Engine built without this option emits
// nothing.
func WithMetrics(reg prometheus.Registerer) EngineOption {
	return func(e *Engine) { e.metrics = metrics.New(reg) }
}

// NewEngine builds an Engine whose registry starts out populated with the
// full standard library (§4.5); RegisterFunction/RegisterVoidFunction
// overlay on top of it.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		registry:  stdlib.Default(),
		libraries: library.NewManager(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HostFunction is a value-returning function registered by the host (§6).
type HostFunction func(ctx *runtime.Context, args []value.Value) (value.Value, error)

// HostVoidFunction is a void-returning function registered by the host; its
// result is always JSON null to scripts that call it for its side effects.
type HostVoidFunction func(ctx *runtime.Context, args []value.Value)

// RegisterFunction overlays a value-returning host function onto the
// engine's registry, shadowing any built-in of the same name (§6).
func (e *Engine) RegisterFunction(name string, minArgs, maxArgs int, fn HostFunction) {
	e.registry.Register(stdlib.Function{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Call: fn})
}

// RegisterVoidFunction overlays a void-returning host function.
func (e *Engine) RegisterVoidFunction(name string, minArgs, maxArgs int, fn HostVoidFunction) {
	e.registry.Register(stdlib.Function{
		Name: name, MinArgs: minArgs, MaxArgs: maxArgs,
		Call: func(ctx *runtime.Context, args []value.Value) (value.Value, error) {
			fn(ctx, args)
			return value.NullValue(), nil
		},
	})
}

// Library is a handle returned by LoadLibrary: the library's name and the
// names of every function it declares (§6).
type Library struct {
	Name      string
	Functions []string
}

// LoadLibrary compiles source as a library and registers it under name,
// returning a handle naming its declared functions (§4.6).
func (e *Engine) LoadLibrary(name, source string) (*Library, error) {
	if err := e.libraries.Load(name, source); err != nil {
		return nil, err
	}
	fns, err := e.libraries.Functions(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fns))
	for fname := range fns {
		names = append(names, fname)
	}
	return &Library{Name: name, Functions: names}, nil
}

// LoadLibraryFrom reads r fully and loads it as a library, for hosts that
// keep libraries in files rather than in-memory strings (§6 "from any
// readable stream/file").
func (e *Engine) LoadLibraryFrom(name string, r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return e.LoadLibrary(name, string(data))
}

// Program is a compiled script ready to execute against any number of
// inputs, independently and concurrently (§3, §8 property 4).
type Program struct {
	compiled *compiler.Program
	engine   *Engine
}

// Compile parses and validates source, returning a reusable Program (§6).
func (e *Engine) Compile(source string, opts CompileOptions) (*Program, error) {
	prog, err := compiler.Compile(source, opts)
	e.metrics.ObserveCompile(err)
	if err != nil {
		return nil, err
	}
	return &Program{compiled: prog, engine: e}, nil
}

// Execute runs p against input and meta, returning the resulting $out tree
// as a value.Node. meta may be nil.
func (p *Program) Execute(input *value.Node, meta *value.Node, opts ExecOptions) (*value.Node, error) {
	start := time.Now()
	ctx := runtime.New(input, meta, opts, p.engine.logger)
	ev := eval.New(p.compiled, p.engine.libraries, p.engine.registry)
	out, err := ev.Execute(ctx)
	p.engine.metrics.ObserveExecuteDuration(time.Since(start).Seconds())
	p.engine.metrics.ObserveError(err)
	return out, err
}

// Execute is the one-shot convenience form: compile source, execute it once
// against input, and discard the compiled Program (§6 "Execute
// convenience"). Callers that run the same script repeatedly should prefer
// Compile + Program.Execute.
func (e *Engine) Execute(source string, input *value.Node, opts ExecOptions) (*value.Node, error) {
	prog, err := e.Compile(source, DefaultCompileOptions())
	if err != nil {
		return nil, err
	}
	return prog.Execute(input, nil, opts)
}

// Normalize runs the JSON-in-string preprocessor over a document
// independently of any script execution (§4.7).
func Normalize(doc *value.Node, opts NormalizeOptions) (*value.Node, error) {
	return normalizer.Normalize(doc, opts)
}

// DefaultNormalizeOptions mirrors the normalizer package's documented
// defaults.
func DefaultNormalizeOptions() NormalizeOptions { return normalizer.DefaultOptions() }
