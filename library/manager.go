// Package library manages JEX libraries: named bundles of %func declarations
// compiled in isolation and exposed to a script as one more tier of call
// resolution (§4.3, §4.6).
package library

import (
	"github.com/jex-lang/jex/ast"
	"github.com/jex-lang/jex/compiler"
	"github.com/jex-lang/jex/errors"
)

// Manager holds every library loaded into an engine, in load order, and a
// flattened name-to-function table used for call resolution. A later load
// shadows an earlier one that declares the same function name.
type Manager struct {
	order []string
	libs  map[string]*compiler.Program
	flat  map[string]*ast.FunctionDecl
}

// NewManager creates an empty library manager.
func NewManager() *Manager {
	return &Manager{
		libs: make(map[string]*compiler.Program),
		flat: make(map[string]*ast.FunctionDecl),
	}
}

// Load compiles source as a library and registers it under name (§4.6). A
// second Load under the same name replaces the first.
func (m *Manager) Load(name, source string) error {
	prog, err := compiler.CompileLibrary(source)
	if err != nil {
		return err
	}
	if _, exists := m.libs[name]; !exists {
		m.order = append(m.order, name)
	}
	m.libs[name] = prog
	for fname, fn := range prog.Functions {
		m.flat[fname] = fn
	}
	return nil
}

// Lookup resolves a function name against every loaded library's combined
// table (§4.4 call resolution, tier 2).
func (m *Manager) Lookup(name string) (*ast.FunctionDecl, bool) {
	fn, ok := m.flat[name]
	return fn, ok
}

// Names returns the loaded library names in load order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Functions returns the function table of a single loaded library.
func (m *Manager) Functions(name string) (map[string]*ast.FunctionDecl, error) {
	prog, ok := m.libs[name]
	if !ok {
		return nil, errors.NewRuntimeError("library %q is not loaded", name)
	}
	return prog.Functions, nil
}
