// Package scope implements the JEX variable scope stack (§3, §9 "scope
// stack" note): a stack of name→Value maps with a persistent global frame at
// the base, and the "nearest existing binding, else innermost scope"
// assignment rule used by %let.
package scope

import "github.com/jex-lang/jex/value"

// Stack is a scope stack. The zero value is not usable; construct with New.
type Stack struct {
	frames []map[string]value.Value
}

// New creates a Stack with its global frame already pushed.
func New() *Stack {
	return &Stack{frames: []map[string]value.Value{make(map[string]value.Value)}}
}

// Push opens a new innermost scope, used on function call and loop entry.
func (s *Stack) Push() {
	s.frames = append(s.frames, make(map[string]value.Value))
}

// Pop closes the innermost scope, used on function return and loop exit
// (normal or abnormal, per §3's "scope is popped on ... exit" invariant).
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		return // the global frame is never popped
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports how many frames are currently open, including the global
// frame (always ≥ 1).
func (s *Stack) Depth() int { return len(s.frames) }

// Get resolves name by walking the stack from innermost to global.
func (s *Stack) Get(name string) (value.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Let implements the binding rule of §3: assign into the nearest enclosing
// scope that already defines name, else create it in the innermost scope.
func (s *Stack) Let(name string, v value.Value) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			s.frames[i][name] = v
			return
		}
	}
	s.frames[len(s.frames)-1][name] = v
}

// Bind always assigns into the innermost scope, used for function parameter
// binding (which must shadow an outer variable of the same name rather than
// update it).
func (s *Stack) Bind(name string, v value.Value) {
	s.frames[len(s.frames)-1][name] = v
}
