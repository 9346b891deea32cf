// Package normalizer implements the standalone JSON-in-string preprocessor
// (§4.7): it walks a value.Node tree and replaces any string that looks like
// a JSON document with its parsed form, recursively up to a configurable
// depth, without mutating its input.
package normalizer

import (
	"strings"

	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/value"
)

// Options bounds the normalizer's work on a single document (§4.7, §5).
type Options struct {
	MaxDepthPerString     int
	MaxNodesVisited       int
	MaxTotalReplacements  int
	MaxStringLength       int
	Strict                bool
}

// DefaultOptions matches §4.7's documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepthPerString:    5,
		MaxNodesVisited:      250_000,
		MaxTotalReplacements: 50_000,
		MaxStringLength:      256_000,
		Strict:               false,
	}
}

// Normalize returns a new tree with every qualifying embedded-JSON string in
// n replaced by its parsed value, leaving n itself untouched (§4.7, §8
// property 3). Running Normalize again on the result is a no-op: once a
// string becomes a real object/array node there is nothing left to expand
// (§8 property 10).
func Normalize(n *value.Node, opts Options) (*value.Node, error) {
	st := &state{opts: opts}
	return st.walk(n, 0)
}

type state struct {
	opts         Options
	nodesVisited int
	replacements int
}

func (st *state) walk(n *value.Node, depth int) (*value.Node, error) {
	st.nodesVisited++
	if st.nodesVisited > st.opts.MaxNodesVisited {
		return nil, errors.NewLimitExceeded(errors.LimitNodesVisited, st.opts.MaxNodesVisited)
	}
	if n.IsNull() {
		return value.NullNode(), nil
	}
	switch n.Kind {
	case value.NodeString:
		return st.expandString(n.Str, depth)
	case value.NodeArray:
		out := make([]*value.Node, len(n.Arr))
		for i, c := range n.Arr {
			cn, err := st.walk(c, depth)
			if err != nil {
				return nil, err
			}
			out[i] = cn
		}
		return &value.Node{Kind: value.NodeArray, Arr: out}, nil
	case value.NodeObject:
		out := value.NewObject()
		for p := n.Obj.Oldest(); p != nil; p = p.Next() {
			cn, err := st.walk(p.Value, depth)
			if err != nil {
				return nil, err
			}
			out.Set(p.Key, cn)
		}
		return out, nil
	default:
		return n.DeepClone(), nil
	}
}

func (st *state) expandString(s string, depth int) (*value.Node, error) {
	if depth >= st.opts.MaxDepthPerString || len(s) > st.opts.MaxStringLength {
		return value.StringNode(s), nil
	}
	trimmed := strings.TrimSpace(s)
	if !looksLikeJSON(trimmed) {
		return value.StringNode(s), nil
	}
	parsed, err := value.ParseJSON([]byte(trimmed))
	if err != nil {
		if st.opts.Strict {
			return nil, errors.NewRuntimeError("invalid embedded JSON: %s", err.Error())
		}
		return value.StringNode(s), nil
	}
	st.replacements++
	if st.replacements > st.opts.MaxTotalReplacements {
		return nil, errors.NewLimitExceeded(errors.LimitTotalReplacements, st.opts.MaxTotalReplacements)
	}
	return st.walk(parsed, depth+1)
}

// looksLikeJSON restricts expansion to strings that open like a JSON object
// or array; bare scalar strings ("123", "true") are left alone so ordinary
// text is never silently reinterpreted.
func looksLikeJSON(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '{', '[':
		return true
	default:
		return false
	}
}

// ExpandOnce parses s as a single JSON document if it looks like one,
// without descending into any JSON strings nested inside the result.
func ExpandOnce(s string) (*value.Node, error) {
	trimmed := strings.TrimSpace(s)
	if !looksLikeJSON(trimmed) {
		return value.StringNode(s), nil
	}
	return value.ParseJSON([]byte(trimmed))
}

// ExpandStringDepth parses s as JSON and recursively expands any JSON
// strings nested inside the result, up to maxDepth levels of nested
// string-parse. Used by the stdlib expandJson function (§4.5).
func ExpandStringDepth(s string, maxDepth int) (*value.Node, error) {
	opts := DefaultOptions()
	opts.MaxDepthPerString = maxDepth
	st := &state{opts: opts}
	return st.expandString(s, 0)
}
