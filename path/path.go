// Package path builds and executes the dotted/bracket path strings used by
// %set, setPath, and the JSONPath-shaped stdlib lookups (§4.4, §4.5). Path
// construction turns an AST expression into canonical path text; path
// execution walks that text against a value.Node tree, creating missing
// intermediate containers as it goes.
package path

import (
	"strconv"
	"strings"

	"github.com/theory/jsonpath"

	"github.com/jex-lang/jex/ast"
	"github.com/jex-lang/jex/errors"
	"github.com/jex-lang/jex/value"
)

// Evaluator is the subset of the evaluator that path construction needs to
// resolve the non-literal pieces of a path expression (an IndexAccess's
// index, or a StringLit's macro-expanded text). Implemented by eval.Evaluator.
type Evaluator interface {
	Eval(expr ast.Expr) (value.Value, error)
}

// Construct builds the canonical path text for a Set Form A target, a Set
// Form B path argument, or setPath's path argument, per §4.4's "path
// construction from an expression" rules.
func Construct(ev Evaluator, expr ast.Expr) (string, error) {
	switch e := expr.(type) {
	case *ast.BuiltInVar:
		return "$" + e.Name, nil
	case *ast.JsonPathLit:
		return e.Path, nil
	case *ast.PropertyAccess:
		base, err := Construct(ev, e.Object)
		if err != nil {
			return "", err
		}
		return base + "." + e.Name, nil
	case *ast.IndexAccess:
		base, err := Construct(ev, e.Object)
		if err != nil {
			return "", err
		}
		idxV, err := ev.Eval(e.Index)
		if err != nil {
			return "", err
		}
		return base + "[" + strconv.FormatInt(idxV.ToNumber().IntPart(), 10) + "]", nil
	case *ast.StringLit:
		v, err := ev.Eval(e)
		if err != nil {
			return "", err
		}
		return v.ToJEXString(), nil
	case *ast.VarRef:
		return "&" + e.Name, nil
	default:
		return "", errors.NewRuntimeError("expression cannot be used as a path").WithSpan(expr.Span())
	}
}

// Root identifies the built-in root an already-constructed path text names,
// if any, so callers can enforce "$in is read-only" (§4.4 Open Question
// resolution, SPEC_FULL.md).
type Root string

const (
	RootNone Root = ""
	RootIn   Root = "in"
	RootOut  Root = "out"
	RootMeta Root = "meta"
)

// RootOf reports the built-in root a raw path string starts with, if any.
func RootOf(raw string) Root {
	s := strings.TrimPrefix(raw, "$")
	for _, r := range []Root{RootIn, RootOut, RootMeta} {
		name := string(r)
		if s == name || strings.HasPrefix(s, name+".") || strings.HasPrefix(s, name+"[") {
			return r
		}
	}
	return RootNone
}

type segment struct {
	name    string
	index   int
	isIndex bool
}

// Parse splits a raw path string into its segments, discarding the leading
// '$' and any in/out/meta root marker: path execution always runs against an
// already-chosen root node (§4.4 "strip the leading $ and any of in/out/meta
// prefix, then split into segments").
func Parse(raw string) ([]string, error) {
	segs, err := parseSegments(raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(segs))
	for i, s := range segs {
		if s.isIndex {
			out[i] = "[" + strconv.Itoa(s.index) + "]"
		} else {
			out[i] = s.name
		}
	}
	return out, nil
}

func parseSegments(raw string) ([]segment, error) {
	s := strings.TrimPrefix(raw, "$")
	for _, r := range []Root{RootIn, RootOut, RootMeta} {
		name := string(r)
		if s == name {
			s = ""
			break
		}
		if strings.HasPrefix(s, name+".") || strings.HasPrefix(s, name+"[") {
			s = s[len(name):]
			break
		}
	}
	s = strings.TrimPrefix(s, ".")

	var segs []segment
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, errors.NewRuntimeError("unterminated '[' in path %q", raw).WithPath(raw)
			}
			inner := s[i+1 : i+end]
			if n, err := strconv.Atoi(inner); err == nil {
				segs = append(segs, segment{isIndex: true, index: n})
			} else if inner == "*" {
				segs = append(segs, segment{name: "*"})
			} else {
				segs = append(segs, segment{name: strings.Trim(inner, `'"`)})
			}
			i += end + 1
		default:
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == i {
				return nil, errors.NewRuntimeError("malformed path %q", raw).WithPath(raw)
			}
			segs = append(segs, segment{name: s[i:j]})
			i = j
		}
	}
	return segs, nil
}

// Assign writes val at raw inside root, creating missing intermediate
// objects/arrays as needed and extending arrays with null per §4.4 "path
// execution against a JSON node".
func Assign(root *value.Node, raw string, val *value.Node) error {
	segs, err := parseSegments(raw)
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		return errors.NewRuntimeError("path %q has no segments to assign", raw).WithPath(raw)
	}

	cur := root
	for i, seg := range segs {
		last := i == len(segs)-1
		if seg.isIndex {
			if cur.Kind != value.NodeArray {
				return errors.NewRuntimeError("cannot index into a %s at %q", cur.Kind, raw).WithPath(raw)
			}
			if last {
				cur.SetIndex(seg.index, val)
				return nil
			}
			child, ok := cur.Index(seg.index)
			if !ok || child.IsNull() {
				child = containerFor(segs[i+1])
				cur.SetIndex(seg.index, child)
			}
			cur = child
			continue
		}
		if cur.Kind != value.NodeObject {
			return errors.NewRuntimeError("cannot set property %q on a %s at %q", seg.name, cur.Kind, raw).WithPath(raw)
		}
		if last {
			cur.Set(seg.name, val)
			return nil
		}
		child, ok := cur.Get(seg.name)
		if !ok || child.IsNull() {
			child = containerFor(segs[i+1])
			cur.Set(seg.name, child)
		}
		cur = child
	}
	return nil
}

// Lookup reads the value at raw inside root, returning (nil, false) if any
// segment along the way is absent. Supports a trailing or interior "[*]"
// wildcard segment by spreading over every element of the array reached at
// that point, used by the stdlib jpAll family.
func Lookup(root *value.Node, raw string) (*value.Node, bool) {
	results := LookupAll(root, raw)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// LookupAll reads every value matched by raw inside root, expanding any
// "[*]" wildcard segments along the way. Queries using full RFC 9535
// features our segment grammar doesn't cover (descendant "..", slices,
// filter expressions) are delegated to theory/jsonpath.
func LookupAll(root *value.Node, raw string) []*value.Node {
	if needsAdvancedQuery(raw) {
		results, err := QueryAdvanced(root, raw)
		if err != nil {
			return nil
		}
		return results
	}
	segs, err := parseSegments(raw)
	if err != nil {
		return nil
	}
	return lookupSegments([]*value.Node{root}, segs)
}

// needsAdvancedQuery reports whether raw uses a JSONPath feature our own
// segment walker doesn't implement. A ':' only signals a slice query outside
// of a quoted bracket segment; a literal key like $.a['k:v'] must not be
// misrouted to the advanced-query path.
func needsAdvancedQuery(raw string) bool {
	if strings.Contains(raw, "..") || strings.Contains(raw, "?") {
		return true
	}
	return strings.Contains(stripQuotedSegments(raw), ":")
}

// stripQuotedSegments removes the contents of any single- or double-quoted
// substrings of raw, so punctuation inside a quoted bracket key (e.g.
// ['k:v']) is not mistaken for path syntax.
func stripQuotedSegments(raw string) string {
	var b strings.Builder
	inSingle, inDouble := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			continue
		}
		if inSingle || inDouble {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// QueryAdvanced evaluates a full RFC 9535 JSONPath query against root via
// theory/jsonpath, for descendant/slice/filter syntax our hand-rolled
// segment grammar doesn't parse. Matched scalar leaves keep their original
// *value.Node identity and decimal precision; matched sub-objects lose their
// source key order, since the library walks native Go maps internally — an
// accepted limitation for this rarely-exercised path (see DESIGN.md).
func QueryAdvanced(root *value.Node, raw string) ([]*value.Node, error) {
	p, err := jsonpath.Parse(raw)
	if err != nil {
		return nil, errors.NewRuntimeError("invalid JSONPath query %q: %s", raw, err.Error()).WithPath(raw)
	}
	matches := p.Select(toGoTree(root))
	out := make([]*value.Node, len(matches))
	for i, m := range matches {
		out[i] = fromGoTree(m)
	}
	return out, nil
}

func toGoTree(n *value.Node) interface{} {
	if n.IsNull() {
		return nil
	}
	switch n.Kind {
	case value.NodeArray:
		out := make([]interface{}, len(n.Arr))
		for i, c := range n.Arr {
			out[i] = toGoTree(c)
		}
		return out
	case value.NodeObject:
		out := map[string]interface{}{}
		for p := n.Obj.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = toGoTree(p.Value)
		}
		return out
	default:
		return n
	}
}

func fromGoTree(v interface{}) *value.Node {
	switch t := v.(type) {
	case nil:
		return value.NullNode()
	case *value.Node:
		return t
	case []interface{}:
		out := make([]*value.Node, len(t))
		for i, e := range t {
			out[i] = fromGoTree(e)
		}
		return value.ArrayNode(out...)
	case map[string]interface{}:
		out := value.NewObject()
		for k, e := range t {
			out.Set(k, fromGoTree(e))
		}
		return out
	default:
		return value.NullNode()
	}
}

func lookupSegments(cur []*value.Node, segs []segment) []*value.Node {
	for _, seg := range segs {
		var next []*value.Node
		for _, n := range cur {
			if n.IsNull() {
				continue
			}
			if seg.name == "*" {
				switch n.Kind {
				case value.NodeArray:
					next = append(next, n.Arr...)
				case value.NodeObject:
					for p := n.Obj.Oldest(); p != nil; p = p.Next() {
						next = append(next, p.Value)
					}
				}
				continue
			}
			if seg.isIndex {
				if c, ok := n.Index(seg.index); ok {
					next = append(next, c)
				}
				continue
			}
			if c, ok := n.Get(seg.name); ok {
				next = append(next, c)
			}
		}
		cur = next
		if len(cur) == 0 {
			return nil
		}
	}
	return cur
}

// Exists reports whether raw resolves to at least one node inside root.
func Exists(root *value.Node, raw string) bool {
	return len(LookupAll(root, raw)) > 0
}

func containerFor(next segment) *value.Node {
	if next.isIndex {
		return value.ArrayNode()
	}
	return value.NewObject()
}
