package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/shopspring/decimal"
)

// NodeKind identifies the shape of a JSON node (§3).
type NodeKind int

const (
	NodeNull NodeKind = iota
	NodeBool
	NodeNumber
	NodeString
	NodeArray
	NodeObject
)

func (k NodeKind) String() string {
	switch k {
	case NodeNull:
		return "null"
	case NodeBool:
		return "boolean"
	case NodeNumber:
		return "number"
	case NodeString:
		return "string"
	case NodeArray:
		return "array"
	case NodeObject:
		return "object"
	default:
		return "unknown"
	}
}

// ObjectMap is the insertion-order-preserving backing store for JSON object
// nodes (§3, §9 "JSON tree" note): script output relies on key order.
type ObjectMap = orderedmap.OrderedMap[string, *Node]

// Node is the JSON interchange type used for $in, $out, $meta, and the
// results of JSONPath-shaped stdlib operations. Exactly one of the typed
// fields is meaningful, selected by Kind.
type Node struct {
	Kind NodeKind
	Bool bool
	Num  decimal.Decimal
	Str  string
	Arr  []*Node
	Obj  *ObjectMap
}

// NullNode returns a new JSON null node.
func NullNode() *Node { return &Node{Kind: NodeNull} }

// BoolNode wraps a boolean as a JSON node.
func BoolNode(b bool) *Node { return &Node{Kind: NodeBool, Bool: b} }

// NumberNode wraps a decimal as a JSON node.
func NumberNode(d decimal.Decimal) *Node { return &Node{Kind: NodeNumber, Num: d} }

// IntNode wraps a Go int as a JSON number node.
func IntNode(n int) *Node { return &Node{Kind: NodeNumber, Num: decimal.NewFromInt(int64(n))} }

// StringNode wraps a string as a JSON node.
func StringNode(s string) *Node { return &Node{Kind: NodeString, Str: s} }

// ArrayNode wraps a slice of nodes as a JSON array node.
func ArrayNode(items ...*Node) *Node { return &Node{Kind: NodeArray, Arr: items} }

// NewObject creates an empty JSON object node.
func NewObject() *Node { return &Node{Kind: NodeObject, Obj: orderedmap.New[string, *Node]()} }

// IsNull reports whether n is nil or a JSON null node; both are treated as
// "absent" throughout the evaluator.
func (n *Node) IsNull() bool { return n == nil || n.Kind == NodeNull }

// Get looks up a key on an object node. Returns (nil, false) for anything
// else, including a missing key.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != NodeObject {
		return nil, false
	}
	return n.Obj.Get(key)
}

// Set assigns a key on an object node, appending it if new and preserving
// insertion order of existing keys otherwise.
func (n *Node) Set(key string, v *Node) {
	n.Obj.Set(key, v)
}

// Index looks up an array element. Returns (nil, false) when n isn't an
// array or the index is out of bounds.
func (n *Node) Index(i int) (*Node, bool) {
	if n == nil || n.Kind != NodeArray || i < 0 || i >= len(n.Arr) {
		return nil, false
	}
	return n.Arr[i], true
}

// SetIndex assigns an array element, extending with nulls as needed to
// reach the requested index (§4.4 "path execution").
func (n *Node) SetIndex(i int, v *Node) {
	for len(n.Arr) <= i {
		n.Arr = append(n.Arr, NullNode())
	}
	n.Arr[i] = v
}

// Len reports the element/entry/character count used by the stdlib
// `length` function (§4.5): 0 for everything but string/array/object.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case NodeString:
		return len([]rune(n.Str))
	case NodeArray:
		return len(n.Arr)
	case NodeObject:
		return n.Obj.Len()
	default:
		return 0
	}
}

// DeepClone returns a fully independent copy of n, used by the normalizer
// and expandJson/expandJsonAll, which must never mutate their argument
// (§4.7, §8 property 3).
func (n *Node) DeepClone() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeArray:
		out := make([]*Node, len(n.Arr))
		for i, c := range n.Arr {
			out[i] = c.DeepClone()
		}
		return &Node{Kind: NodeArray, Arr: out}
	case NodeObject:
		out := orderedmap.New[string, *Node](n.Obj.Len())
		for p := n.Obj.Oldest(); p != nil; p = p.Next() {
			out.Set(p.Key, p.Value.DeepClone())
		}
		return &Node{Kind: NodeObject, Obj: out}
	default:
		cp := *n
		return &cp
	}
}

// Equal reports deep structural equality, used for `==`/`!=` when both
// operands share a kind (§4.4).
func (n *Node) Equal(other *Node) bool {
	if n.IsNull() && other.IsNull() {
		return true
	}
	if n.IsNull() || other.IsNull() {
		return false
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case NodeBool:
		return n.Bool == other.Bool
	case NodeNumber:
		return n.Num.Equal(other.Num)
	case NodeString:
		return n.Str == other.Str
	case NodeArray:
		if len(n.Arr) != len(other.Arr) {
			return false
		}
		for i := range n.Arr {
			if !n.Arr[i].Equal(other.Arr[i]) {
				return false
			}
		}
		return true
	case NodeObject:
		if n.Obj.Len() != other.Obj.Len() {
			return false
		}
		for p := n.Obj.Oldest(); p != nil; p = p.Next() {
			ov, ok := other.Obj.Get(p.Key)
			if !ok || !p.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON renders the node as canonical JSON text, preserving object
// key insertion order via ObjectMap's own marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil || n.Kind == NodeNull {
		return []byte("null"), nil
	}
	switch n.Kind {
	case NodeBool:
		return json.Marshal(n.Bool)
	case NodeNumber:
		return []byte(n.Num.String()), nil
	case NodeString:
		return json.Marshal(n.Str)
	case NodeArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, c := range n.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := c.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case NodeObject:
		return json.Marshal(n.Obj)
	default:
		return nil, fmt.Errorf("value: unknown node kind %d", n.Kind)
	}
}

// UnmarshalJSON decodes JSON text into a Node tree, preserving object key
// order by walking encoding/json's token stream directly (Decode into
// interface{} collapses objects into an unordered map) and representing all
// JSON numbers as decimal.Decimal (§9 "decimal arithmetic" note).
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeNode(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("value: trailing data after JSON value")
	}
	*n = *parsed
	return nil
}

// ParseJSON parses JSON text into a Node tree.
func ParseJSON(data []byte) (*Node, error) {
	n := &Node{}
	if err := n.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return n, nil
}

// decodeNode reads exactly one JSON value from dec's token stream.
func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeNodeFromToken(dec, tok)
}

func decodeNodeFromToken(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case nil:
		return NullNode(), nil
	case bool:
		return BoolNode(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, fmt.Errorf("value: invalid number literal %q: %w", t.String(), err)
		}
		return NumberNode(d), nil
	case string:
		return StringNode(t), nil
	case json.Delim:
		switch t {
		case '[':
			var arr []*Node
			for dec.More() {
				cn, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, cn)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return &Node{Kind: NodeArray, Arr: arr}, nil
		case '{':
			obj := orderedmap.New[string, *Node]()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("value: expected object key, got %v", keyTok)
				}
				cn, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, cn)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return &Node{Kind: NodeObject, Obj: obj}, nil
		default:
			return nil, fmt.Errorf("value: unexpected delimiter %v", t)
		}
	default:
		return nil, fmt.Errorf("value: unsupported JSON token %v (%T)", tok, tok)
	}
}
