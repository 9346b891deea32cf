// Package value implements the JEX runtime value model (§3): the tagged
// Value type used during evaluation, the JSON Node tree used for $in/$out/
// $meta (see json.go), and the deterministic coercion rules between them.
package value

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which of Value's fields is meaningful.
type Kind int

const (
	Null Kind = iota
	Boolean
	Number
	String
	DateTime
	JsonNode
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case DateTime:
		return "datetime"
	case JsonNode:
		return "json"
	default:
		return "unknown"
	}
}

// Value is the runtime scalar the evaluator operates on. It is distinct from
// Node: a Value only becomes part of the output tree when explicitly
// converted (via ToNode), matching §3's "not stored in the JSON tree unless
// converted" rule.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	s    string
	t    time.Time
	j    *Node
}

func (v Value) Kind() Kind { return v.kind }

// NullValue is the Null-kind value.
func NullValue() Value { return Value{kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Boolean, b: b} }

// NumberValue wraps a decimal.
func NumberValue(d decimal.Decimal) Value { return Value{kind: Number, n: d} }

// IntValue wraps a Go int as a decimal Value.
func IntValue(n int) Value { return Value{kind: Number, n: decimal.NewFromInt(int64(n))} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// DateTimeValue wraps a time.Time, which must carry its original offset.
func DateTimeValue(t time.Time) Value { return Value{kind: DateTime, t: t} }

// JsonNodeValue wraps a JSON node.
func JsonNodeValue(n *Node) Value { return Value{kind: JsonNode, j: n} }

// AsBool returns the boolean payload; valid only when Kind() == Boolean.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the decimal payload; valid only when Kind() == Number.
func (v Value) AsNumber() decimal.Decimal { return v.n }

// AsString returns the string payload; valid only when Kind() == String.
func (v Value) AsString() string { return v.s }

// AsDateTime returns the time payload; valid only when Kind() == DateTime.
func (v Value) AsDateTime() time.Time { return v.t }

// AsNode returns the JSON node payload; valid only when Kind() == JsonNode.
func (v Value) AsNode() *Node { return v.j }

// ToBool applies the to-boolean coercion table of §3.
func (v Value) ToBool() bool {
	switch v.kind {
	case Null:
		return false
	case Boolean:
		return v.b
	case Number:
		return !v.n.IsZero()
	case String:
		return v.s != ""
	case DateTime:
		return true
	case JsonNode:
		return !v.j.IsNull()
	default:
		return false
	}
}

// ToNumber applies the to-number coercion table of §3.
func (v Value) ToNumber() decimal.Decimal {
	switch v.kind {
	case Null:
		return decimal.Zero
	case Boolean:
		if v.b {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case Number:
		return v.n
	case String:
		d, err := decimal.NewFromString(strings.TrimSpace(v.s))
		if err != nil {
			return decimal.Zero
		}
		return d
	case DateTime:
		return decimal.NewFromInt(v.t.Unix())
	case JsonNode:
		return nodeToNumber(v.j)
	default:
		return decimal.Zero
	}
}

func nodeToNumber(n *Node) decimal.Decimal {
	if n.IsNull() {
		return decimal.Zero
	}
	switch n.Kind {
	case NodeNumber:
		return n.Num
	case NodeString:
		d, err := decimal.NewFromString(strings.TrimSpace(n.Str))
		if err != nil {
			return decimal.Zero
		}
		return d
	case NodeBool:
		if n.Bool {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// ISO8601 is the canonical datetime string format used for to-string
// coercion and the `formatDate`/`parseDate` "o" (round-trip) format (§8
// property 9).
const ISO8601 = "2006-01-02T15:04:05.999999999Z07:00"

// ToJEXString applies the to-string coercion table of §3. Named ToJEXString
// (not String, which Go idiom reserves for fmt.Stringer) to keep the
// coercion explicit at call sites inside the evaluator.
func (v Value) ToJEXString() string {
	switch v.kind {
	case Null:
		return ""
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Number:
		return v.n.String()
	case String:
		return v.s
	case DateTime:
		return v.t.Format(ISO8601)
	case JsonNode:
		return nodeToCanonicalString(v.j)
	default:
		return ""
	}
}

func nodeToCanonicalString(n *Node) string {
	if n.IsNull() {
		return ""
	}
	b, err := n.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// ToNode converts a Value into the JSON tree representation used for $out
// and stdlib builders, the inverse of the automatic unwrapping a JsonNode
// Value undergoes everywhere else.
func (v Value) ToNode() *Node {
	switch v.kind {
	case Null:
		return NullNode()
	case Boolean:
		return BoolNode(v.b)
	case Number:
		return NumberNode(v.n)
	case String:
		return StringNode(v.s)
	case DateTime:
		return StringNode(v.t.Format(ISO8601))
	case JsonNode:
		return v.j
	default:
		return NullNode()
	}
}

// ToDateOrZero coerces v to a time.Time: a DateTime value returns itself,
// anything else is parsed from its to-string coercion as ISO8601, falling
// back to the zero time when that fails. Backs the stdlib date functions'
// implicit to-date coercion.
func (v Value) ToDateOrZero() time.Time {
	if v.kind == DateTime {
		return v.t
	}
	if t, err := time.Parse(ISO8601, v.ToJEXString()); err == nil {
		return t
	}
	return time.Time{}
}

// FromNode lifts a JSON node into a Value, the inverse of ToNode for the
// common case of reading $in/$out/$meta and JSONPath results.
func FromNode(n *Node) Value {
	return JsonNodeValue(n)
}

// ParseNumberLiteral parses a NumberLit's raw source text (already validated
// by the lexer) into a decimal.
func ParseNumberLiteral(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		// The lexer already validated parseability with strconv; fall back to
		// a float parse so a NumberLit never silently becomes zero.
		f, _ := strconv.ParseFloat(raw, 64)
		return decimal.NewFromFloat(f)
	}
	return d
}
