package value

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToBoolCoercions(t *testing.T) {
	require.False(t, NullValue().ToBool())
	require.False(t, NumberValue(decimal.Zero).ToBool())
	require.True(t, NumberValue(decimal.NewFromInt(1)).ToBool())
	require.False(t, StringValue("").ToBool())
	require.True(t, StringValue("x").ToBool())
	require.False(t, JsonNodeValue(NullNode()).ToBool())
	require.True(t, JsonNodeValue(StringNode("")).ToBool())
}

func TestToNumberCoercions(t *testing.T) {
	require.True(t, NullValue().ToNumber().IsZero())
	require.True(t, BoolValue(true).ToNumber().Equal(decimal.NewFromInt(1)))
	require.True(t, BoolValue(false).ToNumber().IsZero())
	require.True(t, StringValue("42.5").ToNumber().Equal(decimal.RequireFromString("42.5")))
	require.True(t, StringValue("not a number").ToNumber().IsZero())
}

func TestToJEXStringCoercions(t *testing.T) {
	require.Equal(t, "", NullValue().ToJEXString())
	require.Equal(t, "true", BoolValue(true).ToJEXString())
	require.Equal(t, "false", BoolValue(false).ToJEXString())
	require.Equal(t, "15.50", NumberValue(decimal.RequireFromString("15.50")).ToJEXString())
	require.Equal(t, "hi", StringValue("hi").ToJEXString())
}

func TestJsonNodeToStringIsCanonicalJSON(t *testing.T) {
	n := NewObject()
	n.Set("a", NumberNode(decimal.NewFromInt(1)))
	v := JsonNodeValue(n)
	require.Equal(t, `{"a":1}`, v.ToJEXString())
}

func TestDateTimeRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.FixedZone("", 3600))
	v := DateTimeValue(now)
	s := v.ToJEXString()
	require.Contains(t, s, "2024-03-05")
	back, err := time.Parse(ISO8601, s)
	require.NoError(t, err)
	require.True(t, back.Equal(now))
}

func TestToNodeAndFromNode(t *testing.T) {
	v := NumberValue(decimal.NewFromInt(5))
	n := v.ToNode()
	require.Equal(t, NodeNumber, n.Kind)

	back := FromNode(n)
	require.Equal(t, JsonNode, back.Kind())
	require.True(t, back.AsNode().Equal(n))
}

func TestParseNumberLiteral(t *testing.T) {
	require.True(t, ParseNumberLiteral("154.97").Equal(decimal.RequireFromString("154.97")))
	require.True(t, ParseNumberLiteral("42").Equal(decimal.NewFromInt(42)))
}
