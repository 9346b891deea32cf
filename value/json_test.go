package value

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseJSONPreservesKeyOrder(t *testing.T) {
	n, err := ParseJSON([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)
	require.Equal(t, NodeObject, n.Kind)

	var keys []string
	for p := n.Obj.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	require.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestParseJSONDecimalNumbers(t *testing.T) {
	n, err := ParseJSON([]byte(`154.97`))
	require.NoError(t, err)
	require.Equal(t, NodeNumber, n.Kind)
	require.True(t, n.Num.Equal(decimal.RequireFromString("154.97")))
}

func TestMarshalRoundTrip(t *testing.T) {
	src := `{"a":1,"b":[1,2,3],"c":{"d":null},"e":"hi","f":true}`
	n, err := ParseJSON([]byte(src))
	require.NoError(t, err)
	out, err := n.MarshalJSON()
	require.NoError(t, err)

	n2, err := ParseJSON(out)
	require.NoError(t, err)
	require.True(t, n.Equal(n2))
}

func TestDeepCloneIsIndependent(t *testing.T) {
	n, err := ParseJSON([]byte(`{"a":[1,2,3]}`))
	require.NoError(t, err)
	clone := n.DeepClone()
	av, _ := clone.Get("a")
	av.Arr[0] = NumberNode(decimal.RequireFromString("999"))

	orig, _ := n.Get("a")
	require.False(t, orig.Arr[0].Equal(av.Arr[0]))
}

func TestSetIndexExtendsWithNulls(t *testing.T) {
	n := ArrayNode()
	n.SetIndex(2, StringNode("x"))
	require.Len(t, n.Arr, 3)
	require.True(t, n.Arr[0].IsNull())
	require.True(t, n.Arr[1].IsNull())
	require.Equal(t, "x", n.Arr[2].Str)
}

func TestLenAcrossKinds(t *testing.T) {
	require.Equal(t, 0, NullNode().Len())
	require.Equal(t, 3, StringNode("abc").Len())
	require.Equal(t, 2, ArrayNode(NullNode(), NullNode()).Len())
	obj := NewObject()
	obj.Set("a", NullNode())
	require.Equal(t, 1, obj.Len())
}

func TestEqualNullHandling(t *testing.T) {
	require.True(t, NullNode().Equal(NullNode()))
	require.True(t, (*Node)(nil).Equal(NullNode()))
	require.False(t, NullNode().Equal(StringNode("")))
}
